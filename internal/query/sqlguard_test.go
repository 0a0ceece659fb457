package query

import (
	"errors"
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

func TestGuard_Accepts(t *testing.T) {
	tests := []struct {
		name         string
		sql          string
		wantSQL      string
		bindsDataset bool
		limitAdded   bool
	}{
		{
			name:         "appends limit",
			sql:          "SELECT row_data->>'region' AS region FROM records WHERE dataset_id = $1",
			wantSQL:      "SELECT row_data->>'region' AS region FROM records WHERE dataset_id = $1\nLIMIT 500",
			bindsDataset: true,
			limitAdded:   true,
		},
		{
			name:    "keeps existing limit and strips semicolon",
			sql:     "  SELECT 1 AS one LIMIT 10;  ",
			wantSQL: "SELECT 1 AS one LIMIT 10",
		},
		{
			name:       "limit inside subquery only",
			sql:        "SELECT * FROM (SELECT id FROM records LIMIT 5) s",
			wantSQL:    "SELECT * FROM (SELECT id FROM records LIMIT 5) s\nLIMIT 500",
			limitAdded: true,
		},
		{
			name:         "select cte",
			sql:          "WITH r AS (SELECT row_data FROM records WHERE dataset_id = $1) SELECT count(*) FROM r",
			wantSQL:      "WITH r AS (SELECT row_data FROM records WHERE dataset_id = $1) SELECT count(*) FROM r\nLIMIT 500",
			bindsDataset: true,
			limitAdded:   true,
		},
		{
			name:       "union",
			sql:        "SELECT 1 UNION ALL SELECT 2",
			wantSQL:    "SELECT 1 UNION ALL SELECT 2\nLIMIT 500",
			limitAdded: true,
		},
		{
			name:         "trailing line comment",
			sql:          "SELECT row_data FROM records WHERE dataset_id = $1 -- all rows",
			wantSQL:      "SELECT row_data FROM records WHERE dataset_id = $1 -- all rows\nLIMIT 500",
			bindsDataset: true,
			limitAdded:   true,
		},
		{
			name:    "dollar sign inside string literal is not a parameter",
			sql:     "SELECT '$2' AS label LIMIT 1",
			wantSQL: "SELECT '$2' AS label LIMIT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Guard(tt.sql, 500)
			if err != nil {
				t.Fatalf("Guard: %v", err)
			}
			if got.SQL != tt.wantSQL {
				t.Errorf("SQL = %q, want %q", got.SQL, tt.wantSQL)
			}
			if got.BindsDataset != tt.bindsDataset {
				t.Errorf("BindsDataset = %v, want %v", got.BindsDataset, tt.bindsDataset)
			}
			if got.LimitAdded != tt.limitAdded {
				t.Errorf("LimitAdded = %v, want %v", got.LimitAdded, tt.limitAdded)
			}
		})
	}
}

func TestGuard_AppendedLimitParses(t *testing.T) {
	for _, sql := range []string{
		"SELECT row_data FROM records WHERE dataset_id = $1 -- all rows",
		"SELECT 1 AS one -- trailing;",
		"SELECT 1 UNION ALL SELECT 2 /* both */",
	} {
		got, err := Guard(sql, 500)
		if err != nil {
			t.Fatalf("Guard(%q): %v", sql, err)
		}
		if !got.LimitAdded {
			t.Fatalf("Guard(%q): expected limit to be added", sql)
		}
		tree, err := pg_query.Parse(got.SQL)
		if err != nil {
			t.Fatalf("parse %q: %v", got.SQL, err)
		}
		if tree.Stmts[0].GetStmt().GetSelectStmt().GetLimitCount() == nil {
			t.Errorf("guarded SQL %q has no effective LIMIT", got.SQL)
		}
	}
}

func TestGuard_Rejects(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want error
	}{
		{"empty", "", ErrNotSelect},
		{"delete", "DELETE FROM records", ErrNotSelect},
		{"update", "UPDATE datasets SET name = 'x'", ErrNotSelect},
		{"two statements", "SELECT 1; DROP TABLE records", ErrMultiStmt},
		{"select into", "SELECT * INTO backup FROM records", ErrSelectInto},
		{"for update", "SELECT * FROM records FOR UPDATE", ErrLockingRead},
		{"writing cte", "WITH d AS (DELETE FROM records RETURNING id) SELECT * FROM d", ErrNotSelect},
		{"second parameter", "SELECT * FROM records WHERE dataset_id = $1 AND id = $2", ErrExtraParams},
		{"garbage", "SELEC whatever", ErrUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Guard(tt.sql, 500)
			if !errors.Is(err, tt.want) {
				t.Errorf("Guard(%q) error = %v, want %v", tt.sql, err, tt.want)
			}
		})
	}
}

func TestGuardedSQL_Args(t *testing.T) {
	if args := (GuardedSQL{BindsDataset: true}).Args(7); len(args) != 1 || args[0] != int64(7) {
		t.Errorf("expected [7], got %v", args)
	}
	if args := (GuardedSQL{}).Args(7); args != nil {
		t.Errorf("expected no args, got %v", args)
	}
}
