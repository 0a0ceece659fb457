package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

var (
	ErrNotSelect   = errors.New("Query rejected: only SELECT statements are permitted.")
	ErrMultiStmt   = errors.New("Query rejected: exactly one statement is permitted.")
	ErrSelectInto  = errors.New("Query rejected: SELECT INTO is not permitted.")
	ErrLockingRead = errors.New("Query rejected: row locking clauses are not permitted.")
	ErrExtraParams = errors.New("Query rejected: only $1 (the dataset id) may be referenced.")
	ErrUnparseable = errors.New("Query rejected: SQL could not be parsed.")
)

// GuardedSQL is a statement that passed Guard.
type GuardedSQL struct {
	SQL string
	// BindsDataset is true when the statement references $1, which is then
	// bound to the dataset id.
	BindsDataset bool
	// LimitAdded is true when Guard appended the row limit.
	LimitAdded bool
}

// Args returns the bind arguments for the statement.
func (g GuardedSQL) Args(datasetID int64) []any {
	if g.BindsDataset {
		return []any{datasetID}
	}
	return nil
}

// Guard accepts exactly one SELECT statement (optionally with CTEs that are
// themselves SELECTs) and appends LIMIT rowLimit when the top level has none.
func Guard(sql string, rowLimit int) (GuardedSQL, error) {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSpace(strings.TrimRight(sql, "; \t\n"))
	if sql == "" {
		return GuardedSQL{}, ErrNotSelect
	}

	tree, err := pg_query.Parse(sql)
	if err != nil {
		return GuardedSQL{}, fmt.Errorf("%w (%v)", ErrUnparseable, err)
	}
	if len(tree.Stmts) != 1 {
		return GuardedSQL{}, ErrMultiStmt
	}

	sel := tree.Stmts[0].GetStmt().GetSelectStmt()
	if sel == nil {
		return GuardedSQL{}, ErrNotSelect
	}
	if err := checkSelect(sel); err != nil {
		return GuardedSQL{}, err
	}

	maxParam, err := maxParamRef(sql)
	if err != nil {
		return GuardedSQL{}, err
	}
	if maxParam > 1 {
		return GuardedSQL{}, ErrExtraParams
	}

	out := GuardedSQL{SQL: sql, BindsDataset: maxParam == 1}
	if sel.GetLimitCount() == nil && rowLimit > 0 {
		// On its own line so a trailing -- comment cannot swallow it.
		out.SQL = fmt.Sprintf("%s\nLIMIT %d", sql, rowLimit)
		out.LimitAdded = true
	}
	return out, nil
}

func checkSelect(sel *pg_query.SelectStmt) error {
	if sel.GetIntoClause() != nil {
		return ErrSelectInto
	}
	if len(sel.GetLockingClause()) > 0 {
		return ErrLockingRead
	}
	if with := sel.GetWithClause(); with != nil {
		for _, cte := range with.GetCtes() {
			q := cte.GetCommonTableExpr().GetCtequery()
			inner := q.GetSelectStmt()
			if inner == nil {
				return ErrNotSelect
			}
			if err := checkSelect(inner); err != nil {
				return err
			}
		}
	}
	for _, branch := range []*pg_query.SelectStmt{sel.GetLarg(), sel.GetRarg()} {
		if branch != nil {
			if err := checkSelect(branch); err != nil {
				return err
			}
		}
	}
	return nil
}

// maxParamRef returns the highest $n placeholder in sql, or 0.
func maxParamRef(sql string) (int, error) {
	scan, err := pg_query.Scan(sql)
	if err != nil {
		return 0, fmt.Errorf("%w (%v)", ErrUnparseable, err)
	}
	highest := 0
	for _, tok := range scan.GetTokens() {
		if tok.GetToken() != pg_query.Token_PARAM {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(sql[tok.GetStart():tok.GetEnd()], "$"))
		if err != nil {
			return 0, fmt.Errorf("%w (bad parameter)", ErrUnparseable)
		}
		highest = max(highest, n)
	}
	return highest, nil
}
