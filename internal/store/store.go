package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Talin12/DataSage/internal/store/postgres"
)

type Store struct {
	*postgres.Queries
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: postgres.New(pool),
		pool:    pool,
	}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) WithTx(ctx context.Context, fn func(*postgres.Queries) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ResultRow keeps the column order of the SELECT list.
type ResultRow = orderedmap.OrderedMap[string, any]

// ResultSet is the JSON-ready output of a read-only query.
type ResultSet struct {
	Columns []string     `json:"columns"`
	Rows    []*ResultRow `json:"data"`
}

// ExecuteReadOnly runs a single statement in a read-only transaction and
// reads at most limit rows. timeout, when positive, is applied as the
// statement timeout of the transaction.
func (s *Store) ExecuteReadOnly(ctx context.Context, sql string, args []any, limit int, timeout time.Duration) (*ResultSet, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if timeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("set statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRows(rows, limit)
}

func collectRows(rows pgx.Rows, limit int) (*ResultSet, error) {
	fields := rows.FieldDescriptions()
	rs := &ResultSet{
		Columns: make([]string, len(fields)),
		Rows:    []*ResultRow{},
	}
	for i, f := range fields {
		rs.Columns[i] = f.Name
	}

	for rows.Next() {
		if limit > 0 && len(rs.Rows) >= limit {
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(values)))
		for i, v := range values {
			row.Set(rs.Columns[i], postgres.JSONValue(fields[i].DataTypeOID, v))
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
