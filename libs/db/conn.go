package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Connection is the narrow statement interface migration steps run against.
type Connection interface {
	// Insert writes one row; columns are bound as parameters.
	Insert(ctx context.Context, table string, row map[string]any) error
	// FetchColumn returns the first column of the first row. ok is false when no row matched.
	// Query failures are returned as *QueryError.
	FetchColumn(ctx context.Context, query string, args ...any) (value any, ok bool, err error)
	Exec(ctx context.Context, query string, args ...any) error
}

// QueryError reports a failed statement.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err carries a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// executor is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgConnection struct {
	exec executor
}

// NewConnection adapts a pool or transaction to Connection.
func NewConnection(exec executor) Connection {
	return &pgConnection{exec: exec}
}

// Conn returns the pool as a Connection.
func (p *Pool) Conn() Connection {
	return NewConnection(p.Pool)
}

func (c *pgConnection) Insert(ctx context.Context, table string, row map[string]any) error {
	query, args := buildInsert(table, row)
	if _, err := c.exec.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (c *pgConnection) FetchColumn(ctx context.Context, query string, args ...any) (any, bool, error) {
	var v any
	err := c.exec.QueryRow(ctx, query, args...).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &QueryError{Query: query, Err: err}
	}
	return v, true, nil
}

func (c *pgConnection) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := c.exec.Exec(ctx, query, args...); err != nil {
		return &QueryError{Query: query, Err: err}
	}
	return nil
}

// buildInsert renders a parameterized INSERT with columns in lexical order.
func buildInsert(table string, row map[string]any) (string, []any) {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}
