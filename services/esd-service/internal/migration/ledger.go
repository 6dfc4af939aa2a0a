package migration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/sas-esd/esdmail/libs/db"
)

// ledgerTable is separate from the host platform's own migration table.
const ledgerTable = "esd_migration"

var ledgerDDL = `
	CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
		class TEXT PRIMARY KEY,
		creation_timestamp BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NULL,
		destructive_updated_at TIMESTAMPTZ NULL
	)
`

var (
	ledgerSelect = `
		SELECT updated_at, destructive_updated_at
		FROM ` + ledgerTable + `
		WHERE class = $1
	`
	ledgerMarkUpdated = `
		INSERT INTO ` + ledgerTable + ` (class, creation_timestamp, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (class) DO UPDATE
		SET updated_at = EXCLUDED.updated_at
	`
	ledgerMarkDestructive = `
		UPDATE ` + ledgerTable + `
		SET destructive_updated_at = now()
		WHERE class = $1
	`
)

// PostgresLedger keeps step state in the esd_migration table.
type PostgresLedger struct {
	pool *db.Pool
}

func NewPostgresLedger(pool *db.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) Ensure(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, ledgerDDL)
	return err
}

func (l *PostgresLedger) State(ctx context.Context, step Step) (StepState, error) {
	state := StepState{Name: step.Name(), CreationTimestamp: step.CreationTimestamp()}
	err := l.pool.QueryRow(ctx, ledgerSelect, step.Name()).Scan(&state.UpdatedAt, &state.DestructiveUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, nil
	}
	return state, err
}

func (l *PostgresLedger) MarkUpdated(ctx context.Context, step Step) error {
	_, err := l.pool.Exec(ctx, ledgerMarkUpdated, step.Name(), step.CreationTimestamp())
	return err
}

func (l *PostgresLedger) MarkDestructive(ctx context.Context, step Step) error {
	_, err := l.pool.Exec(ctx, ledgerMarkDestructive, step.Name())
	return err
}
