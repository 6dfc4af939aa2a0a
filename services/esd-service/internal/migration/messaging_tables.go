package migration

import (
	"context"

	"github.com/sas-esd/esdmail/libs/db"
)

// CreateEsdMessagingTables creates the outbox and inbox tables the event transport uses.
type CreateEsdMessagingTables struct{}

func NewCreateEsdMessagingTables() *CreateEsdMessagingTables {
	return &CreateEsdMessagingTables{}
}

func (m *CreateEsdMessagingTables) Name() string {
	return "CreateEsdMessagingTables"
}

func (m *CreateEsdMessagingTables) CreationTimestamp() int64 {
	return 1607192400
}

func (m *CreateEsdMessagingTables) Update(ctx context.Context, conn db.Connection) error {
	for _, stmt := range messagingDDL {
		if err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (m *CreateEsdMessagingTables) UpdateDestructive(context.Context, db.Connection) error {
	return nil
}

var messagingDDL = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id BIGSERIAL PRIMARY KEY,
		event_id UUID NOT NULL DEFAULT gen_random_uuid(),
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		traceparent TEXT NOT NULL DEFAULT '',
		tracestate TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished ON outbox_events (id) WHERE published_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS inbox_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
