// Package migration installs the ESD plugin's rows into the storefront database.
package migration

import (
	"context"
	"log/slog"

	"github.com/sas-esd/esdmail/libs/db"
)

// Step is one migration. Update must be safe to run more than once.
type Step interface {
	Name() string
	CreationTimestamp() int64
	Update(ctx context.Context, conn db.Connection) error
	UpdateDestructive(ctx context.Context, conn db.Connection) error
}

// Steps returns the service's migrations.
func Steps(logger *slog.Logger) []Step {
	return []Step{
		NewCreateEsdMessagingTables(),
		NewCreateSerialMailEventAction(logger),
	}
}
