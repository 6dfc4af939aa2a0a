package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sas-esd/esdmail/libs/db"
	otelx "github.com/sas-esd/esdmail/libs/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StepState is what the ledger knows about a step.
type StepState struct {
	Name                 string
	CreationTimestamp    int64
	UpdatedAt            *time.Time
	DestructiveUpdatedAt *time.Time
}

// Ledger records which steps ran.
type Ledger interface {
	Ensure(ctx context.Context) error
	State(ctx context.Context, step Step) (StepState, error)
	MarkUpdated(ctx context.Context, step Step) error
	MarkDestructive(ctx context.Context, step Step) error
}

// Runner applies steps in creation-timestamp order. Statements are not wrapped in a
// transaction; a step that fails halfway is retried as a whole on the next run.
type Runner struct {
	conn   db.Connection
	ledger Ledger
	logger *slog.Logger
	steps  []Step
}

func NewRunner(conn db.Connection, ledger Ledger, logger *slog.Logger, steps ...Step) *Runner {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreationTimestamp() < sorted[j].CreationTimestamp()
	})
	return &Runner{conn: conn, ledger: ledger, logger: logger, steps: sorted}
}

// Migrate runs Update for every step that has not run yet and returns how many ran.
func (r *Runner) Migrate(ctx context.Context) (int, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return 0, fmt.Errorf("ensure migration ledger: %w", err)
	}
	applied := 0
	for _, step := range r.steps {
		state, err := r.ledger.State(ctx, step)
		if err != nil {
			return applied, fmt.Errorf("read state of %s: %w", step.Name(), err)
		}
		if state.UpdatedAt != nil {
			continue
		}
		if err := r.run(ctx, step, "update", step.Update); err != nil {
			return applied, err
		}
		if err := r.ledger.MarkUpdated(ctx, step); err != nil {
			return applied, fmt.Errorf("record %s: %w", step.Name(), err)
		}
		applied++
	}
	return applied, nil
}

// MigrateDestructive runs UpdateDestructive for steps whose Update already ran.
func (r *Runner) MigrateDestructive(ctx context.Context) (int, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return 0, fmt.Errorf("ensure migration ledger: %w", err)
	}
	applied := 0
	for _, step := range r.steps {
		state, err := r.ledger.State(ctx, step)
		if err != nil {
			return applied, fmt.Errorf("read state of %s: %w", step.Name(), err)
		}
		if state.UpdatedAt == nil || state.DestructiveUpdatedAt != nil {
			continue
		}
		if err := r.run(ctx, step, "update_destructive", step.UpdateDestructive); err != nil {
			return applied, err
		}
		if err := r.ledger.MarkDestructive(ctx, step); err != nil {
			return applied, fmt.Errorf("record %s: %w", step.Name(), err)
		}
		applied++
	}
	return applied, nil
}

func (r *Runner) Status(ctx context.Context) ([]StepState, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure migration ledger: %w", err)
	}
	out := make([]StepState, 0, len(r.steps))
	for _, step := range r.steps {
		state, err := r.ledger.State(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("read state of %s: %w", step.Name(), err)
		}
		out = append(out, state)
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, step Step, phase string, fn func(context.Context, db.Connection) error) error {
	ctx, span := otelx.Tracer("migration").Start(ctx, "migration."+phase,
		trace.WithAttributes(
			attribute.String("migration.step", step.Name()),
			attribute.Int64("migration.creation_timestamp", step.CreationTimestamp()),
		),
	)
	defer span.End()

	start := time.Now()
	if err := fn(ctx, r.conn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("migration failed", "step", step.Name(), "phase", phase, "err", err)
		return fmt.Errorf("%s %s: %w", phase, step.Name(), err)
	}
	r.logger.Info("migration applied", "step", step.Name(), "phase", phase,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
