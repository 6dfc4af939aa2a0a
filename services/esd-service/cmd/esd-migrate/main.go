package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sas-esd/esdmail/libs/config"
	"github.com/sas-esd/esdmail/libs/db"
	otelx "github.com/sas-esd/esdmail/libs/otel"
	"github.com/sas-esd/esdmail/libs/runtime"
	"github.com/sas-esd/esdmail/services/esd-service/internal/migration"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFiles    []string
		databaseURL string
	)

	root := &cobra.Command{
		Use:          "esd-migrate",
		Short:        "Install the ESD serial mail rows into the storefront database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = config.String("DATABASE_URL", "")
			}
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			return nil
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "env files to load before reading the environment")
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (env DATABASE_URL)")

	withRunner := func(run func(ctx context.Context, r *migration.Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			service := config.String("SERVICE_NAME", "esd-migrate")
			logger := runtime.NewLogger(service)
			ctx := cmd.Context()

			shutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
			if err != nil {
				logger.Error("otel setup failed", "err", err)
			} else {
				defer otelx.ShutdownFunc(shutdown, 5*time.Second)()
			}

			pool, err := db.Open(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			r := migration.NewRunner(pool.Conn(), migration.NewPostgresLedger(pool), logger, migration.Steps(logger)...)
			return run(ctx, r)
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Run pending migrations",
		RunE: withRunner(func(ctx context.Context, r *migration.Runner) error {
			n, err := r.Migrate(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", n)
			return nil
		}),
	}

	destructive := &cobra.Command{
		Use:   "destructive",
		Short: "Run pending destructive updates of applied migrations",
		RunE: withRunner(func(ctx context.Context, r *migration.Runner) error {
			n, err := r.MigrateDestructive(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d destructive update(s)\n", n)
			return nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which migrations ran",
		RunE: withRunner(func(ctx context.Context, r *migration.Runner) error {
			states, err := r.Status(ctx)
			if err != nil {
				return err
			}
			return printStatus(states)
		}),
	}

	root.AddCommand(up, destructive, status)
	return root
}

func printStatus(states []migration.StepState) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tCREATED\tUPDATE\tDESTRUCTIVE")
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Name, s.CreationTimestamp, formatTime(s.UpdatedAt), formatTime(s.DestructiveUpdatedAt))
	}
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
