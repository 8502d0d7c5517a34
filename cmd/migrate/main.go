package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/detailshop-backend/internal/bootstrap"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage detailshop database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", migrate.DefaultDir, "migrations directory")

	root.AddCommand(
		createCmd(&dir),
		validateCmd(&dir),
		runnerCmd(&dir, "up", "Apply every pending migration", cobra.NoArgs, func(ctx context.Context, r *migrate.Runner, _ []string, _ io.Writer) error {
			return r.Up(ctx)
		}),
		runnerCmd(&dir, "down", "Roll back the most recent migration", cobra.NoArgs, func(ctx context.Context, r *migrate.Runner, _ []string, _ io.Writer) error {
			return r.Down(ctx)
		}),
		runnerCmd(&dir, "version <YYYYMMDDHHMMSS>", "Migrate up or down to a target version", cobra.ExactArgs(1), func(ctx context.Context, r *migrate.Runner, args []string, _ io.Writer) error {
			return r.ToVersion(ctx, args[0])
		}),
		runnerCmd(&dir, "current", "Print the applied schema version", cobra.NoArgs, func(ctx context.Context, r *migrate.Runner, _ []string, out io.Writer) error {
			current, err := r.Version(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, current)
			return err
		}),
		runnerCmd(&dir, "status", "List migrations and when they were applied", cobra.NoArgs, func(ctx context.Context, r *migrate.Runner, _ []string, out io.Writer) error {
			return printStatus(ctx, r, out)
		}),
	)
	return root
}

// create and validate only touch files, so they run without config.
func createCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Write a new timestamped SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrate.CreateSQLMigration(*dir, args[0])
			if err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			cmd.Println("created migration:", path)
			return nil
		},
	}
}

func validateCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check migration file names and goose annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate.ValidateDir(*dir); err != nil {
				return fmt.Errorf("migration validation failed: %w", err)
			}
			cmd.Println("migration validation passed")
			return nil
		},
	}
}

type runnerFunc func(ctx context.Context, r *migrate.Runner, args []string, out io.Writer) error

func runnerCmd(dir *string, use, short string, args cobra.PositionalArgs, run runnerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, positional []string) error {
			cfg, logg, err := bootstrap.Load("migrate")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := logg.WithFields(cmd.Context(), map[string]any{
				"cmd":    cmd.Name(),
				"dir":    *dir,
				"env":    cfg.App.Env,
				"driver": cfg.DB.Driver,
			})

			runner, closeDB, err := openRunner(ctx, cfg.DB, *dir, logg)
			if err != nil {
				logg.Error(ctx, "migration setup failed", err)
				return err
			}
			defer closeDB()

			if err := run(ctx, runner, positional, cmd.OutOrStdout()); err != nil {
				logg.Error(ctx, "migration command failed", err)
				return err
			}
			return nil
		},
	}
}

func openRunner(ctx context.Context, cfg config.DBConfig, dir string, logg *logger.Logger) (*migrate.Runner, func(), error) {
	dbClient, err := db.New(ctx, cfg, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	closeDB := func() { _ = dbClient.Close() }

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("sql database: %w", err)
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.Dialect(cfg.Driver), migrate.Dir(dir), logg)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migration runner: %w", err)
	}
	return runner, closeDB, nil
}

func printStatus(ctx context.Context, runner *migrate.Runner, out io.Writer) error {
	statuses, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return w.Flush()
}
