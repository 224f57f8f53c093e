package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metashield/jirasync/internal/infrastructure/database"
	"github.com/metashield/jirasync/internal/infrastructure/migration"
	"github.com/metashield/jirasync/internal/interfaces/cli/bootstrap"
	"github.com/metashield/jirasync/internal/shared/logger"
)

var (
	opts  bootstrap.Options
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations. The sqlite driver derives its schema from the models instead.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new SQL migration file with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running up migrations", "environment", opts.Env, "driver", rt.Config.Database.Driver)

	if err := migration.NewManager(rt.Config.Database.Driver).Migrate(database.Get()); err != nil {
		return err
	}

	rt.Log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	rt, goose, err := initGoose()
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Log.Infow("running down migrations", "environment", opts.Env, "steps", steps)

	if err := goose.MigrateDown(database.Get(), steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	rt.Log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, goose, err := initGoose()
	if err != nil {
		return err
	}
	defer rt.Close()

	version, err := goose.GetVersion(database.Get())
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nMigration Status:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Environment:     %s\n", opts.Env)
	fmt.Fprintf(cmd.OutOrStdout(), "  Current Version: %d\n", version)

	if err := goose.Status(database.Get()); err != nil {
		return fmt.Errorf("failed to get detailed status: %w", err)
	}

	return nil
}

// runCreate writes to the source tree and needs no database.
func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")

	goose := migration.NewGooseStrategy("mysql", migration.ScriptsPath)
	if err := goose.Create(name); err != nil {
		log.Errorw("failed to create migration", "name", name, "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, migration.ScriptsPath)
	return nil
}

func initGoose() (*bootstrap.Runtime, *migration.GooseStrategy, error) {
	rt, err := bootstrap.Init(opts)
	if err != nil {
		return nil, nil, err
	}

	goose, ok := migration.NewManager(rt.Config.Database.Driver).Goose()
	if !ok {
		rt.Close()
		return nil, nil, fmt.Errorf("driver %s has no versioned migrations", rt.Config.Database.Driver)
	}

	return rt, goose, nil
}
