package worker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metashield/jirasync/internal/infrastructure/database"
	"github.com/metashield/jirasync/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/metashield/jirasync/internal/interfaces/http"
)

var opts bootstrap.Options

// NewCommand runs the periodic sync jobs without the HTTP API, for
// deployments that scale the API and the scheduler separately.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the periodic sync jobs",
		Long:  `Run the realtime, incremental and full sync jobs on their configured intervals until interrupted.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&opts.AutoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Log.Named("worker")

	container, err := httpRouter.NewContainer(database.Get(), rt.Config, rt.Log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Shutdown()

	container.StartScheduler()
	log.Infow("sync worker started",
		"environment", opts.Env,
		"realtime_interval", rt.Config.Sync.Scheduler.RealtimeInterval.String(),
		"incremental_interval", rt.Config.Sync.Scheduler.IncrementalInterval.String(),
		"full_interval", rt.Config.Sync.Scheduler.FullInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("received signal, waiting for running jobs", "signal", sig.String())
	return nil
}
