package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/infrastructure/database"
	"github.com/metashield/jirasync/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/metashield/jirasync/internal/interfaces/http"
)

var (
	opts     bootstrap.Options
	fullCmd  usecases.FullSyncCommand
	issueKey string
)

// errRunFailed makes the process exit non-zero after a failed run whose
// result was already printed.
var errRunFailed = errors.New("sync run failed")

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync once and print its result",
		Long:  `Run one synchronization against Jira in the foreground. The result is printed as JSON and the exit code is non-zero when the run failed.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.AutoMigrate, "auto-migrate", false, "Run database migrations first")

	cmd.AddCommand(
		newFullCommand(),
		newIncrementalCommand(),
		newRealtimeCommand(),
		newSetupCommand(),
		newRefreshCommand(),
	)

	return cmd
}

func newFullCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Backfill every ticket in the lookback window",
		RunE: withUseCases(func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error {
			command := fullCmd
			command.Source = syncrun.SourceCLI
			result, err := ucs.FullSync.Execute(ctx, command)
			if err != nil {
				return err
			}
			return printRun(out, result, result.Status)
		}),
	}

	cmd.Flags().IntVar(&fullCmd.BatchSize, "batch-size", 0, "Tickets per page (default from config)")
	cmd.Flags().IntVar(&fullCmd.MaxResults, "max-results", 0, "Upper bound on processed tickets (default from config)")
	cmd.Flags().IntVar(&fullCmd.DaysLookback, "days", 0, "Days to look back (default from config)")
	cmd.Flags().StringSliceVar(&fullCmd.Projects, "project", nil, "Restrict to project keys (repeatable)")

	return cmd
}

func newIncrementalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "incremental",
		Short: "Sync tickets changed since the last successful run",
		RunE: withUseCases(func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error {
			result, err := ucs.IncrementalSync.Execute(ctx, usecases.IncrementalSyncCommand{Source: syncrun.SourceCLI})
			if err != nil {
				return err
			}
			return printRun(out, result, result.Status)
		}),
	}
}

func newRealtimeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "realtime",
		Short: "Reconcile unresolved tickets of the monitored projects",
		RunE: withUseCases(func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error {
			result, err := ucs.RealtimeSync.Execute(ctx, usecases.RealtimeSyncCommand{Source: syncrun.SourceCLI})
			if err != nil {
				return err
			}
			return printRun(out, result, result.Status)
		}),
	}
}

func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Seed the default sync settings",
		RunE: withUseCases(func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error {
			result, err := ucs.Setup.Execute(ctx, usecases.SetupCommand{Source: syncrun.SourceCLI})
			if err != nil {
				return err
			}
			return printJSON(out, result)
		}),
	}
}

func newRefreshCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch a single ticket from Jira",
		RunE: withUseCases(func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error {
			result, err := ucs.RefreshTicket.Execute(ctx, usecases.RefreshTicketCommand{
				JiraKey: issueKey,
				Source:  syncrun.SourceCLI,
			})
			if err != nil {
				return err
			}
			return printJSON(out, result)
		}),
	}

	cmd.Flags().StringVarP(&issueKey, "key", "k", "", "Jira issue key, e.g. GOODRICH-123 (required)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

type runFunc func(ctx context.Context, ucs *httpRouter.SyncUseCases, out io.Writer) error

// withUseCases builds the container for a one-shot command. SIGINT and
// SIGTERM cancel the run, which the ledger then records as failed.
func withUseCases(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		rt, err := bootstrap.Init(opts)
		if err != nil {
			return err
		}
		defer rt.Close()

		container, err := httpRouter.NewContainer(database.Get(), rt.Config, rt.Log)
		if err != nil {
			return fmt.Errorf("failed to build container: %w", err)
		}
		defer container.Shutdown()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return fn(ctx, container.UseCases(), cmd.OutOrStdout())
	}
}

func printRun(out io.Writer, v any, status string) error {
	if err := printJSON(out, v); err != nil {
		return err
	}
	if status == string(syncrun.StatusFailed) {
		return errRunFailed
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
