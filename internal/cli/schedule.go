package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/pipeline"
	"salesetl/internal/store"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	CronSpec string
}

// NewScheduleCommand creates the schedule command, which runs the
// pipeline periodically on a cron expression.
//
// Runs are serialized: the cron scheduler skips a tick while a
// previous run is still executing, preserving the one-run-per-table
// precondition.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Long: `Run the pipeline periodically until interrupted.

Example:
  salesetl schedule --cron "0 2 * * *"   # every day at 02:00
  salesetl schedule --cron "@hourly"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CronSpec, "cron", "", "cron expression (required)")
	_ = cmd.MarkFlagRequired("cron")

	return cmd
}

func runSchedule(cmd *cobra.Command, opts *ScheduleOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(opts.RootOptions, cfg.Logging, cmd.ErrOrStderr())

	st, err := store.Open(store.Dialect(cfg.Target.Driver), cfg.Target.DSN)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target store", err)
	}
	defer closeStore(st, logger)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// SkipIfStillRunning serializes runs against the target table.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err = c.AddFunc(opts.CronSpec, func() {
		res, runErr := executeRun(ctx, cfg, st, logger, nil)
		if runErr != nil {
			logger.Error("scheduled run failed", "error", runErr)
			return
		}
		if res.Status == pipeline.StatusFailed {
			logger.Error("scheduled run failed", "stage", string(res.FailedStage), "error", res.Err)
		}
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid cron expression", err)
	}

	logger.Info("scheduler started", "cron", opts.CronSpec, "table", cfg.Target.Table)
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop() // waits for a running job before returning its context
	<-stopCtx.Done()

	logger.Info("scheduler stopped")
	return nil
}
