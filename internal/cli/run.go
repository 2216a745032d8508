package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/pipeline"
	"salesetl/internal/source"
	"salesetl/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs pipeline.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one incremental load run",
		Long: `Execute one transform-validate-merge run against the configured
target table.

The run reads the raw batch named in the config, cleans and validates
it, reads the current watermark from the target, and merges only rows
strictly newer than the watermark. Re-running with the same input is
safe: the merge is an idempotent upsert keyed by order_id.

Example:
  salesetl run -c config/config.yaml
  salesetl run --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}

	return cmd
}

func runOnce(cmd *cobra.Command, opts *RunOptions) error {
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

	res, err := executeRun(cmd.Context(), cfg, st, logger, opts.RunIDs)
	if err != nil {
		return err
	}

	if err := renderResult(cmd.OutOrStdout(), opts.Format, res); err != nil {
		return WrapExitError(ExitCommandError, "failed to render result", err)
	}
	if res.Status == pipeline.StatusFailed {
		return WrapExitError(ExitFailure, "pipeline run failed", res.Err)
	}
	return nil
}

// executeRun extracts the raw batch and runs the pipeline once.
// Shared by run and schedule.
func executeRun(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger, runIDs pipeline.RunIDGenerator) (pipeline.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := source.NewCSVExtractor(cfg.Source.Path, logger).Extract(ctx)
	if err != nil {
		return pipeline.RunResult{}, WrapExitError(ExitCommandError, "failed to extract raw data", err)
	}

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Store:  st,
		Table:  cfg.Target.Table,
		Actor:  cfg.Target.Actor,
		RunIDs: runIDs,
		Logger: logger,
	})
	return runner.Run(ctx, raw), nil
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing store", "error", err)
	}
}
