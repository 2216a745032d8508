package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/quality"
	"salesetl/internal/source"
	"salesetl/internal/transform"
)

// NewCheckCommand creates the check command: a dry run of extraction,
// transformation and the quality gate without touching the store.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the raw batch without loading",
		Long: `Extract and clean the configured raw batch and run it through the
quality gate. The target store is never opened; use this to vet a file
before an actual run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(opts, cfg.Logging, cmd.ErrOrStderr())

	raw, err := source.NewCSVExtractor(cfg.Source.Path, logger).Extract(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to extract raw data", err)
	}

	ds, stats, err := transform.New(logger).Transform(raw)
	if err != nil {
		return WrapExitError(ExitFailure, "transform failed", err)
	}

	if err := quality.NewGate(logger).Validate(ds); err != nil {
		return WrapExitError(ExitFailure, "quality gate failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rows clean (%d duplicates removed)\n",
		stats.OutputRows, stats.DuplicatesRemoved)
	return nil
}
