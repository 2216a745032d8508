package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/incremental"
	"salesetl/internal/store"
)

// NewWatermarkCommand creates the watermark command, which prints the
// current watermark of the target table.
func NewWatermarkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Show the target table's current watermark",
		Long: `Read and print the maximum order_date committed to the target
table. Prints "none" when the table is empty (the next run will be a
full load).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatermark(cmd, rootOpts)
		},
	}
	return cmd
}

func runWatermark(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(opts, cfg.Logging, cmd.ErrOrStderr())

	st, err := store.Open(store.Dialect(cfg.Target.Driver), cfg.Target.DSN)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target store", err)
	}
	defer closeStore(st, logger)

	if err := st.EnsureSchema(cmd.Context(), cfg.Target.Table); err != nil {
		return WrapExitError(ExitCommandError, "failed to ensure schema", err)
	}

	wm, err := incremental.Resolve(cmd.Context(), st, cfg.Target.Table, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to resolve watermark", err)
	}

	if wm == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "none")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), wm.Format("2006-01-02 15:04:05"))
	return nil
}
