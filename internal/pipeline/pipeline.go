package pipeline

import (
	"context"
	"log/slog"
	"time"

	"salesetl/internal/dataset"
	"salesetl/internal/incremental"
	"salesetl/internal/load"
	"salesetl/internal/quality"
	"salesetl/internal/store"
	"salesetl/internal/transform"
)

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusLoaded means new rows were merged into the target.
	StatusLoaded Status = "loaded"
	// StatusSkipped means nothing survived the incremental filter; the
	// store was not touched.
	StatusSkipped Status = "skipped"
	// StatusFailed means a component failed and the run stopped.
	StatusFailed Status = "failed"
)

// Stage names the component that ended a failed run.
type Stage string

const (
	StageTransform Stage = "transform"
	StageQuality   Stage = "quality"
	StageWatermark Stage = "watermark"
	StageLoad      Stage = "load"
)

// RunResult reports the outcome of one run.
type RunResult struct {
	RunID             string     `json:"run_id"`
	Status            Status     `json:"status"`
	RowsIn            int        `json:"rows_in"`
	DuplicatesRemoved int        `json:"duplicates_removed"`
	RowsNew           int        `json:"rows_new"`
	RowsLoaded        int64      `json:"rows_loaded"`
	Watermark         *time.Time `json:"watermark,omitempty"`

	// FailedStage and Err are set only when Status is StatusFailed.
	FailedStage Stage `json:"failed_stage,omitempty"`
	Err         error `json:"-"`
}

// RunnerConfig wires a Runner. Store, Table and Logger are required;
// nil Clock and RunIDs fall back to production defaults.
type RunnerConfig struct {
	Store  *store.Store
	Table  string
	Actor  string
	Clock  load.Clock
	RunIDs RunIDGenerator
	Logger *slog.Logger
}

// Runner executes the transform-validate-merge sequence against one
// target table.
type Runner struct {
	store  *store.Store
	table  string
	actor  string
	clock  load.Clock
	runIDs RunIDGenerator
	logger *slog.Logger
}

// NewRunner creates a Runner from the given configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	runIDs := cfg.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}
	return &Runner{
		store:  cfg.Store,
		table:  cfg.Table,
		actor:  cfg.Actor,
		clock:  cfg.Clock,
		runIDs: runIDs,
		logger: cfg.Logger,
	}
}

// Run executes one pipeline run over an extracted raw dataset.
//
// The watermark is read from the target after validation and before
// filtering; it is never cached across runs. An empty filtered batch
// short-circuits before the loader, so no staging table is created for
// zero rows.
func (r *Runner) Run(ctx context.Context, raw *dataset.Table) RunResult {
	res := RunResult{RunID: r.runIDs.Generate(), Status: StatusFailed}
	logger := r.logger.With("run_id", res.RunID, "table", r.table)

	// Extracted -> Transformed
	ds, stats, err := transform.New(logger).Transform(raw)
	if err != nil {
		return r.fail(logger, res, StageTransform, err)
	}
	res.RowsIn = stats.InputRows
	res.DuplicatesRemoved = stats.DuplicatesRemoved

	// Transformed -> Validated
	if err := quality.NewGate(logger).Validate(ds); err != nil {
		return r.fail(logger, res, StageQuality, err)
	}

	// Validated -> WatermarkKnown. Bootstrap first so the very first
	// run sees an empty table, not a missing one.
	if err := r.store.EnsureSchema(ctx, r.table); err != nil {
		return r.fail(logger, res, StageWatermark, err)
	}
	wm, err := incremental.Resolve(ctx, r.store, r.table, logger)
	if err != nil {
		return r.fail(logger, res, StageWatermark, err)
	}
	res.Watermark = wm

	// WatermarkKnown -> Filtered
	filtered := incremental.Filter(ds, wm)
	res.RowsNew = len(filtered)
	if wm != nil {
		logger.Info("incremental filter applied", "before", len(ds), "after", len(filtered))
	}

	if len(filtered) == 0 {
		logger.Info("no new records to load, skipping write")
		res.Status = StatusSkipped
		return res
	}

	// Filtered -> Loaded
	rows, err := load.NewLoader(r.store, r.clock, r.actor, logger).Load(ctx, filtered, r.table)
	if err != nil {
		return r.fail(logger, res, StageLoad, err)
	}
	res.RowsLoaded = rows
	res.Status = StatusLoaded

	logger.Info("pipeline run completed", "rows_loaded", rows)
	return res
}

func (r *Runner) fail(logger *slog.Logger, res RunResult, stage Stage, err error) RunResult {
	res.Status = StatusFailed
	res.FailedStage = stage
	res.Err = err
	logger.Error("pipeline run failed", "stage", string(stage), "error", err)
	return res
}
