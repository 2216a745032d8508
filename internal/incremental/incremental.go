// Package incremental decides which part of a validated batch is new.
//
// The watermark is always derived from the target store, never from
// the incoming batch: incoming files may be reprocessed, may mix old
// and new data, or may arrive late, and trusting the target is what
// keeps a stale reprocessed file from lowering the effective
// watermark. The pipeline reads the watermark once per run and never
// caches it across runs.
package incremental

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salesetl/internal/dataset"
	"salesetl/internal/store"
)

// WatermarkError is a failed watermark read. It is fatal: falling back
// to a full load silently would reprocess already-loaded data.
type WatermarkError struct {
	Table string
	Err   error
}

func (e *WatermarkError) Error() string {
	return fmt.Sprintf("fetch watermark from %s: %v", e.Table, e.Err)
}

func (e *WatermarkError) Unwrap() error {
	return e.Err
}

// Resolve reads the current watermark for the target table. Returns
// nil on an empty table (first run, full load).
func Resolve(ctx context.Context, st *store.Store, table string, logger *slog.Logger) (*time.Time, error) {
	wm, err := st.MaxOrderDate(ctx, table)
	if err != nil {
		return nil, &WatermarkError{Table: table, Err: err}
	}
	if wm == nil {
		logger.Info("no watermark found, full load", "table", table)
		return nil, nil
	}
	logger.Info("watermark fetched", "table", table, "watermark", wm)
	return wm, nil
}

// Filter retains the rows strictly newer than the watermark. A nil
// watermark returns the input unchanged; rows dated exactly at the
// watermark are considered already loaded. An empty result is a
// normal outcome, never an error.
func Filter(ds dataset.Dataset, watermark *time.Time) dataset.Dataset {
	if watermark == nil {
		return ds
	}
	out := make(dataset.Dataset, 0, len(ds))
	for _, rec := range ds {
		if rec.OrderDate.After(*watermark) {
			out = append(out, rec)
		}
	}
	return out
}
