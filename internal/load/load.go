// Package load writes a filtered batch into the target store through
// the staged, conflict-resolving merge.
package load

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salesetl/internal/dataset"
	"salesetl/internal/store"
)

// DefaultActor stamps audit columns when no actor is configured.
const DefaultActor = "system"

// Clock supplies the wall time stamped on audit columns. Injected so
// merges are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// LoadError is a store-level failure during staging or merge. The
// transaction has been rolled back; nothing was committed.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load into %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader performs the merge step of a run.
type Loader struct {
	store  *store.Store
	clock  Clock
	actor  string
	logger *slog.Logger
}

// NewLoader creates a loader stamping audit columns with the given
// actor. An empty actor defaults to "system"; a nil clock defaults to
// the system clock.
func NewLoader(st *store.Store, clock Clock, actor string, logger *slog.Logger) *Loader {
	if clock == nil {
		clock = SystemClock{}
	}
	if actor == "" {
		actor = DefaultActor
	}
	return &Loader{store: st, clock: clock, actor: actor, logger: logger}
}

// Load stages the dataset and merges it into the target table,
// returning the number of rows processed.
//
// Precondition: ds is non-empty. The orchestrator short-circuits empty
// batches before this point; no staging table is touched for zero rows.
func (l *Loader) Load(ctx context.Context, ds dataset.Dataset, table string) (int64, error) {
	if len(ds) == 0 {
		return 0, &LoadError{Table: table, Err: fmt.Errorf("cannot load empty dataset")}
	}

	rows, err := l.store.MergeStaged(ctx, table, ds, l.clock.Now(), l.actor)
	if err != nil {
		return 0, &LoadError{Table: table, Err: err}
	}

	l.logger.Info("merged batch into target", "table", table, "rows", rows)
	return rows, nil
}
