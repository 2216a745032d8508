package transform

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"salesetl/internal/dataset"
)

// ErrEmptyInput is returned when the raw dataset has zero rows.
var ErrEmptyInput = errors.New("cannot transform empty dataset")

// defaultQuantity replaces quantities that are missing or uncoercible.
const defaultQuantity = 1

// dateLayouts are tried in order when coercing order_date values.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Stats summarizes what the transformer did to a batch.
type Stats struct {
	InputRows         int
	OutputRows        int
	DuplicatesRemoved int
	DatesCoerced      int // rows whose order_date fell back to the sentinel
	NegativeRevenue   int
}

// Transformer cleans raw batches into typed datasets.
type Transformer struct {
	logger *slog.Logger
}

// New creates a Transformer that logs through the given logger.
func New(logger *slog.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform cleans raw rows into records, in source order. A nil
// table is treated as empty.
//
// Guarantees on the returned dataset:
//   - quantity, price, order_date and revenue are set on every record
//   - order_id is unique; the first occurrence in source order wins
//   - revenue == quantity * price exactly
//
// Required values that were absent or uncoercible are recorded on
// Record.MissingColumns instead of failing here; the quality gate
// decides whether the run may proceed. Negative revenue is logged and
// counted but never fatal.
func (t *Transformer) Transform(tbl *dataset.Table) (dataset.Dataset, Stats, error) {
	var stats Stats
	if tbl == nil || len(tbl.Rows) == 0 {
		t.logger.Error("input dataset is empty")
		return nil, stats, ErrEmptyInput
	}
	stats.InputRows = len(tbl.Rows)

	t.logger.Info("starting transformation", "rows", stats.InputRows)

	out := make(dataset.Dataset, 0, len(tbl.Rows))
	seen := make(map[int64]bool, len(tbl.Rows))

	for _, row := range tbl.Rows {
		rec := t.clean(row, &stats)

		// Dedup by order_id, first occurrence wins. Records whose
		// order_id could not be parsed are kept; the gate rejects them
		// as nulls rather than letting them collapse into one key.
		if !rec.Missing(dataset.ColOrderID) {
			if seen[rec.OrderID] {
				stats.DuplicatesRemoved++
				continue
			}
			seen[rec.OrderID] = true
		}
		out = append(out, rec)
	}

	stats.OutputRows = len(out)
	if stats.DuplicatesRemoved > 0 {
		t.logger.Info("removed duplicate rows", "key", dataset.ColOrderID, "removed", stats.DuplicatesRemoved)
	}
	if stats.DatesCoerced > 0 {
		t.logger.Warn("unparsable order dates mapped to sentinel", "rows", stats.DatesCoerced)
	}
	if stats.NegativeRevenue > 0 {
		t.logger.Warn("negative revenue values found", "rows", stats.NegativeRevenue)
	}

	t.logger.Info("transformation completed", "rows", stats.OutputRows)
	return out, stats, nil
}

// clean builds one typed record from a raw row.
func (t *Transformer) clean(row dataset.Row, stats *Stats) dataset.Record {
	var rec dataset.Record

	// Required identifiers: uncoercible values are nulls for the gate.
	var ok bool
	if rec.OrderID, ok = parseInt(row[dataset.ColOrderID]); !ok {
		rec.MissingColumns = append(rec.MissingColumns, dataset.ColOrderID)
	}
	if rec.CustomerID, ok = parseInt(row[dataset.ColCustomerID]); !ok {
		rec.MissingColumns = append(rec.MissingColumns, dataset.ColCustomerID)
	}

	rec.Product = norm.NFC.String(strings.TrimSpace(row[dataset.ColProduct]))
	if rec.Product == "" {
		rec.MissingColumns = append(rec.MissingColumns, dataset.ColProduct)
	}

	// Missing and uncoercible quantities are treated identically: the
	// default applies after coercion, not before.
	if rec.Quantity, ok = parseInt(row[dataset.ColQuantity]); !ok {
		rec.Quantity = defaultQuantity
	}

	// Price is coerced from the price column on its own; invalid values
	// become 0.0 and fail the range check downstream.
	if rec.Price, ok = parseFloat(row[dataset.ColPrice]); !ok {
		rec.Price = 0.0
	}

	if rec.OrderDate, ok = parseDate(row[dataset.ColOrderDate]); !ok {
		rec.OrderDate = dataset.SentinelDate
		stats.DatesCoerced++
	}

	rec.Revenue = float64(rec.Quantity) * rec.Price
	if rec.Revenue < 0 {
		stats.NegativeRevenue++
	}

	return rec
}

// parseInt coerces a raw value to an integer. Values like "2.0" are
// accepted and truncated, matching numeric coercion of the source feed.
func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
