// Package quality enforces structural invariants on a cleaned dataset
// before it may be loaded.
//
// The gate runs three independent checks in a fixed order: required
// columns are non-null, quantity and price are positive, and order_id
// is unique. There is no partial-pass mode; the first violation aborts
// the run.
package quality

import (
	"log/slog"

	"salesetl/internal/dataset"
)

// Gate validates cleaned datasets. All checks are read-only.
type Gate struct {
	logger   *slog.Logger
	required []string
}

// NewGate creates a gate enforcing the standard required columns.
func NewGate(logger *slog.Logger) *Gate {
	return &Gate{logger: logger, required: dataset.RequiredColumns}
}

// Validate runs all checks in order and returns the first violation.
func (g *Gate) Validate(ds dataset.Dataset) error {
	if err := g.checkRequiredNotNull(ds); err != nil {
		return err
	}
	g.logger.Info("null check passed")

	if err := g.checkRanges(ds); err != nil {
		return err
	}
	g.logger.Info("range checks passed")

	if err := g.checkUniqueKey(ds); err != nil {
		return err
	}
	g.logger.Info("duplicate check passed")

	return nil
}

// checkRequiredNotNull fails if any required column was absent or
// uncoercible in any row.
func (g *Gate) checkRequiredNotNull(ds dataset.Dataset) error {
	for _, col := range g.required {
		for _, rec := range ds {
			if rec.Missing(col) {
				return &Violation{Code: CodeNullConstraint, Column: col, OrderID: rec.OrderID}
			}
		}
	}
	return nil
}

// checkRanges fails on the first row with quantity <= 0 or price <= 0.
func (g *Gate) checkRanges(ds dataset.Dataset) error {
	for _, rec := range ds {
		if rec.Quantity <= 0 {
			return &Violation{Code: CodeRange, Column: dataset.ColQuantity, OrderID: rec.OrderID}
		}
		if rec.Price <= 0 {
			return &Violation{Code: CodeRange, Column: dataset.ColPrice, OrderID: rec.OrderID}
		}
	}
	return nil
}

// checkUniqueKey verifies order_id uniqueness. The merge relies on a
// unique key, so the gate checks it independently of the transformer's
// dedup pass.
func (g *Gate) checkUniqueKey(ds dataset.Dataset) error {
	seen := make(map[int64]bool, len(ds))
	dups := 0
	for _, rec := range ds {
		if seen[rec.OrderID] {
			dups++
			continue
		}
		seen[rec.OrderID] = true
	}
	if dups > 0 {
		return &Violation{Code: CodeDuplicateKey, Count: dups}
	}
	return nil
}
