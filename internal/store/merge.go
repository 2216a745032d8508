package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"salesetl/internal/dataset"
)

// stagingChunkSize bounds the number of rows per staging INSERT.
const stagingChunkSize = 500

// MergeStaged writes the dataset to the staging table and upserts it
// into the target, all in one transaction.
//
// Staging contents are replaced entirely each run. The upsert inserts
// new rows keyed by order_id, stamping created_date/created_by, and on
// key collision updates all mutable columns, stamping
// modified_date/modified_by. Returns the number of rows processed.
//
// Any failure rolls the transaction back; the target is either fully
// updated or untouched.
func (s *Store) MergeStaged(ctx context.Context, table string, ds dataset.Dataset, now time.Time, actor string) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	staging := stagingTable(table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", staging)); err != nil {
		return 0, fmt.Errorf("replace staging %s: %w", staging, err)
	}

	for start := 0; start < len(ds); start += stagingChunkSize {
		end := min(start+stagingChunkSize, len(ds))
		if err := s.insertStaging(ctx, tx, staging, ds[start:end]); err != nil {
			return 0, err
		}
	}

	if err := s.upsert(ctx, tx, table, staging, now, actor); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge into %s: %w", table, err)
	}
	committed = true
	return int64(len(ds)), nil
}

// insertStaging writes one chunk with a multi-row INSERT.
func (s *Store) insertStaging(ctx context.Context, tx execer, staging string, chunk dataset.Dataset) error {
	placeholders := make([]string, 0, len(chunk))
	args := make([]any, 0, len(chunk)*7)
	for _, rec := range chunk {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rec.OrderID,
			rec.OrderDate,
			rec.CustomerID,
			rec.Product,
			rec.Quantity,
			rec.Price,
			rec.Revenue,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (order_id, order_date, customer_id, product, quantity, price, revenue)
		VALUES %s
	`, staging, strings.Join(placeholders, ", "))

	if _, err := tx.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("stage rows into %s: %w", staging, err)
	}
	return nil
}

// upsert applies the set-based merge from staging into the target.
func (s *Store) upsert(ctx context.Context, tx execer, table, staging string, now time.Time, actor string) error {
	// The WHERE true keeps SQLite's parser from reading ON CONFLICT as
	// a join clause of the SELECT.
	query := fmt.Sprintf(`
		INSERT INTO %s (order_id, order_date, customer_id, product, quantity, price, revenue, created_date, created_by)
		SELECT order_id, order_date, customer_id, product, quantity, price, revenue, ?, ?
		FROM %s
		WHERE true
		ON CONFLICT (order_id) DO UPDATE SET
			order_date    = excluded.order_date,
			customer_id   = excluded.customer_id,
			product       = excluded.product,
			quantity      = excluded.quantity,
			price         = excluded.price,
			revenue       = excluded.revenue,
			modified_date = ?,
			modified_by   = ?
	`, table, staging)

	if _, err := tx.ExecContext(ctx, s.rebind(query), now, actor, now, actor); err != nil {
		return fmt.Errorf("merge %s into %s: %w", staging, table, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
