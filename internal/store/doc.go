// Package store provides the relational target for incremental sales
// loads, over database/sql with SQLite and Postgres dialects.
//
// The store owns all SQL: idempotent schema bootstrap for the target
// table and its paired staging table, the watermark aggregate read,
// and the staged merge. The merge replaces the staging table contents
// and applies a single set-based ON CONFLICT upsert keyed by order_id,
// all inside one transaction, so a failed run never commits partially
// and a re-run never double-applies rows.
//
// The design assumes at most one pipeline instance runs against a
// given target table at a time; serializing runs (for example with an
// external lock) is a deployment concern.
package store
