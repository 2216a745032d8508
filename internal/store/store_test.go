package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/dataset"
)

const testTable = "sales_orders"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func record(orderID int64, date time.Time, quantity int64, price float64) dataset.Record {
	return dataset.Record{
		OrderID:    orderID,
		OrderDate:  date,
		CustomerID: 100,
		Product:    "Widget",
		Quantity:   quantity,
		Price:      price,
		Revenue:    float64(quantity) * price,
	}
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(Dialect("oracle"), "dsn")
	require.Error(t, err)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.EnsureSchema(ctx, testTable))
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	var n int
	err := st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	err = st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders_staging").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSplitStatements_DropsCommentLines(t *testing.T) {
	// The embedded DDL carries -- comments, and comment prose may
	// contain semicolons. Splitting must yield exactly the two CREATE
	// TABLE statements, never a comment fragment.
	stmts := splitStatements(schemaSQL)
	require.Len(t, stmts, 2)
	for _, stmt := range stmts {
		assert.Contains(t, stmt, "CREATE TABLE")
		assert.NotContains(t, stmt, "--")
	}
}

func TestEnsureSchema_RejectsBadTableName(t *testing.T) {
	st := openTestStore(t)
	err := st.EnsureSchema(context.Background(), "orders; DROP TABLE users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestMaxOrderDate_EmptyTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	wm, err := st.MaxOrderDate(ctx, testTable)
	require.NoError(t, err)
	assert.Nil(t, wm)
}

func TestMergeStaged_InsertStampsCreated(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	rows, err := st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 2, 10),
	}, now, "system")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var createdBy string
	var createdDate time.Time
	var modifiedBy sql.NullString
	err = st.DB().QueryRow(
		"SELECT created_by, created_date, modified_by FROM sales_orders WHERE order_id = 1",
	).Scan(&createdBy, &createdDate, &modifiedBy)
	require.NoError(t, err)
	assert.Equal(t, "system", createdBy)
	assert.Equal(t, now, createdDate.UTC())
	assert.False(t, modifiedBy.Valid, "fresh insert must not stamp modified_by")
}

func TestMergeStaged_ConflictUpdatesMutableColumns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	day1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	_, err := st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 2, 10),
	}, day1, "system")
	require.NoError(t, err)

	_, err = st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(1, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), 5, 3),
	}, day2, "reloader")
	require.NoError(t, err)

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&count))
	assert.Equal(t, 1, count, "merge must never produce two rows per order_id")

	var quantity int64
	var revenue float64
	var createdBy, modifiedBy string
	var createdDate, modifiedDate time.Time
	err = st.DB().QueryRow(`
		SELECT quantity, revenue, created_by, created_date, modified_by, modified_date
		FROM sales_orders WHERE order_id = 1
	`).Scan(&quantity, &revenue, &createdBy, &createdDate, &modifiedBy, &modifiedDate)
	require.NoError(t, err)

	assert.Equal(t, int64(5), quantity)
	assert.Equal(t, 15.0, revenue)
	// Created stamps survive the update; modified stamps are new.
	assert.Equal(t, "system", createdBy)
	assert.Equal(t, day1, createdDate.UTC())
	assert.Equal(t, "reloader", modifiedBy)
	assert.Equal(t, day2, modifiedDate.UTC())
}

func TestMergeStaged_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	ds := dataset.Dataset{
		record(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 2, 10),
		record(2, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), 1, 4),
	}
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := st.MergeStaged(ctx, testTable, ds, now, "system")
	require.NoError(t, err)
	_, err = st.MergeStaged(ctx, testTable, ds, now, "system")
	require.NoError(t, err)

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&count))
	assert.Equal(t, 2, count)

	var revenue float64
	require.NoError(t, st.DB().QueryRow("SELECT revenue FROM sales_orders WHERE order_id = 1").Scan(&revenue))
	assert.Equal(t, 20.0, revenue)
}

func TestMergeStaged_StagingReplacedEachRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 1, 1),
		record(2, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), 1, 1),
	}, now, "system")
	require.NoError(t, err)

	_, err = st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(3, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 1, 1),
	}, now, "system")
	require.NoError(t, err)

	var staged int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders_staging").Scan(&staged))
	assert.Equal(t, 1, staged, "staging is not cumulative across runs")

	var total int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&total))
	assert.Equal(t, 3, total)
}

func TestMergeStaged_ChunksLargeBatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := make(dataset.Dataset, 0, stagingChunkSize+7)
	for i := 0; i < stagingChunkSize+7; i++ {
		ds = append(ds, record(int64(i+1), base.Add(time.Duration(i)*time.Minute), 1, 2))
	}

	rows, err := st.MergeStaged(ctx, testTable, ds, base, "system")
	require.NoError(t, err)
	assert.Equal(t, int64(stagingChunkSize+7), rows)

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&count))
	assert.Equal(t, stagingChunkSize+7, count)
}

func TestMergeStaged_FailureRollsBackEverything(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, testTable))

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.MergeStaged(ctx, testTable, dataset.Dataset{
		record(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 2, 10),
		record(2, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), 1, 4),
	}, now, "system")
	require.NoError(t, err)

	// A batch that fails in its second staging chunk: the first chunk
	// inserts cleanly, then a repeated order_id violates the staging
	// primary key mid-transaction.
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bad := make(dataset.Dataset, 0, stagingChunkSize+2)
	for i := 0; i < stagingChunkSize+1; i++ {
		bad = append(bad, record(int64(i+1), base.Add(time.Duration(i)*time.Minute), 9, 9))
	}
	bad = append(bad, record(1, base, 9, 9))

	_, err = st.MergeStaged(ctx, testTable, bad, now.AddDate(0, 0, 1), "system")
	require.Error(t, err)

	// Target is untouched: same rows, same values.
	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders").Scan(&count))
	assert.Equal(t, 2, count)

	var revenue float64
	require.NoError(t, st.DB().QueryRow("SELECT revenue FROM sales_orders WHERE order_id = 1").Scan(&revenue))
	assert.Equal(t, 20.0, revenue)

	// The staging DELETE rolled back too; staging still holds the
	// previous run's rows.
	var staged int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM sales_orders_staging").Scan(&staged))
	assert.Equal(t, 2, staged)
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: DialectSQLite}
	pg := &Store{dialect: DialectPostgres}

	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", pg.rebind(q))
}

func TestParseTimestamp(t *testing.T) {
	cases := []string{
		"2024-01-15 00:00:00",
		"2024-01-15T00:00:00Z",
		"2024-01-15 00:00:00+00:00",
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		got, err := parseTimestamp(c)
		require.NoError(t, err, c)
		assert.True(t, got.Equal(want), "%s parsed to %s", c, got)
	}

	_, err := parseTimestamp("not a timestamp")
	require.Error(t, err)
}
