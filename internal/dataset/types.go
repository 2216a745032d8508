package dataset

import "time"

// Column names shared by the source contract, the transformer, and the
// target table. order_id is the dedup and merge key.
const (
	ColOrderID    = "order_id"
	ColOrderDate  = "order_date"
	ColCustomerID = "customer_id"
	ColProduct    = "product"
	ColQuantity   = "quantity"
	ColPrice      = "price"
	ColRevenue    = "revenue"
)

// RequiredColumns lists the columns the source must provide. Extra
// columns in the raw file are ignored.
var RequiredColumns = []string{
	ColOrderID,
	ColOrderDate,
	ColCustomerID,
	ColProduct,
	ColQuantity,
	ColPrice,
}

// SentinelDate is the placeholder assigned to unparsable order dates so
// malformed rows survive the transform instead of aborting the run.
//
// It sits in the far past: the watermark is MAX(order_date) over the
// target, so a sentinel must sort below every real order date or one
// malformed row would raise the watermark past all future batches.
var SentinelDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Row is one raw tabular row keyed by column name. Values are the
// untyped strings read from the source file.
type Row map[string]string

// Table is an ordered raw dataset sharing one schema.
type Table struct {
	Columns []string
	Rows    []Row
}

// Record is one cleaned sales transaction.
//
// MissingColumns records required columns whose raw value was absent or
// uncoercible. It is the typed-struct stand-in for column nulls: the
// quality gate consults it, and it is never persisted.
type Record struct {
	OrderID    int64
	OrderDate  time.Time
	CustomerID int64
	Product    string
	Quantity   int64
	Price      float64
	Revenue    float64

	MissingColumns []string
}

// Missing reports whether the named required column was absent or
// uncoercible in the raw row this record was built from.
func (r Record) Missing(column string) bool {
	for _, c := range r.MissingColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Dataset is an ordered collection of cleaned records. Order follows
// the source file; it matters only for first-seen-wins deduplication.
type Dataset []Record
