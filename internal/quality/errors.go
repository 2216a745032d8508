package quality

import "fmt"

// ViolationCode categorizes data-quality failures.
type ViolationCode string

const (
	// CodeNullConstraint indicates a required column held a null or
	// uncoercible value.
	CodeNullConstraint ViolationCode = "NULL_CONSTRAINT"

	// CodeRange indicates quantity or price was outside its valid range.
	CodeRange ViolationCode = "RANGE"

	// CodeDuplicateKey indicates two or more rows shared an order_id.
	CodeDuplicateKey ViolationCode = "DUPLICATE_KEY"
)

// Violation is a data-quality failure detected by the gate. Every
// violation is terminal for the current run.
type Violation struct {
	// Code identifies the failed check.
	Code ViolationCode

	// Column names the offending column (null and range violations).
	Column string

	// OrderID identifies the first offending row where known.
	OrderID int64

	// Count is the number of offending rows (duplicate violations).
	Count int
}

func (v *Violation) Error() string {
	switch v.Code {
	case CodeNullConstraint:
		return fmt.Sprintf("%s: null values found in required column %q", v.Code, v.Column)
	case CodeRange:
		return fmt.Sprintf("%s: %s must be > 0 (order_id=%d)", v.Code, v.Column, v.OrderID)
	case CodeDuplicateKey:
		return fmt.Sprintf("%s: duplicate order_id found: %d", v.Code, v.Count)
	}
	return fmt.Sprintf("%s: data quality violation", v.Code)
}
