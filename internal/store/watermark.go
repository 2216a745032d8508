package store

import (
	"context"
	"fmt"
	"time"
)

// timestampLayouts cover the textual forms drivers hand back for
// aggregate results, where declared column types are lost.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MaxOrderDate returns the maximum order_date committed to the target
// table, or nil when the table has no rows.
func (s *Store) MaxOrderDate(ctx context.Context, table string) (*time.Time, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	var raw any
	query := fmt.Sprintf("SELECT MAX(order_date) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return nil, fmt.Errorf("query max order_date from %s: %w", table, err)
	}
	if raw == nil {
		return nil, nil
	}

	ts, err := scanTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("decode max order_date from %s: %w", table, err)
	}
	return &ts, nil
}

// scanTimestamp normalizes a driver value to a UTC timestamp. Postgres
// returns time.Time; SQLite returns the stored text for expression
// results such as MAX().
func scanTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseTimestamp(string(v))
	case string:
		return parseTimestamp(v)
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
