package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"salesetl/internal/dataset"
)

// SchemaError reports required columns missing from the extracted file.
type SchemaError struct {
	Missing []string
	Actual  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("csv schema mismatch: missing columns %v (got %v)", e.Missing, e.Actual)
}

// CSVExtractor reads one raw sales batch from a CSV file.
type CSVExtractor struct {
	path   string
	logger *slog.Logger
}

// NewCSVExtractor creates an extractor for the file at path.
func NewCSVExtractor(path string, logger *slog.Logger) *CSVExtractor {
	return &CSVExtractor{path: path, logger: logger}
}

// Extract reads the file and returns a well-formed tabular dataset.
//
// The reader strips a UTF-8 BOM if present (Excel exports carry one).
// If the header row is packed into a single comma-joined column, the
// header and every data row are split apart before use. Extraction
// fails if any required column is absent after repair.
func (e *CSVExtractor) Extract(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("open raw data file: %w", err)
	}
	defer f.Close()

	return e.extract(f)
}

func (e *CSVExtractor) extract(r io.Reader) (*dataset.Table, error) {
	// utf-8-sig: decode through a BOM-aware reader so a leading BOM
	// never ends up glued to the first column name.
	dec := unicode.UTF8BOM.NewDecoder()
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1 // variable, for the packed-column repair case
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("raw data file is empty")
	}

	header := records[0]
	body := records[1:]

	if packed(header) {
		e.logger.Warn("detected malformed csv structure, splitting packed columns",
			"packed_header", header[0])
		header, body = repack(header, body)
	}

	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Actual: columns}
	}

	rows := make([]dataset.Row, 0, len(body))
	for _, rec := range body {
		row := dataset.Row{}
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}

	e.logger.Info("extracted raw data",
		"rows", len(rows),
		"columns", len(columns))

	return &dataset.Table{Columns: columns, Rows: rows}, nil
}

// packed reports whether the header row was collapsed into a single
// comma-joined column (at most two fields, the first containing commas).
func packed(header []string) bool {
	return len(header) <= 2 && len(header) > 0 && strings.Contains(header[0], ",")
}

// repack splits a packed header and its data rows back into columns.
func repack(header []string, body [][]string) ([]string, [][]string) {
	fixedHeader := strings.Split(header[0], ",")
	fixedBody := make([][]string, len(body))
	for i, rec := range body {
		if len(rec) > 0 {
			fixedBody[i] = strings.Split(rec[0], ",")
		}
	}
	return fixedHeader, fixedBody
}

func missingColumns(columns []string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	var missing []string
	for _, c := range dataset.RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
