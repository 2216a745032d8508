// Package source extracts raw sales batches from flat files.
//
// It is the pre-processing adapter in front of the pipeline core: its
// output contract is "a well-formed tabular dataset with the expected
// column set". File-format quirks (UTF-8 byte order marks, Excel
// exports that pack a whole row into one comma-joined column) are
// repaired here so the core never sees them.
package source
