package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"salesetl/internal/pipeline"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Pipeline/validation failure
	ExitCommandError = 2 // Command error (bad config, unreachable store, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// runReport is the marshalable form of a RunResult for CLI output.
type runReport struct {
	pipeline.RunResult
	Error string `json:"error,omitempty"`
}

func newRunReport(res pipeline.RunResult) runReport {
	rep := runReport{RunResult: res}
	if res.Err != nil {
		rep.Error = res.Err.Error()
	}
	return rep
}

// renderResult writes a run report in the requested format.
func renderResult(w io.Writer, format string, res pipeline.RunResult) error {
	rep := newRunReport(res)

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintf(w, "run:         %s\n", rep.RunID)
	fmt.Fprintf(w, "status:      %s\n", rep.Status)
	fmt.Fprintf(w, "rows in:     %d\n", rep.RowsIn)
	fmt.Fprintf(w, "duplicates:  %d\n", rep.DuplicatesRemoved)
	fmt.Fprintf(w, "rows new:    %d\n", rep.RowsNew)
	fmt.Fprintf(w, "rows loaded: %d\n", rep.RowsLoaded)
	if rep.Watermark != nil {
		fmt.Fprintf(w, "watermark:   %s\n", rep.Watermark.Format("2006-01-02 15:04:05"))
	}
	if rep.Error != "" {
		fmt.Fprintf(w, "failed at:   %s\n", rep.FailedStage)
		fmt.Fprintf(w, "error:       %s\n", rep.Error)
	}
	return nil
}
