package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/pipeline"
	"salesetl/internal/quality"
)

const fixedRunID = "0194c2f0-6b7a-7000-8000-3f6b1a2c9d4e"

func goldenTester(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func loadedResult() pipeline.RunResult {
	wm := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return pipeline.RunResult{
		RunID:             fixedRunID,
		Status:            pipeline.StatusLoaded,
		RowsIn:            3,
		DuplicatesRemoved: 1,
		RowsNew:           2,
		RowsLoaded:        2,
		Watermark:         &wm,
	}
}

func failedResult() pipeline.RunResult {
	return pipeline.RunResult{
		RunID:       fixedRunID,
		Status:      pipeline.StatusFailed,
		RowsIn:      2,
		FailedStage: pipeline.StageQuality,
		Err:         &quality.Violation{Code: quality.CodeRange, Column: "quantity", OrderID: 7},
	}
}

func TestRenderResult_LoadedText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "text", loadedResult()))
	goldenTester(t).Assert(t, "run_loaded_text", buf.Bytes())
}

func TestRenderResult_LoadedJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "json", loadedResult()))
	goldenTester(t).Assert(t, "run_loaded_json", buf.Bytes())
}

func TestRenderResult_SkippedText(t *testing.T) {
	wm := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	res := pipeline.RunResult{
		RunID:     fixedRunID,
		Status:    pipeline.StatusSkipped,
		RowsIn:    2,
		Watermark: &wm,
	}

	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "text", res))
	goldenTester(t).Assert(t, "run_skipped_text", buf.Bytes())
}

func TestRenderResult_FailedText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "text", failedResult()))
	goldenTester(t).Assert(t, "run_failed_text", buf.Bytes())
}

func TestRenderResult_FailedJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "json", failedResult()))
	goldenTester(t).Assert(t, "run_failed_json", buf.Bytes())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad config", errors.New("boom"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitFailure, "outer", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "outer: inner", err.Error())

	bare := &ExitError{Code: ExitFailure, Message: "outer"}
	assert.Equal(t, "outer", bare.Error())
}
