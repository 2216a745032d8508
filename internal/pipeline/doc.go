// Package pipeline orchestrates one incremental load run.
//
// A run is a strict sequential state machine:
//
//	Extracted -> Transformed -> Validated -> WatermarkKnown -> Filtered
//	          -> Loaded | Skipped | Failed
//
// Each arrow is one component call. The first failure ends the run; no
// retries, no partial continuation, no mid-pipeline checkpoints. A
// failed run is simply re-executed from the start after the root cause
// is fixed, which is safe because the merge is an idempotent upsert
// keyed by order_id.
//
// PRECONDITION: at most one run may execute against a given target
// table at a time. Serializing runs (for example with an external
// lock) is a deployment concern, not the pipeline's.
package pipeline
