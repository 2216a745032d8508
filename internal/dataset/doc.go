// Package dataset defines the in-memory shapes that move through the
// pipeline: raw tabular rows as produced by the source adapter, and
// typed sales records as produced by the transformer.
//
// A Record exists only for the duration of one pipeline run. It is
// constructed by the transformer, validated read-only by the quality
// gate, filtered read-only by the incremental filter, and consumed
// exactly once by the merge loader.
package dataset
