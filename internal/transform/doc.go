// Package transform cleans and normalizes one raw sales batch into a
// typed dataset.
//
// The cleaning order is fixed: default missing quantities, coerce
// types, map unparsable dates to a sentinel, deduplicate by order_id
// keeping the first occurrence, then derive revenue. Coercion failures
// never abort the run; they either fall back to a default or are
// recorded on the record for the quality gate to judge.
package transform
