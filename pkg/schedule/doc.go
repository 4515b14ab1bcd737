// Package schedule holds the screen document model and the evaluator that
// decides which item a screen shows at a given moment.
//
// Activation times are compared at minute resolution (the evaluation time is
// truncated to the start of its minute) while expiry times are compared at
// millisecond resolution against the untruncated time. Items are evaluated in
// document order and the first eligible item wins, so documents are kept
// sorted by activation time (see Normalize).
package schedule
