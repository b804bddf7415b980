// Package pipeline orchestrates the per-item classification state machine.
//
// A run drains the pending catalog sequentially: items with synopsis text
// are classified in fixed-size batches, items without text fall back to
// their poster images, and items with neither are flagged for review. A
// low-confidence or inconsistent result triggers bounded single-item
// retries (same modality first, then images) before the strictly additive
// enforcement pass and persistence. Processing is deliberately sequential
// with fixed inter-item sleeps; the upstream endpoint's rate limit is the
// bottleneck, not local compute.
package pipeline
