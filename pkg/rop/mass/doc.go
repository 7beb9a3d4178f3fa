// Package mass implements channel-based building blocks that lift solo
// primitives onto a single result: each stage runs in its own goroutine and
// delivers one result, or calls onCancel when the context ends first.
//
// Guarding lifts solo.Guard, so an interrupt request becomes a cancel result
// travelling down the pipeline. Finalizing collapses a stream of results.
//
// It is used by lite to compose concurrent pipelines.
package mass
