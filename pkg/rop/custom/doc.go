// Package custom runs channel pipelines with explicit cancellation handling.
// Where lite drops whatever is in flight when the context ends, custom hands
// unprocessed, processed and remaining items to core.CancellationHandlers.
//
// Paired with interrupt.NotifyContext, CancelRemaining turns a Ctrl-C into a
// cancel result for every item the pipeline had not finished.
package custom
