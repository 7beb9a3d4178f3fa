// Package lite provides lightweight channel-lifted helpers that wrap solo
// primitives for concurrent pipelines. It is designed for simple fan-out/fan-in
// flows without custom cancellation handling.
//
// Common usage:
// - Run: execute an engine over an input channel with a fixed number of lines
// - Validate/Try/Switch/Map/Tee: lift solo operations over channels
// - Guard: Try with each item raced against an interrupt source
// - Turnout: compose stages with configurable parallelism
// - Finally: map Result[In] to Out on completion
//
// Guarding is per stage. A stage built with Try after a Guard stage keeps
// running its items through an interrupt; wrap it with Guard as well when it
// should stop too.
package lite
