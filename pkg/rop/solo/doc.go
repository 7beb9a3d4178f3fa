// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T]. These functions form the core building blocks for error-aware
// pipelines without channels.
//
// Highlights:
// - Succeed/Fail/Cancel: construct Result[T]
// - Validate/AndValidate: apply validation producing failure on invalid input
// - Switch/Map: move from Result[In] to Result[Out]
// - Try: call a function (Out, error) and convert error to failure
// - Guard: Try raced against an interrupt source
// - Tee/DoubleTee: side-effect helpers
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
