// Package future provides pollable asynchronous values and the schedulers
// that drive them.
//
// A Future is polled, never awaited directly: each Poll either returns a
// ready rop.Result or reports pending after arranging a Waker call for when
// progress is possible. Composite futures (see package guard) can therefore
// observe several event sources in one non-blocking step.
//
// Highlights:
// - Promise/Go: futures resolved from the outside or by a goroutine
// - Done/Never/Func: trivial and adapter futures
// - Drop: release an abandoned future
// - Block: drive one future on the calling goroutine
// - Executor/Spawn: drive many futures cooperatively on one goroutine
package future
