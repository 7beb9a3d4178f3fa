// Package core contains pipeline plumbing utilities: channel helpers, worker
// and logger configuration via context, and the locomotive that drives
// stages. It does not define business logic; instead it provides the
// scaffolding for packages like lite and mass to run pipelines with
// controlled concurrency.
package core
