// Package rop holds the railway value shared by every pipeline package: a
// Result is either a success, a failure or a cancellation. Interrupt requests
// ride the cancel track, so a pipeline reacts to Ctrl+C the same way it reacts
// to any other failure.
package rop
