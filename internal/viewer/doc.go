// Package viewer implements the screen session: the single authoritative
// in-memory state of one screen. A Session owns the screen document, the URL
// currently shown and the controller connectivity flag. It re-evaluates the
// schedule on a timer, applies documents and reassignments pushed by the
// controller, persists every change, pushes its state back upstream and
// reports what the display should show through Handlers.
//
// All state is owned by the goroutine running Session.Run. Other goroutines
// interact with a running session only through Submit and its wrappers.
package viewer
