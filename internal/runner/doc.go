// Package runner executes the publish lifecycle over a tree of tasks:
// accept, validate, publish, finalize.
package runner
