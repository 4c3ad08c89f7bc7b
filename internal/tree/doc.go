// Package tree holds the publish tree: the hierarchy of items and the tasks
// attached to them, with the tri-state check model that decides what the
// runner executes.
package tree
