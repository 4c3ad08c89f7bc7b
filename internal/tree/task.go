package tree

import (
	"kiln/internal/item"
	"kiln/internal/pipeline"
)

// Task pairs one item with one configured pipeline stage. It is the unit the
// lifecycle runner executes.
type Task struct {
	Item     *item.Item
	Plugin   *pipeline.Descriptor
	Settings pipeline.Settings

	// Enabled comes from configuration and cannot be overridden by the
	// user: a disabled task can never be checked.
	Enabled bool
	Visible bool
	// Required marks the task as non-uncheckable: attempts to uncheck it
	// degrade back to checked while the task is enabled and its item active.
	Required bool

	Status       Status
	ErrorMessage string
}

// NewTask binds an item to a stage descriptor with the stage's resolved
// settings and configured enabled state.
func NewTask(it *item.Item, desc *pipeline.Descriptor) *Task {
	return &Task{
		Item:     it,
		Plugin:   desc,
		Settings: desc.Settings(),
		Enabled:  desc.Enabled(),
		Visible:  true,
		Status:   StatusPending,
	}
}

// Advance moves the task to the next lifecycle status when the transition is
// legal; illegal transitions are ignored so a failed task stays failed.
func (t *Task) Advance(to Status) bool {
	if !CanAdvance(t.Status, to) {
		return false
	}
	t.Status = to
	return true
}

// SetFailed marks the task as failed with the given message.
func (t *Task) SetFailed(message string) {
	t.Status = StatusFailed
	t.ErrorMessage = message
}
