// Package logging wires slog with console and JSON handlers plus the
// standardized field names used across the publish workflow.
package logging
