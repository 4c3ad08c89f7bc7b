// Package pipeline defines the configured stage list the publish run executes:
// plugin descriptors, their settings schemas, the four-phase plugin contract,
// and name-based dependency resolution between stages.
package pipeline
