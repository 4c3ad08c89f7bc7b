package preflight

import (
	"context"

	"kiln/internal/config"
	"kiln/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Publish directory", cfg.Paths.PublishDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	results = append(results, CheckConverter(cfg))

	if cfg.Registry.Endpoint != "" {
		results = append(results, CheckRegistry(ctx, cfg.Registry.Endpoint))
	}

	return results
}

// CheckConverter verifies the configured conversion binary resolves on PATH.
func CheckConverter(cfg *config.Config) Result {
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:        "Converter",
		Command:     cfg.Converter.Binary,
		Description: "Required for texture conversion",
	}})
	status := statuses[0]
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}
