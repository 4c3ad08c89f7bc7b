// Package preflight validates the environment before a publish run:
// directory access, converter availability, and registry reachability.
package preflight
