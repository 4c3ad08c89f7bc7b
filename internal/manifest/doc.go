// Package manifest loads TOML publish manifests into an item tree.
package manifest
