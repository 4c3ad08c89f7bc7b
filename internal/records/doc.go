// Package records reports published assets to the site asset registry.
package records
