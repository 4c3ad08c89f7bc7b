// Package history persists publish run outcomes to a local SQLite database.
package history
