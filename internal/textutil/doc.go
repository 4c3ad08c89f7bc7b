// Package textutil provides small text helpers for safe filesystem names and
// bounded display strings.
package textutil
