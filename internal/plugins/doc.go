// Package plugins ships the built-in pipeline stage kinds: export copies or
// converts item sources into the publish directory, mipmap converts an
// upstream stage's output into mipmapped textures, and register submits a
// publish record for an upstream stage's output.
package plugins
