// Command kiln drives the publish pipeline: it loads an item manifest,
// attaches configured pipeline stages, runs the accept/validate/publish/
// finalize lifecycle, and records run history.
package main
