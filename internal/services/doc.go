// Package services provides the shared error taxonomy and context plumbing
// used by the publish pipeline and its external-service clients.
package services
