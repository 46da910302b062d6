// Package runtime provides the execution context for relkit commands.
//
// It encapsulates shared dependencies needed by release actions: the
// logger, release configuration, and the git, GitHub and npm clients.
package runtime
