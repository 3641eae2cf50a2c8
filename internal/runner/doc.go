// ABOUTME: Package documentation for command transformation
// ABOUTME: Describes runner conventions, install caching and concurrency behavior

// Package runner turns package-runner invocations into direct binary
// executions.
//
// Connections registered with commands like
//
//	npx -y @scope/server@1.2.3 /data
//	uvx mcp-server-fetch
//
// would re-download their package on every launch. The Transformer
// installs the package once into a per-connection directory and
// rewrites the command to the installed binary, preserving the
// arguments after the package spec and the environment untouched.
// Commands that are not npx or uvx pass through unchanged, as do
// invocations that name no package.
//
// # Install caching
//
// Completed installs are recorded in the store and consulted on every
// resolution. Records never expire on their own; updating a
// connection's parameters invalidates its record so the next
// resolution reinstalls.
//
// Failed installs are not recorded. The failure is shared with every
// request waiting on that install, and the next resolution starts
// over.
//
// # Concurrency
//
// Concurrent resolutions of the same connection coalesce onto a single
// install execution via singleflight, keyed by connection ID. The
// install itself runs on a context detached from the triggering
// request, so a caller hanging up cannot strand the other waiters.
package runner
