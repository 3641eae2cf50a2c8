// ABOUTME: Package documentation for the gateway core
// ABOUTME: Describes the resolution surface and server composition

// Package gateway assembles the server and exposes the capability
// resolution API.
//
// # Composition
//
// New wires the SQLite store, the credential vault, the capability
// resolver, the command transformer and both auth schemes into a
// single HTTP server. The resolution surface authenticates with API
// keys; the /admin/ subtree (see package admin) authenticates with
// JWTs; /healthz is open.
//
// # Resolution endpoints
//
//	GET /resolve/tool?name=X
//	GET /resolve/prompt?name=X
//	GET /resolve/resource?uri=X
//
// Each returns the owning connection's decrypted, transformed run
// parameters:
//
//	{"uuid": "...", "name": "X", "type": "stdio",
//	 "command": "...", "args": [...], "env": {...}, "url": ""}
//
// Args and env are always present in the response, never null. Name
// collisions across connections resolve to the earliest-registered
// connection.
//
// # Listing endpoints
//
// /tools, /prompts and /resources list every resolvable capability of
// the profile; /profile-capabilities reports which kinds the profile
// has enabled.
//
// # Error mapping
//
// Missing query parameters are 400; authentication failures are 401;
// unresolvable names (including disabled kinds and deactivated
// connections) are 404. Decryption and install failures are logged
// with detail but surface as an opaque 500, so secret material and
// installer output never reach resolution clients.
package gateway
