// ABOUTME: Package documentation for the admin API
// ABOUTME: Describes routes, auth and the secret-handling rules

// Package admin implements the management HTTP API.
//
// All routes live under /admin/ and require a JWT bearer token signed
// with the configured admin secret. This surface is the only write
// path into the gateway: profiles, connections, capability rows and
// API keys are all managed here, while the resolution surface stays
// read-only.
//
// # Routes
//
//	POST   /admin/profiles                          create profile
//	GET    /admin/profiles                          list profiles
//	GET    /admin/profiles/{id}                     get profile
//	DELETE /admin/profiles/{id}                     delete profile (cascades)
//	PUT    /admin/profiles/{id}/capabilities        toggle enabled kinds
//	POST   /admin/profiles/{id}/connections         register connection
//	GET    /admin/profiles/{id}/connections         list connections
//	POST   /admin/profiles/{id}/import              import TOML registry file
//	POST   /admin/profiles/{id}/keys                issue API key
//	GET    /admin/profiles/{id}/keys                list API keys
//	GET    /admin/connections/{id}                  connection detail
//	PUT    /admin/connections/{id}                  update connection params
//	DELETE /admin/connections/{id}                  delete connection
//	POST   /admin/connections/{id}/status           activate or deactivate
//	PUT    /admin/connections/{id}/capabilities     replace discovered capabilities
//	DELETE /admin/keys/{id}                         revoke API key
//
// # Secret handling
//
// Run parameters arrive in plaintext, are encrypted by the vault
// before insert, and are decrypted only for the single-connection
// detail view. Listing endpoints never carry parameters in any form.
// API key tokens appear once in the creation response and are not
// recoverable afterwards.
package admin
