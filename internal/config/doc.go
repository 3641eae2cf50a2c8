// Package config handles configuration loading for porter-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	vault:
//	  master_secret: "${PORTER_MASTER_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/porter/gateway.db"
//
// Vault (connection parameter encryption):
//
//	vault:
//	  master_secret: "${PORTER_MASTER_SECRET}"
//
// Admin API:
//
//	admin:
//	  jwt_secret: "${PORTER_ADMIN_SECRET}"
//
// Package runner:
//
//	runner:
//	  install_dir: "/var/lib/porter/installs"
//	  npm_bin: "npm"
//	  uv_bin: "uv"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server address presence
//   - Database path presence
//   - Master secret minimum length (16 bytes)
//   - Install directory presence
package config
