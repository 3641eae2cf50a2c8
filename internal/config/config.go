// ABOUTME: Configuration loading and parsing for porter-gateway
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete porter-gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Vault    VaultConfig    `yaml:"vault"`
	Admin    AdminConfig    `yaml:"admin"`
	Runner   RunnerConfig   `yaml:"runner"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// VaultConfig holds the master secret used to derive per-profile
// encryption keys for connection parameters.
type VaultConfig struct {
	MasterSecret string `yaml:"master_secret"`
}

// AdminConfig holds admin API authentication configuration
type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RunnerConfig holds package installation configuration.
// InstallDir is the root under which per-connection install
// sandboxes are created.
type RunnerConfig struct {
	InstallDir string `yaml:"install_dir"`
	NpmBin     string `yaml:"npm_bin"`
	UvBin      string `yaml:"uv_bin"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional fields.
func (c *Config) applyDefaults() {
	if c.Runner.NpmBin == "" {
		c.Runner.NpmBin = "npm"
	}
	if c.Runner.UvBin == "" {
		c.Runner.UvBin = "uv"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Vault.MasterSecret == "" {
		return fmt.Errorf("vault.master_secret is required")
	}
	if len(c.Vault.MasterSecret) < 16 {
		return fmt.Errorf("vault.master_secret must be at least 16 characters")
	}

	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin.jwt_secret is required")
	}

	if c.Runner.InstallDir == "" {
		return fmt.Errorf("runner.install_dir is required")
	}

	return nil
}
