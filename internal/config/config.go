package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig represents the MCP server configuration
type ServerConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	LogLevel  string `yaml:"log_level"`
	Transport string `yaml:"transport"`
}

// DatabaseConfig represents the database connection configuration
type DatabaseConfig struct {
	Dialect  string `yaml:"dialect"` // mysql, postgres, mssql
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// SecurityConfig carries the safety ceilings for destructive operations.
type SecurityConfig struct {
	UpdateDefaultLimit int64 `yaml:"update_default_limit"`
	DeleteDefaultLimit int64 `yaml:"delete_default_limit"`
	BulkDefaultBatch   int   `yaml:"bulk_default_batch"`
	// AllowDestructive controls whether drop_table and delete_records are
	// registered at all. Confirmation tokens still apply when enabled.
	AllowDestructive *bool `yaml:"allow_destructive"`
}

// Load loads the configuration from a file and overrides with environment variables
func Load(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.overrideWithEnv()
	config.applyDefaults()

	return &config, nil
}

// Default returns a configuration built from environment variables alone,
// used when no config file is present.
func Default() *Config {
	config := &Config{}
	config.overrideWithEnv()
	config.applyDefaults()
	return config
}

// applyDefaults fills unset fields with server defaults
func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "mcp-databases"
	}
	if c.Server.Version == "" {
		c.Server.Version = "1.0.0"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = "stdio"
	}
	if c.Database.Dialect == "" {
		c.Database.Dialect = "mysql"
	}
	if c.Security.UpdateDefaultLimit <= 0 {
		c.Security.UpdateDefaultLimit = 100
	}
	if c.Security.DeleteDefaultLimit <= 0 {
		c.Security.DeleteDefaultLimit = 100
	}
	if c.Security.BulkDefaultBatch <= 0 {
		c.Security.BulkDefaultBatch = 100
	}
	if c.Security.AllowDestructive == nil {
		allowed := true
		c.Security.AllowDestructive = &allowed
	}
}

// DestructiveAllowed reports whether drop_table and delete_records may be
// registered. Defaults to true.
func (c *Config) DestructiveAllowed() bool {
	return c.Security.AllowDestructive == nil || *c.Security.AllowDestructive
}

// overrideWithEnv overrides configuration with environment variables
func (c *Config) overrideWithEnv() {
	// Server configuration
	if name := os.Getenv("MCP_DATABASES_SERVER_NAME"); name != "" {
		c.Server.Name = name
	}
	if level := os.Getenv("MCP_DATABASES_LOG_LEVEL"); level != "" {
		c.Server.LogLevel = level
	}
	if transport := os.Getenv("MCP_DATABASES_TRANSPORT"); transport != "" {
		c.Server.Transport = transport
	}

	// Database configuration
	if dialect := os.Getenv("MCP_DATABASES_DIALECT"); dialect != "" {
		c.Database.Dialect = dialect
	}
	if host := os.Getenv("MCP_DATABASES_HOST"); host != "" {
		c.Database.Host = host
	}
	if port := os.Getenv("MCP_DATABASES_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Database.Port = p
		}
	}
	if username := os.Getenv("MCP_DATABASES_USERNAME"); username != "" {
		c.Database.Username = username
	}
	if password := os.Getenv("MCP_DATABASES_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if dbname := os.Getenv("MCP_DATABASES_DBNAME"); dbname != "" {
		c.Database.DBName = dbname
	}
	if sslmode := os.Getenv("MCP_DATABASES_SSLMODE"); sslmode != "" {
		c.Database.SSLMode = sslmode
	}

	// Security limits
	if limit := os.Getenv("MCP_DATABASES_UPDATE_LIMIT"); limit != "" {
		if l, err := strconv.ParseInt(limit, 10, 64); err == nil {
			c.Security.UpdateDefaultLimit = l
		}
	}
	if limit := os.Getenv("MCP_DATABASES_DELETE_LIMIT"); limit != "" {
		if l, err := strconv.ParseInt(limit, 10, 64); err == nil {
			c.Security.DeleteDefaultLimit = l
		}
	}
	if allow := os.Getenv("MCP_DATABASES_ALLOW_DESTRUCTIVE"); allow != "" {
		if b, err := strconv.ParseBool(allow); err == nil {
			c.Security.AllowDestructive = &b
		}
	}
}
