package config

import "fmt"

// ConfigStatus describes whether one service's configuration is usable.
type ConfigStatus struct {
	Service    string `json:"service"`
	Configured bool   `json:"configured"`
	Message    string `json:"message"`
}

// ValidationResult aggregates per-service configuration checks.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Services []ConfigStatus `json:"services"`
}

// ValidateConfig checks that every configured service has the fields it
// needs. The database is the only hard requirement.
func (c *Config) ValidateConfig() *ValidationResult {
	result := &ValidationResult{Valid: true}

	dbStatus := c.validateDatabase()
	result.Services = append(result.Services, dbStatus)
	if !dbStatus.Configured {
		result.Valid = false
	}

	return result
}

func (c *Config) validateDatabase() ConfigStatus {
	missing := []string{}
	if c.Database.Host == "" {
		missing = append(missing, "host")
	}
	if c.Database.Port == 0 {
		missing = append(missing, "port")
	}
	if c.Database.Username == "" {
		missing = append(missing, "username")
	}
	if c.Database.DBName == "" {
		missing = append(missing, "dbname")
	}

	if len(missing) > 0 {
		return ConfigStatus{
			Service:    "database",
			Configured: false,
			Message:    fmt.Sprintf("missing required fields: %v", missing),
		}
	}

	return ConfigStatus{
		Service:    "database",
		Configured: true,
		Message:    fmt.Sprintf("%s database configured at %s:%d", c.Database.Dialect, c.Database.Host, c.Database.Port),
	}
}

// RequireDatabase returns an error when the database configuration is
// incomplete, so tools can fail with actionable guidance instead of a
// connection timeout.
func (c *Config) RequireDatabase() error {
	status := c.validateDatabase()
	if !status.Configured {
		return fmt.Errorf("database is not properly configured: %s", status.Message)
	}
	return nil
}
