// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	ServiceNow    ServiceNowConfig   `mapstructure:"servicenow"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Warranty      WarrantyConfig     `mapstructure:"warranty"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServiceNowConfig holds the Table API endpoint settings.
type ServiceNowConfig struct {
	InstanceURL string `mapstructure:"instance_url"`
	APIPath     string `mapstructure:"api_path"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// TableURL builds the full Table API base URL, e.g.
// https://instance.service-now.com/api/now/table
func (s ServiceNowConfig) TableURL() string {
	return fmt.Sprintf("%s%s/table", s.InstanceURL, s.APIPath)
}

// --- Authentication Configuration ---

// AuthConfig holds ServiceNow credential settings. Type selects between
// "basic" and "oauth".
type AuthConfig struct {
	Type string `mapstructure:"type"`

	Basic struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"basic"`

	OAuth struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"oauth"`
}

// NotificationConfig holds settings for requester email notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// WarrantyConfig holds settings for warranty checks and reports.
type WarrantyConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"` // bulk check pool size
	DaysAhead     int `mapstructure:"days_ahead"`     // expiring-soon window
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
