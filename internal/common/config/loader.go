// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERVICENOW_INSTANCE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.development.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations (for running from different directories)
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	// Also try to find project root by looking for go.mod
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.ServiceNow.InstanceURL == "" {
		if val := os.Getenv("SERVICENOW_INSTANCE_URL"); val != "" {
			cfg.ServiceNow.InstanceURL = val
		}
	}

	if cfg.Auth.Basic.Username == "" {
		if val := os.Getenv("SERVICENOW_USERNAME"); val != "" {
			cfg.Auth.Basic.Username = val
		}
	}
	if cfg.Auth.Basic.Password == "" {
		if val := os.Getenv("SERVICENOW_PASSWORD"); val != "" {
			cfg.Auth.Basic.Password = val
		}
	}
	if cfg.Auth.OAuth.Token == "" {
		if val := os.Getenv("SERVICENOW_OAUTH_TOKEN"); val != "" {
			cfg.Auth.OAuth.Token = val
		}
	}

	if cfg.Notifications.Email.FromEmail == "" {
		if val := os.Getenv("NOTIFICATIONS_FROM_EMAIL"); val != "" {
			cfg.Notifications.Email.FromEmail = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// ServiceNow defaults
	if cfg.ServiceNow.APIPath == "" {
		cfg.ServiceNow.APIPath = "/api/now"
	}
	if cfg.ServiceNow.Timeout == 0 {
		cfg.ServiceNow.Timeout = 30000
	}

	// Auth defaults
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = "basic"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Warranty defaults
	if cfg.Warranty.MaxConcurrent == 0 {
		cfg.Warranty.MaxConcurrent = 4
	}
	if cfg.Warranty.DaysAhead == 0 {
		cfg.Warranty.DaysAhead = 30
	}

	// Notification defaults
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.ServiceNow.InstanceURL == "" {
		return fmt.Errorf("servicenow.instance_url is required")
	}

	switch cfg.Auth.Type {
	case "basic":
		if cfg.Auth.Basic.Username == "" {
			return fmt.Errorf("auth.basic.username is required")
		}
		if cfg.Auth.Basic.Password == "" {
			return fmt.Errorf("auth.basic.password is required")
		}
	case "oauth":
		if cfg.Auth.OAuth.Token == "" {
			return fmt.Errorf("auth.oauth.token is required")
		}
	default:
		return fmt.Errorf("auth.type must be basic or oauth, got %q", cfg.Auth.Type)
	}

	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email is enabled")
	}

	if cfg.Warranty.MaxConcurrent < 0 {
		return fmt.Errorf("warranty.max_concurrent must be positive")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
