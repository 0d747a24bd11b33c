package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8880.
	Port int `envconfig:"PORT" default:"8880"`

	// DataDir is the root data directory (database, logs). Defaults to ~/.regnotify.
	DataDir string `envconfig:"REGNOTIFY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CouncilRegisterFile is the YAML file holding per-council contact configuration.
	CouncilRegisterFile string `envconfig:"COUNCIL_REGISTER_FILE"`

	// TemplatesFile is the YAML file holding notify template ids and the
	// future-delivery feedback address.
	TemplatesFile string `envconfig:"NOTIFY_TEMPLATES_FILE"`

	// SweepInterval is how often the retry sweeper re-dispatches pending
	// notifications, in minutes. Zero disables the sweeper.
	SweepInterval int `envconfig:"SWEEP_INTERVAL_MINUTES" default:"10"`

	// SMTP transport settings.
	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPFromAddr   string `envconfig:"SMTP_FROM_ADDRESS"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.regnotify if not set; the config file paths default
// to files inside DataDir.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".regnotify")
	}
	if c.CouncilRegisterFile == "" {
		c.CouncilRegisterFile = filepath.Join(c.DataDir, "councils.yaml")
	}
	if c.TemplatesFile == "" {
		c.TemplatesFile = filepath.Join(c.DataDir, "templates.yaml")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory.
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "regnotify.db")
}
