package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Supported destination drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite3"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify     SpotifyConfig     `toml:"spotify"`
	Destination DestinationConfig `toml:"destination"`
	State       StateConfig       `toml:"state"`
	Log         LogConfig         `toml:"log"`
}

// SpotifyConfig contains Spotify API credentials and the playlist to extract.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	PlaylistID   string `toml:"playlist_id"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// DestinationConfig contains the relational destination the pipeline loads into.
type DestinationConfig struct {
	Driver   string            `toml:"driver"`
	Server   string            `toml:"server"`
	Database string            `toml:"database"`
	Username string            `toml:"username"`
	Password string            `toml:"password"`
	Table    string            `toml:"table"`
	Params   map[string]string `toml:"params"`
}

// StateConfig contains the local run history database settings.
type StateConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads a TOML configuration file and layers it over [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// 0600: the file is meant to hold credentials
	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every option a pipeline run needs is present.
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	return c.Destination.Validate()
}

// ValidateSource checks the Spotify options only. A preview never touches the destination.
func (c *Config) ValidateSource() error {
	var missing []string
	if c.Spotify.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if c.Spotify.PlaylistID == "" {
		return fmt.Errorf("%w: playlist_id", ErrMissingArgument)
	}
	return nil
}

// Validate checks the destination options for the configured driver.
func (d DestinationConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Database == "" {
			return fmt.Errorf("%w: destination database path is required", ErrInvalidConfig)
		}
	case DriverSQLServer, DriverPostgres, DriverMySQL:
		var missing []string
		if d.Server == "" {
			missing = append(missing, "server")
		}
		if d.Database == "" {
			missing = append(missing, "database")
		}
		if d.Username == "" {
			missing = append(missing, "username")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: destination %s required", ErrInvalidConfig, strings.Join(missing, ", "))
		}
	case "":
		return fmt.Errorf("%w: destination driver is required", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, d.Driver)
	}

	if d.Table == "" {
		return fmt.Errorf("%w: destination table is required", ErrInvalidConfig)
	}
	return nil
}

// Redacted returns a human-readable description of the destination without the password.
func (d DestinationConfig) Redacted() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("%s:%s/%s", d.Driver, d.Database, d.Table)
	}
	return fmt.Sprintf("%s://%s@%s/%s/%s", d.Driver, d.Username, d.Server, d.Database, d.Table)
}
