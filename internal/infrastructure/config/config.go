package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for solshade.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Niko         NikoConfig         `yaml:"niko"`
	Controller   ControllerConfig   `yaml:"controller"`
	Screens      []ScreenConfig     `yaml:"screens"`
	API          APIConfig          `yaml:"api"`
	WebSocket    WebSocketConfig    `yaml:"websocket"`
	Database     DatabaseConfig     `yaml:"database"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Measurements MeasurementsConfig `yaml:"measurements"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for solar calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// NikoConfig contains connection settings for the Niko Home Control
// controller's hobby MQTT API.
type NikoConfig struct {
	// Host is the hostname or IP address of the Niko controller.
	Host string `yaml:"host"`

	// Port is the MQTT-over-TLS port of the hobby API. Default: 8884.
	Port int `yaml:"port"`

	// Username is the MQTT username issued by Niko (typically "hobby").
	Username string `yaml:"username"`

	// Token is the JWT issued by Niko, used as the MQTT password and as
	// the bearer token for the measurements REST API.
	Token string `yaml:"token"`

	// CACert is the path to the controller's CA certificate.
	// When empty, TLS verification is skipped (lab setups only).
	CACert string `yaml:"ca_cert"`

	// ClientID identifies this client on the broker.
	ClientID string `yaml:"client_id"`

	Connect NikoConnectConfig `yaml:"connect"`
}

// NikoConnectConfig bounds the initial connection attempt.
type NikoConnectConfig struct {
	// Attempts is the number of connection attempts before giving up.
	Attempts int `yaml:"attempts"`

	// Delay is the linear backoff between attempts, in seconds.
	Delay int `yaml:"delay"`

	// Grace is how long each attempt waits for the broker's connect
	// acknowledgment, in seconds.
	Grace int `yaml:"grace"`
}

// ControllerConfig contains screen control loop settings.
type ControllerConfig struct {
	// Interval is the evaluation period in seconds. Default: 60.
	Interval int `yaml:"interval"`

	// MinStepFloor is the smallest permitted hysteresis step in percent.
	// Registrations asking for less are raised to this value. Default: 5.
	MinStepFloor float64 `yaml:"min_step_floor"`

	// FullCloseThreshold is the default heat percentage at which a screen
	// fully closes, used when a screen omits its own. Default: 20.
	FullCloseThreshold float64 `yaml:"full_close_threshold"`
}

// ScreenConfig declares a screen to register at startup.
type ScreenConfig struct {
	Name               string  `yaml:"name"`
	DeviceUUID         string  `yaml:"device_uuid"`
	WallAzimuth        float64 `yaml:"wall_azimuth"`
	FullCloseThreshold float64 `yaml:"full_close_threshold"`
	MinStep            float64 `yaml:"min_step"`
}

// APIConfig contains HTTP status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket event stream settings.
type WebSocketConfig struct {
	Path         string `yaml:"path"`
	PingInterval int    `yaml:"ping_interval"`
	PongTimeout  int    `yaml:"pong_timeout"`
}

// DatabaseConfig contains SQLite settings for the command history journal.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetentionDays limits how long command history is kept.
	// Default: 90.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// InfluxDBConfig contains optional telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MeasurementsConfig contains settings for the Niko measurements REST API.
type MeasurementsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Timeout is the per-request timeout in seconds. Default: 10.
	Timeout int `yaml:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SOLSHADE_SECTION_KEY
// For example: SOLSHADE_NIKO_HOST, SOLSHADE_NIKO_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Name:     "solshade",
			Timezone: "Europe/Brussels",
		},
		Niko: NikoConfig{
			Port:     8884,
			Username: "hobby",
			ClientID: "solshade",
			Connect: NikoConnectConfig{
				Attempts: 3,
				Delay:    1,
				Grace:    5,
			},
		},
		Controller: ControllerConfig{
			Interval:           60,
			MinStepFloor:       5,
			FullCloseThreshold: 20,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:         "/api/v1/ws",
			PingInterval: 30,
			PongTimeout:  10,
		},
		Database: DatabaseConfig{
			Path:                 "./data/solshade.db",
			WALMode:              true,
			BusyTimeout:          5,
			HistoryRetentionDays: 90,
		},
		Measurements: MeasurementsConfig{
			Timeout: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SOLSHADE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Niko controller
	if v := os.Getenv("SOLSHADE_NIKO_HOST"); v != "" {
		cfg.Niko.Host = v
	}
	if v := os.Getenv("SOLSHADE_NIKO_USERNAME"); v != "" {
		cfg.Niko.Username = v
	}
	if v := os.Getenv("SOLSHADE_NIKO_TOKEN"); v != "" {
		cfg.Niko.Token = v
	}
	if v := os.Getenv("SOLSHADE_NIKO_CA_CERT"); v != "" {
		cfg.Niko.CACert = v
	}

	// Site location
	if v := os.Getenv("SOLSHADE_SITE_LATITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Site.Location.Latitude = f
		}
	}
	if v := os.Getenv("SOLSHADE_SITE_LONGITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Site.Location.Longitude = f
		}
	}

	// Database
	if v := os.Getenv("SOLSHADE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("SOLSHADE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Niko.Host == "" {
		errs = append(errs, "niko.host is required (set SOLSHADE_NIKO_HOST environment variable)")
	}
	if c.Niko.Token == "" {
		errs = append(errs, "niko.token is required (set SOLSHADE_NIKO_TOKEN environment variable)")
	}
	if c.Niko.Port < 1 || c.Niko.Port > 65535 {
		errs = append(errs, "niko.port must be between 1 and 65535")
	}
	if c.Niko.Connect.Attempts < 1 {
		errs = append(errs, "niko.connect.attempts must be at least 1")
	}

	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}

	if c.Controller.Interval < 1 {
		errs = append(errs, "controller.interval must be at least 1 second")
	}
	if c.Controller.MinStepFloor <= 0 {
		errs = append(errs, "controller.min_step_floor must be positive")
	}
	if c.Controller.FullCloseThreshold <= 0 {
		errs = append(errs, "controller.full_close_threshold must be positive")
	}

	for i, s := range c.Screens {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("screens[%d].name is required", i))
		}
		if s.WallAzimuth < 0 || s.WallAzimuth >= 360 {
			errs = append(errs, fmt.Sprintf("screens[%d].wall_azimuth must be in [0, 360)", i))
		}
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// EvaluationInterval returns the controller tick period as a Duration.
func (c *Config) EvaluationInterval() time.Duration {
	return time.Duration(c.Controller.Interval) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
