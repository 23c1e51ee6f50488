package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Radio backends understood by RadioConfig.Backend.
const (
	BackendNRF24    = "nrf24"
	BackendLoopback = "loopback"
)

// Config is the root configuration structure for the MiLight hub.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Radio    RadioConfig    `yaml:"radio"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RadioConfig contains nRF24 hardware and transmission policy settings.
type RadioConfig struct {
	// Backend selects the radio device: "nrf24" for real hardware or
	// "loopback" for an in-memory device (dry runs and development).
	Backend string `yaml:"backend"`

	// SPIBus is the periph.io SPI port name (e.g. "/dev/spidev0.0").
	SPIBus string `yaml:"spi_bus"`

	// SPIClockHz is the SPI clock frequency. Default: 8MHz
	SPIClockHz int `yaml:"spi_clock_hz"`

	// CEPin is the BCM number of the chip-enable GPIO. Default: 22
	CEPin int `yaml:"ce_pin"`

	// PayloadSize is the static nRF24 payload width (1-32). Default: 32
	PayloadSize int `yaml:"payload_size"`

	// ResendCount is the base number of repeats per logical packet.
	ResendCount int `yaml:"resend_count"`

	// PacketRepeatMinimum is the floor the adaptive throttle can reduce repeats to.
	PacketRepeatMinimum int `yaml:"packet_repeat_minimum"`

	// ThrottleThreshold is the send spacing below which repeats shrink.
	ThrottleThreshold time.Duration `yaml:"throttle_threshold"`

	// ThrottleSensitivity scales how fast repeats adapt. 0 disables throttling.
	ThrottleSensitivity int `yaml:"throttle_sensitivity"`

	// PollInterval is the controller loop sleep between iterations.
	PollInterval time.Duration `yaml:"poll_interval"`

	// QueueSize bounds the inbound command and outbound report queues.
	QueueSize int `yaml:"queue_size"`

	// DeviceTypes lists the bulb families to enable (e.g. "rgb_cct").
	DeviceTypes []string `yaml:"device_types"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path          string        `yaml:"path"`
	WALMode       bool          `yaml:"wal_mode"`
	BusyTimeout   int           `yaml:"busy_timeout"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// MQTTConfig contains MQTT broker connection and topic settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keepalive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    MQTTTopicsConfig    `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// MQTTTopicsConfig contains the topic patterns used by the bridge.
//
// Patterns may contain the tokens :device_id, :hex_device_id, :dec_device_id,
// :group_id and :device_type. ClientStatus is a plain topic; the hub
// publishes its connection status there retained and registers it as the
// last will. Empty disables it.
type MQTTTopicsConfig struct {
	Command      string   `yaml:"command"`
	Update       string   `yaml:"update"`
	State        string   `yaml:"state"`
	ClientStatus string   `yaml:"client_status"`
	StateFields  []string `yaml:"state_fields"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
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
// Environment variables follow the pattern: MILIGHT_SECTION_KEY
// For example: MILIGHT_DATABASE_PATH, MILIGHT_RADIO_BACKEND
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

// Default returns the built-in configuration with environment overrides applied.
// It is used by one-shot CLI commands when no config file is given.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "MiLight Hub",
		},
		Radio: RadioConfig{
			Backend:             BackendNRF24,
			SPIBus:              "/dev/spidev0.0",
			SPIClockHz:          8_000_000,
			CEPin:               22,
			PayloadSize:         32,
			ResendCount:         10,
			PacketRepeatMinimum: 3,
			ThrottleThreshold:   200 * time.Millisecond,
			ThrottleSensitivity: 0,
			PollInterval:        500 * time.Millisecond,
			QueueSize:           64,
			DeviceTypes:         []string{"rgb_cct"},
		},
		Database: DatabaseConfig{
			Path:          "./data/milight.db",
			WALMode:       true,
			BusyTimeout:   5,
			FlushInterval: 10 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "milight-hub",
			},
			QoS:       1,
			KeepAlive: 60,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			Topics: MQTTTopicsConfig{
				Command:      "milight/commands/:device_id/:device_type/:group_id",
				Update:       "milight/updates/:device_id/:device_type/:group_id",
				State:        "milight/states/:device_id/:device_type/:group_id",
				ClientStatus: "milight/client_status",
				StateFields: []string{
					"state", "brightness", "color", "bulb_mode", "color_temp", "effect",
				},
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MILIGHT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Radio
	if v := os.Getenv("MILIGHT_RADIO_BACKEND"); v != "" {
		cfg.Radio.Backend = v
	}
	if v := os.Getenv("MILIGHT_RADIO_SPI_BUS"); v != "" {
		cfg.Radio.SPIBus = v
	}
	if v := os.Getenv("MILIGHT_RADIO_CE_PIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Radio.CEPin = n
		}
	}

	// Database
	if v := os.Getenv("MILIGHT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("MILIGHT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MILIGHT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MILIGHT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MILIGHT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("MILIGHT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	errs = append(errs, c.validateRadio()...)

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.FlushInterval < 0 {
		errs = append(errs, "database.flush_interval must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Topics.Command == "" {
		errs = append(errs, "mqtt.topics.command is required")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateRadio validates radio hardware and resend policy settings.
func (c *Config) validateRadio() []string {
	var errs []string
	r := c.Radio

	switch r.Backend {
	case BackendNRF24:
		if r.SPIBus == "" {
			errs = append(errs, "radio.spi_bus is required for the nrf24 backend")
		}
		if r.CEPin < 1 {
			errs = append(errs, "radio.ce_pin is required for the nrf24 backend")
		}
	case BackendLoopback:
	default:
		errs = append(errs, fmt.Sprintf("radio.backend %q must be %q or %q", r.Backend, BackendNRF24, BackendLoopback))
	}

	if r.PayloadSize < 1 || r.PayloadSize > 32 {
		errs = append(errs, "radio.payload_size must be between 1 and 32")
	}
	if r.ResendCount < 1 {
		errs = append(errs, "radio.resend_count must be at least 1")
	}
	if r.PacketRepeatMinimum < 1 || r.PacketRepeatMinimum > r.ResendCount {
		errs = append(errs, "radio.packet_repeat_minimum must be between 1 and radio.resend_count")
	}
	if r.ThrottleSensitivity < 0 {
		errs = append(errs, "radio.throttle_sensitivity must not be negative")
	}
	if r.PollInterval <= 0 {
		errs = append(errs, "radio.poll_interval must be positive")
	}
	if r.QueueSize < 1 {
		errs = append(errs, "radio.queue_size must be at least 1")
	}
	if len(r.DeviceTypes) == 0 {
		errs = append(errs, "radio.device_types must have at least one entry")
	}

	return errs
}
