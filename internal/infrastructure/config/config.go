package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for LoRaWatch Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	ChirpStack ChirpStackConfig `yaml:"chirpstack"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	Logging    LoggingConfig    `yaml:"logging"`
	Security   SecurityConfig   `yaml:"security"`
}

// SiteConfig identifies this monitor instance.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// EventTopic is the subscription pattern for ChirpStack integration events.
	// The final topic segment is the event type (up, join, status, ...).
	EventTopic string `yaml:"event_topic"`
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

// ChirpStackConfig contains the ChirpStack gRPC Device API settings.
type ChirpStackConfig struct {
	// Server is the gRPC endpoint, host:port (e.g. "chirpstack:8080").
	Server string `yaml:"server"`

	// TLS enables transport security on the gRPC connection.
	TLS bool `yaml:"tls"`

	// APIToken is sent as "authorization: Bearer <token>" on every call.
	// Prefer LORAWATCH_CHIRPSTACK_API_TOKEN over storing it in the file.
	APIToken string `yaml:"api_token"`

	ApplicationID string `yaml:"application_id"`
	TenantID      string `yaml:"tenant_id"`

	// Timeout bounds every Device API call (seconds).
	Timeout int `yaml:"timeout"`

	// ListLimit is the page size used when listing devices and profiles.
	ListLimit int `yaml:"list_limit"`

	Downlink DownlinkConfig `yaml:"downlink"`
}

// DownlinkConfig controls how commands are enqueued on devices.
type DownlinkConfig struct {
	FPort     uint32 `yaml:"f_port"`
	Confirmed bool   `yaml:"confirmed"`
}

// MonitorConfig contains the device state engine settings.
type MonitorConfig struct {
	// StalenessWindow is how long a silent device stays Online.
	StalenessWindow time.Duration `yaml:"staleness_window"`

	// SweepInterval is how often stale devices are demoted to Offline.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// AlertKeyword marks an uplink message as an alert (case-sensitive substring).
	AlertKeyword string `yaml:"alert_keyword"`

	// AlertClasses are the device classes that receive the alert-response downlink.
	AlertClasses []string `yaml:"alert_classes"`

	// FanOutConcurrency bounds concurrent downlink issuance during alert fan-out.
	FanOutConcurrency int `yaml:"fan_out_concurrency"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
// An empty secret disables API authentication (development only).
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LORAWATCH_SECTION_KEY
// For example: LORAWATCH_DATABASE_PATH, LORAWATCH_CHIRPSTACK_API_TOKEN
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

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "lorawatch-001",
			Name: "LoRaWatch",
		},
		Database: DatabaseConfig{
			Path:        "./data/lorawatch.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lorawatch-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			EventTopic: "application/+/device/+/event/#",
		},
		ChirpStack: ChirpStackConfig{
			Server:    "localhost:8080",
			Timeout:   10,
			ListLimit: 100,
			Downlink: DownlinkConfig{
				FPort:     10,
				Confirmed: true,
			},
		},
		Monitor: MonitorConfig{
			StalenessWindow:   10 * time.Minute,
			SweepInterval:     60 * time.Second,
			AlertKeyword:      "Alert",
			AlertClasses:      []string{"LiDAR unit", "Sound Unit", "Wearable Alert Unit"},
			FanOutConcurrency: 4,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/api/v1/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LORAWATCH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LORAWATCH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LORAWATCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LORAWATCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LORAWATCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// ChirpStack
	if v := os.Getenv("LORAWATCH_CHIRPSTACK_SERVER"); v != "" {
		cfg.ChirpStack.Server = v
	}
	if v := os.Getenv("LORAWATCH_CHIRPSTACK_API_TOKEN"); v != "" {
		cfg.ChirpStack.APIToken = v
	}
	if v := os.Getenv("LORAWATCH_CHIRPSTACK_APPLICATION_ID"); v != "" {
		cfg.ChirpStack.ApplicationID = v
	}
	if v := os.Getenv("LORAWATCH_CHIRPSTACK_TENANT_ID"); v != "" {
		cfg.ChirpStack.TenantID = v
	}

	if v := os.Getenv("LORAWATCH_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("LORAWATCH_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and reports all of them at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.EventTopic == "" {
		errs = append(errs, "mqtt.event_topic is required")
	}

	// ChirpStack
	if c.ChirpStack.Server == "" {
		errs = append(errs, "chirpstack.server is required")
	}
	if c.ChirpStack.ApplicationID == "" {
		errs = append(errs, "chirpstack.application_id is required")
	}
	if c.ChirpStack.Timeout <= 0 {
		errs = append(errs, "chirpstack.timeout must be positive")
	}
	if c.ChirpStack.Downlink.FPort == 0 || c.ChirpStack.Downlink.FPort > 223 {
		errs = append(errs, "chirpstack.downlink.f_port must be between 1 and 223")
	}

	// Monitor
	if c.Monitor.StalenessWindow <= 0 {
		errs = append(errs, "monitor.staleness_window must be positive")
	}
	if c.Monitor.SweepInterval <= 0 {
		errs = append(errs, "monitor.sweep_interval must be positive")
	}
	if c.Monitor.AlertKeyword == "" {
		errs = append(errs, "monitor.alert_keyword is required")
	}
	if c.Monitor.FanOutConcurrency < 1 {
		errs = append(errs, "monitor.fan_out_concurrency must be at least 1")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ChirpStackTimeout returns the Device API call timeout as a Duration.
func (c *Config) ChirpStackTimeout() time.Duration {
	return time.Duration(c.ChirpStack.Timeout) * time.Second
}
