package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for a Gray Logic node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Entities  []EntityConfig  `yaml:"entities"`
}

// NodeConfig describes the physical device. It becomes the device
// descriptor embedded in every discovery payload.
type NodeConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	SWVersion    string `yaml:"sw_version"`
}

// DiscoveryConfig contains Home Assistant discovery settings.
type DiscoveryConfig struct {
	// Prefix is the discovery topic prefix. Default: "homeassistant"
	Prefix string `yaml:"prefix"`

	// SharedAvailability publishes one availability topic for the whole
	// node, registered as the MQTT last will, instead of one per entity.
	SharedAvailability bool `yaml:"shared_availability"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	// ProtocolVersion selects the client: 3 (MQTT 3.1.1) or 5 (MQTT 5).
	ProtocolVersion int                 `yaml:"protocol_version"`
	Broker          MQTTBrokerConfig    `yaml:"broker"`
	Auth            MQTTAuthConfig      `yaml:"auth"`
	QoS             int                 `yaml:"qos"`
	KeepAlive       int                 `yaml:"keepalive"`
	Reconnect       MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// InfluxDBConfig contains InfluxDB connection settings for trait telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// SensorsConfig contains settings for the periodic sensor publisher.
type SensorsConfig struct {
	// PublishInterval is the sensor sampling period in seconds.
	PublishInterval int `yaml:"publish_interval"`
}

// Entity types.
const (
	EntityLight        = "light"
	EntitySwitch       = "switch"
	EntityBinarySensor = "binary_sensor"
	EntitySensor       = "sensor"
	EntityTag          = "tag"
)

// Sensor sources.
const (
	SourceUptime = "uptime"
	SourceHeap   = "heap"
	SourceStatic = "static"
)

// Light features.
const (
	FeatureBrightness = "brightness"
	FeatureColor      = "color"
)

// EntityConfig declares one entity exposed by the node.
type EntityConfig struct {
	Type     string `yaml:"type"`
	UniqueID string `yaml:"unique_id"`
	Name     string `yaml:"name"`
	Icon     string `yaml:"icon"`
	Retain   bool   `yaml:"retain"`

	// Features lists optional light traits: "brightness", "color".
	Features []string `yaml:"features,omitempty"`

	// BrightnessScale is the light's full-brightness value. 0 means 255.
	BrightnessScale int `yaml:"brightness_scale,omitempty"`

	// Unit and DeviceClass are passed through to Home Assistant.
	Unit        string `yaml:"unit_of_measurement,omitempty"`
	DeviceClass string `yaml:"device_class,omitempty"`

	// Source selects what a sensor reports: "uptime", "heap" or "static".
	Source string `yaml:"source,omitempty"`

	// Value is the reported value of a static sensor.
	Value string `yaml:"value,omitempty"`
}

// HasFeature reports whether the entity lists feature.
func (e EntityConfig) HasFeature(feature string) bool {
	for _, f := range e.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//  4. Derived values (generated MQTT client id)
//
// Environment variables follow the pattern: GRAYLOGIC_NODE_SECTION_KEY
// For example: GRAYLOGIC_NODE_MQTT_HOST, GRAYLOGIC_NODE_LOG_LEVEL
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
	applyDerived(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			Name:         "Gray Logic Node",
			Manufacturer: "Gray Logic",
			Model:        "graylogic-node",
		},
		Discovery: DiscoveryConfig{
			Prefix: "homeassistant",
		},
		MQTT: MQTTConfig{
			ProtocolVersion: 3,
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS:       1,
			KeepAlive: 60,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Sensors: SensorsConfig{
			PublishInterval: 30,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// applyDerived fills values computed from others. An empty client id
// gets a random suffix so two nodes never evict each other at the broker.
func applyDerived(cfg *Config) {
	if cfg.MQTT.Broker.ClientID == "" {
		cfg.MQTT.Broker.ClientID = "graylogic-node-" + uuid.NewString()[:8]
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Node validation
	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	} else if !validObjectID(c.Node.ID) {
		errs = append(errs, "node.id may only contain letters, digits, '_' and '-'")
	}

	// Discovery validation
	if c.Discovery.Prefix != "" && !validPrefix(c.Discovery.Prefix) {
		errs = append(errs, "discovery.prefix must be '/'-separated levels of letters, digits, '_' and '-'")
	}

	// MQTT validation
	if c.MQTT.ProtocolVersion != 3 && c.MQTT.ProtocolVersion != 5 {
		errs = append(errs, "mqtt.protocol_version must be 3 or 5")
	}
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < 0 {
		errs = append(errs, "mqtt.keepalive must not be negative")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if c.Sensors.PublishInterval < 1 {
		errs = append(errs, "sensors.publish_interval must be at least 1 second")
	}

	errs = append(errs, c.validateEntities()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (c *Config) validateEntities() []string {
	var errs []string
	seen := make(map[string]bool, len(c.Entities))

	for i, e := range c.Entities {
		where := fmt.Sprintf("entities[%d]", i)

		switch e.Type {
		case EntityLight, EntitySwitch, EntityBinarySensor, EntitySensor, EntityTag:
		default:
			errs = append(errs, fmt.Sprintf("%s.type %q is not one of light, switch, binary_sensor, sensor, tag", where, e.Type))
		}

		switch {
		case e.UniqueID == "":
			errs = append(errs, where+".unique_id is required")
		case !validObjectID(e.UniqueID):
			errs = append(errs, where+".unique_id may only contain letters, digits, '_' and '-'")
		case seen[e.UniqueID]:
			errs = append(errs, fmt.Sprintf("%s.unique_id %q is duplicated", where, e.UniqueID))
		}
		seen[e.UniqueID] = true

		for _, f := range e.Features {
			if e.Type != EntityLight {
				errs = append(errs, where+".features is only valid for lights")
				break
			}
			if f != FeatureBrightness && f != FeatureColor {
				errs = append(errs, fmt.Sprintf("%s.features: unknown feature %q", where, f))
			}
		}

		if e.BrightnessScale < 0 || e.BrightnessScale > 255 {
			errs = append(errs, where+".brightness_scale must be between 0 and 255")
		}

		if e.Type == EntitySensor {
			switch e.Source {
			case SourceUptime, SourceHeap:
			case SourceStatic:
				if e.Value == "" {
					errs = append(errs, where+".value is required for static sensors")
				}
			default:
				errs = append(errs, fmt.Sprintf("%s.source %q is not one of uptime, heap, static", where, e.Source))
			}
		}
	}

	return errs
}

// validObjectID reports whether s matches Home Assistant's object id
// charset [A-Za-z0-9_-]. Ids are written into topics and discovery JSON
// unescaped, so nothing else is safe.
func validObjectID(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// validPrefix reports whether every '/'-separated level of s is a valid
// object id.
func validPrefix(s string) bool {
	for _, level := range strings.Split(s, "/") {
		if !validObjectID(level) {
			return false
		}
	}
	return true
}

// GetKeepAlive returns the MQTT keepalive interval as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.MQTT.KeepAlive) * time.Second
}

// GetPublishInterval returns the sensor publish interval as a Duration.
func (c *Config) GetPublishInterval() time.Duration {
	return time.Duration(c.Sensors.PublishInterval) * time.Second
}
