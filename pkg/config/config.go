// Package config loads server and tool settings. It uses koanf to merge an
// optional YAML file with environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"pg-spatial/pkg/registry"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port      int    `koanf:"port"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Arrow Flight listener; 0 disables it.
	FlightPort int `koanf:"flight_port"`

	// Optional; enables column introspection against a live database.
	DatabaseURL string `koanf:"database_url"`

	// Bind spatial values as parameters instead of inlining literals.
	PreparedStatements bool `koanf:"prepared_statements"`

	// Extra registry entries keyed by type name.
	Types map[string]registry.Options `koanf:"types"`
}

var (
	ErrInvalidPort      = errors.New("port must be a valid integer between 1 and 65535")
	ErrInvalidBool      = errors.New("value must be a boolean")
	ErrInvalidLogLevel  = errors.New("log level must be one of debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("log format must be json or text")
)

const (
	DefaultPort       = 8080
	DefaultFlightPort = 50051
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, err := getEnvIntOrDefault("SPATIAL_PORT", k.Int("port"), DefaultPort)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	flightPort := DefaultFlightPort
	if k.Exists("flight_port") {
		flightPort = k.Int("flight_port")
	}
	if val := os.Getenv("SPATIAL_FLIGHT_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			loadErrs = append(loadErrs, fmt.Errorf("SPATIAL_FLIGHT_PORT: %w", ErrInvalidPort))
		}
		flightPort = i
	}

	prepared, err := getEnvBoolOrKoanf("SPATIAL_PREPARED_STATEMENTS", k, "prepared_statements")
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	var types map[string]registry.Options
	if k.Exists("types") {
		if err := k.Unmarshal("types", &types); err != nil {
			loadErrs = append(loadErrs, fmt.Errorf("failed to read types: %w", err))
		}
	}

	cfg := &Config{
		Port:               port,
		FlightPort:         flightPort,
		LogLevel:           getEnvOrDefault("SPATIAL_LOG_LEVEL", k.String("log_level"), DefaultLogLevel),
		LogFormat:          getEnvOrDefault("SPATIAL_LOG_FORMAT", k.String("log_format"), DefaultLogFormat),
		DatabaseURL:        getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		PreparedStatements: prepared,
		Types:              types,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Apply registers the configured extra types, in name order.
func (c *Config) Apply(reg *registry.Registry) error {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Register(name, c.Types[name]); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the loaded values.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.FlightPort < 0 || c.FlightPort > 65535 {
		errs = append(errs, fmt.Errorf("flight_port: %w", ErrInvalidPort))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, ErrInvalidLogFormat)
	}

	for name := range c.Types {
		if name == "" {
			errs = append(errs, fmt.Errorf("types: empty type name"))
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                fmt.Sprintf("%d", c.Port),
		"flight_port":         fmt.Sprintf("%d", c.FlightPort),
		"log_level":           c.LogLevel,
		"log_format":          c.LogFormat,
		"database_url":        maskDatabaseURL(c.DatabaseURL),
		"prepared_statements": fmt.Sprintf("%t", c.PreparedStatements),
		"types":               fmt.Sprintf("%d", len(c.Types)),
	}
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) (bool, error) {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", envKey, ErrInvalidBool)
	}
	return k.Bool(koanfKey), nil
}

// maskDatabaseURL masks the password in a database URL. The password runs to
// the last '@', since an unescaped '@' may appear inside it.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return "****"
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.LastIndex(rest, "@")
	if atIndex == -1 {
		return s
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s
	}

	return s[:schemeEnd+3] + rest[:colonIndex] + ":****" + rest[atIndex:]
}
