package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"rcon-go/rcon"
)

const DefaultPort = rcon.DefaultPort

// Config holds the rcond configuration
type Config struct {
	Debug bool `yaml:"debug"`

	// Server
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`

	// Health server; 0 disables it
	HealthServerPort int `yaml:"health_server_port"`
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port: DefaultPort,
	}

	if path != "" {
		if err := loadYamlConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYamlConfig(path string, obj interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, obj)
}

func (c *Config) applyEnv() {
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.Port = getEnvInt("RCON_PORT", c.Port)
	c.Password = getEnv("RCON_PASSWORD", c.Password)
	c.HealthServerPort = getEnvInt("HEALTH_SERVER_PORT", c.HealthServerPort)
}

// validate ensures configuration is coherent
func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range (1-65535)", c.Port)
	}

	if c.Password == "" {
		return fmt.Errorf("password must be set (RCON_PASSWORD or password in the config file)")
	}

	if c.HealthServerPort < 0 || c.HealthServerPort > 65535 {
		return fmt.Errorf("health server port %d out of range (0-65535)", c.HealthServerPort)
	}
	if c.HealthServerPort != 0 && c.HealthServerPort == c.Port {
		return fmt.Errorf("health server port must differ from the rcon port (%d)", c.Port)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
