// Package config loads facade configuration from a YAML file with
// environment-variable overrides (SMPGRAPH_NEO4J_URI, SMPGRAPH_NEO4J_USERNAME,
// SMPGRAPH_NEO4J_PASSWORD, SMPGRAPH_NEO4J_DATABASE).
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

// Config is the top-level facade configuration.
type Config struct {
	Neo4j   Neo4jConfig   `yaml:"neo4j" mapstructure:"neo4j"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// Neo4jConfig contains graph engine connection settings.
type Neo4jConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"`
	PoolSize       int    `yaml:"pool_size" mapstructure:"pool_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// Load reads configuration from the given file path, applying defaults and
// SMPGRAPH_* environment overrides. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "")
	v.SetDefault("neo4j.pool_size", 50)
	v.SetDefault("neo4j.timeout_seconds", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix("SMPGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
				"failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			"failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.uri cannot be empty")
	}
	if c.Neo4j.Username == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.username cannot be empty")
	}
	if c.Neo4j.Password == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.password cannot be empty")
	}
	if c.Neo4j.TimeoutSeconds <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.timeout_seconds must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "logging.level must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "logging.format must be text or json")
	}
	return nil
}

// GraphConfig converts the connection settings into a graph client config.
func (c *Config) GraphConfig() graph.Config {
	timeout := time.Duration(c.Neo4j.TimeoutSeconds) * time.Second
	return graph.Config{
		URI:                     c.Neo4j.URI,
		Username:                c.Neo4j.Username,
		Password:                c.Neo4j.Password,
		Database:                c.Neo4j.Database,
		MaxConnectionPoolSize:   c.Neo4j.PoolSize,
		ConnectionTimeout:       timeout,
		MaxTransactionRetryTime: timeout,
	}
}
