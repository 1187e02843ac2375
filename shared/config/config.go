// Copyright 2025 OpenSec
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config builds the single Configuration value handed to every
// pipeline component. Values come from defaults, then an optional YAML
// file, then environment variables, in that order. There are no mutable
// package-level endpoint or timeout globals: components receive their
// settings explicitly, which keeps test doubles free of hidden coupling.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match a gateway stack running on localhost:8000.
const (
	DefaultGenerationURL     = "http://localhost:8000/bifrost/v1/chat/completions"
	DefaultValidateURL       = "http://localhost:8000/api/validate"
	DefaultValidateSQLURL    = "http://localhost:8000/api/validate-sql"
	DefaultRelayURL          = "http://localhost:8000/api/agent-message"
	DefaultModel             = "glm-5:cloud"
	DefaultTemperature       = 0.7
	DefaultGenerationTimeout = 60 * time.Second
	// Prompt validation may wait on the gateway's own scanning model.
	DefaultPromptTimeout = 60 * time.Second
	// Statement validation is a static check and returns quickly.
	DefaultSQLTimeout = 10 * time.Second
	// The router waits for the downstream agent's generation before replying.
	DefaultRelayTimeout = 300 * time.Second
	DefaultDriver       = "sqlite"
	DefaultDSN          = "mock_database.db"
)

// Duration wraps time.Duration with YAML support for values like "60s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// GenerationConfig configures the intent generator endpoint.
type GenerationConfig struct {
	URL         string   `yaml:"url"`
	Model       string   `yaml:"model"`
	Temperature float64  `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`
}

// GatewayConfig configures the two policy validation endpoints. The prompt
// and statement endpoints are distinct capabilities and must not be
// conflated; each carries its own URL and timeout.
type GatewayConfig struct {
	ValidateURL    string   `yaml:"validate_url"`
	ValidateSQLURL string   `yaml:"validate_sql_url"`
	PromptTimeout  Duration `yaml:"prompt_timeout"`
	SQLTimeout     Duration `yaml:"sql_timeout"`
}

// RelayConfig configures the agent-message router endpoint.
type RelayConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// DatabaseConfig selects the local relational store for query execution.
// Supported drivers: sqlite, postgres, mysql.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Config is the explicit configuration value passed into each component.
type Config struct {
	AgentID    string           `yaml:"agent_id"`
	Generation GenerationConfig `yaml:"generation"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Relay      RelayConfig      `yaml:"relay"`
	Database   DatabaseConfig   `yaml:"database"`
}

// Default returns the configuration for a local development stack.
func Default() Config {
	return Config{
		AgentID: "agent",
		Generation: GenerationConfig{
			URL:         DefaultGenerationURL,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			Timeout:     Duration(DefaultGenerationTimeout),
		},
		Gateway: GatewayConfig{
			ValidateURL:    DefaultValidateURL,
			ValidateSQLURL: DefaultValidateSQLURL,
			PromptTimeout:  Duration(DefaultPromptTimeout),
			SQLTimeout:     Duration(DefaultSQLTimeout),
		},
		Relay: RelayConfig{
			URL:     DefaultRelayURL,
			Timeout: Duration(DefaultRelayTimeout),
		},
		Database: DatabaseConfig{
			Driver: DefaultDriver,
			DSN:    DefaultDSN,
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path, and
// environment variable overrides. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays OPENSEC_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.AgentID, "OPENSEC_AGENT_ID")
	setString(&cfg.Generation.URL, "OPENSEC_GENERATION_URL")
	setString(&cfg.Generation.Model, "OPENSEC_MODEL")
	setString(&cfg.Gateway.ValidateURL, "OPENSEC_VALIDATE_URL")
	setString(&cfg.Gateway.ValidateSQLURL, "OPENSEC_VALIDATE_SQL_URL")
	setString(&cfg.Relay.URL, "OPENSEC_RELAY_URL")
	setString(&cfg.Database.Driver, "OPENSEC_DB_DRIVER")
	setString(&cfg.Database.DSN, "OPENSEC_DB_DSN")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.AgentID == "" {
		return fmt.Errorf("agent_id is required")
	}
	if c.Generation.URL == "" {
		return fmt.Errorf("generation url is required")
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation temperature %.2f outside [0, 2]", c.Generation.Temperature)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation timeout must be positive")
	}
	if c.Gateway.ValidateURL == "" || c.Gateway.ValidateSQLURL == "" {
		return fmt.Errorf("both gateway validation urls are required")
	}
	if c.Gateway.PromptTimeout <= 0 || c.Gateway.SQLTimeout <= 0 {
		return fmt.Errorf("gateway timeouts must be positive")
	}
	if c.Relay.URL == "" {
		return fmt.Errorf("relay url is required")
	}
	if c.Relay.Timeout <= 0 {
		return fmt.Errorf("relay timeout must be positive")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	return nil
}
