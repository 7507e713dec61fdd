// Package config decodes the scenario runner configuration from viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/suderio/scenario-engine/internal/assertion"
	"github.com/suderio/scenario-engine/internal/world"
)

// EnvPrefix prefixes every environment variable read by the runner.
const EnvPrefix = "SCENARIO"

// Transport kinds.
const (
	TransportSim   = "sim"
	TransportWSRPC = "wsrpc"
)

// Audit sink kinds.
const (
	AuditNone   = "none"
	AuditJSONL  = "jsonl"
	AuditSQLite = "sqlite"
)

// AuditConfig selects where run deltas are kept.
type AuditConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"`
	// Dir is the root of JSONL run directories.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`
}

// Config is the full runner configuration.
type Config struct {
	World world.Config `mapstructure:",squash" yaml:",inline"`

	Transport string        `mapstructure:"transport" yaml:"transport"`
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Verbose   bool          `mapstructure:"verbose" yaml:"verbose"`

	Assertions   string `mapstructure:"assertions" yaml:"assertions"`
	TaxonomyFile string `mapstructure:"taxonomy_file" yaml:"taxonomy_file"`

	// RulesFile and Latency configure the sim transport.
	RulesFile string        `mapstructure:"rules_file" yaml:"rules_file"`
	Latency   time.Duration `mapstructure:"latency" yaml:"latency"`

	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("transport", TransportSim)
	v.SetDefault("endpoint", "")
	v.SetDefault("verbose", false)
	v.SetDefault("default_from", "")
	v.SetDefault("network", "")
	v.SetDefault("taxonomy_file", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("latency", time.Duration(0))
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("assertions", string(assertion.ModeStrict))
	v.SetDefault("audit.kind", AuditNone)
	v.SetDefault("audit.dir", "./runs")
	v.SetDefault("audit.path", "./runs/audit.db")
}

// BindEnv makes v read SCENARIO_* variables, with dots in keys mapped to
// underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the option combinations.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSim:
	case TransportWSRPC:
		if c.Endpoint == "" {
			return fmt.Errorf("transport %s requires an endpoint", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if _, err := assertion.ParseMode(c.Assertions); err != nil {
		return err
	}
	switch c.Audit.Kind {
	case "", AuditNone, AuditJSONL, AuditSQLite:
	default:
		return fmt.Errorf("unknown audit kind %q", c.Audit.Kind)
	}
	return nil
}

// AssertionMode returns the parsed assertion mode.
func (c *Config) AssertionMode() assertion.Mode {
	m, err := assertion.ParseMode(c.Assertions)
	if err != nil {
		return assertion.ModeStrict
	}
	return m
}
