package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SQUADCLASH_SIM_SEED.
const EnvPrefix = "SQUADCLASH"

// Config is the application configuration shared by the batch runner and the viewer.
type Config struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	LogFile   string          `json:"logFile" mapstructure:"logFile"`
	Data      DataConfig      `json:"data" mapstructure:"data"`
	Sim       SimConfig       `json:"sim" mapstructure:"sim"`
	Layout    LayoutConfig    `json:"layout" mapstructure:"layout"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Autocast  AutocastConfig  `json:"autocast" mapstructure:"autocast"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
}

// DataConfig points at the balance tables and squad files.
type DataConfig struct {
	Units       string `json:"units" mapstructure:"units"`
	Abilities   string `json:"abilities" mapstructure:"abilities"`
	Projectiles string `json:"projectiles" mapstructure:"projectiles"`
	Squads      string `json:"squads" mapstructure:"squads"`
	Maps        string `json:"maps" mapstructure:"maps"`
}

// SimConfig holds engine timing and projectile settings.
type SimConfig struct {
	TickSeconds            float64 `json:"tickSeconds" mapstructure:"tickSeconds"`
	MaxSeconds             float64 `json:"maxSeconds" mapstructure:"maxSeconds"`
	Seed                   int64   `json:"seed" mapstructure:"seed"` // 0 picks a time based seed
	ProjectileEpsilon      float64 `json:"projectileEpsilon" mapstructure:"projectileEpsilon"`
	ProjectileMaxLifetime  float64 `json:"projectileMaxLifetime" mapstructure:"projectileMaxLifetime"`
	DefaultProjectileSpeed float64 `json:"defaultProjectileSpeed" mapstructure:"defaultProjectileSpeed"`
}

// LayoutConfig is the starting formation geometry.
type LayoutConfig struct {
	FrontOffset float64 `json:"frontOffset" mapstructure:"frontOffset"`
	RowGap      float64 `json:"rowGap" mapstructure:"rowGap"`
	ColumnGap   float64 `json:"columnGap" mapstructure:"columnGap"`
}

// StorageConfig selects the database backend.
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"` // sqlite or postgres
	DSN     string `json:"dsn" mapstructure:"dsn"`
}

// AutocastRule fires Ability when the When expression evaluates true.
type AutocastRule struct {
	Ability string `json:"ability" mapstructure:"ability"`
	When    string `json:"when" mapstructure:"when"`
}

// AutocastConfig lists the ability rules used by hosts.
type AutocastConfig struct {
	Rules []AutocastRule `json:"rules" mapstructure:"rules"`
}

// TelemetryConfig toggles OpenTelemetry metrics.
type TelemetryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")

	v.SetDefault("data.units", "data/units.yaml")
	v.SetDefault("data.abilities", "data/abilities.yaml")
	v.SetDefault("data.projectiles", "data/projectiles.yaml")
	v.SetDefault("data.squads", "data/squads.yaml")
	v.SetDefault("data.maps", "data/maps.yaml")

	v.SetDefault("sim.tickSeconds", 0.05)
	v.SetDefault("sim.maxSeconds", 300.0)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.projectileEpsilon", 0.1)
	v.SetDefault("sim.projectileMaxLifetime", 5.0)
	v.SetDefault("sim.defaultProjectileSpeed", 12.0)

	v.SetDefault("layout.frontOffset", 4.0)
	v.SetDefault("layout.rowGap", 2.0)
	v.SetDefault("layout.columnGap", 2.5)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "squadclash.db")

	v.SetDefault("autocast.rules", []map[string]string{})

	v.SetDefault("telemetry.enabled", false)
}

// Load reads configuration from path (yaml or json, by extension) on top of
// the defaults. An empty path uses defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.TickSeconds <= 0 {
		errs = append(errs, fmt.Errorf("sim.tickSeconds must be positive, got %v", c.Sim.TickSeconds))
	}
	if c.Sim.MaxSeconds <= 0 {
		errs = append(errs, fmt.Errorf("sim.maxSeconds must be positive, got %v", c.Sim.MaxSeconds))
	}
	if c.Sim.ProjectileEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("sim.projectileEpsilon must be positive, got %v", c.Sim.ProjectileEpsilon))
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be sqlite or postgres, got %q", c.Storage.Driver))
	}
	for i, r := range c.Autocast.Rules {
		if r.Ability == "" || r.When == "" {
			errs = append(errs, fmt.Errorf("autocast.rules[%d] needs both ability and when", i))
		}
	}
	return errors.Join(errs...)
}

// MaxTicks is the tick budget implied by sim.maxSeconds.
func (c *Config) MaxTicks() int {
	return int(c.Sim.MaxSeconds/c.Sim.TickSeconds + 0.5)
}
