// Package config loads tuning/runtime overrides for a search run from an
// optional YAML/JSON/TOML file plus environment variables, falling back to
// the engine's compiled-in defaults when no file is present.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/tspbb/bnbtsp/bnb"
)

// Config is the full set of overridable run settings.
type Config struct {
	Tuning TuningConfig `mapstructure:"tuning"`
	Log    LogConfig    `mapstructure:"log"`
	Ring   RingConfig   `mapstructure:"ring"`
}

// TuningConfig mirrors bnb.Tuning for file/env override.
type TuningConfig struct {
	SmallWorkerPopThreshold int `mapstructure:"small_worker_pop_threshold"`
	LargeWorkerPopThreshold int `mapstructure:"large_worker_pop_threshold"`
	DeepQueueMultiplier     int `mapstructure:"deep_queue_multiplier"`
}

// LogConfig controls the applog level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RingConfig controls the distributed deployment's ring addressing.
type RingConfig struct {
	Peers []string `mapstructure:"peers"` // addrs[k] is rank k's listen address
}

// ToTuning converts the loaded overrides into a bnb.Tuning.
func (c Config) ToTuning() bnb.Tuning {
	return bnb.Tuning{
		SmallWorkerPopThreshold: c.Tuning.SmallWorkerPopThreshold,
		LargeWorkerPopThreshold: c.Tuning.LargeWorkerPopThreshold,
		DeepQueueMultiplier:     c.Tuning.DeepQueueMultiplier,
	}
}

// Load reads configPath (if non-empty) or searches standard locations,
// applying environment-variable overrides on top, and falls back silently
// to defaults when no config file exists anywhere.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tspbb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tspbb")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file anywhere: defaults stand.
		} else if os.IsNotExist(err) {
			// explicit path doesn't exist: defaults stand.
		} else {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix("TSPBB")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := bnb.DefaultTuning()
	v.SetDefault("tuning.small_worker_pop_threshold", def.SmallWorkerPopThreshold)
	v.SetDefault("tuning.large_worker_pop_threshold", def.LargeWorkerPopThreshold)
	v.SetDefault("tuning.deep_queue_multiplier", def.DeepQueueMultiplier)
	v.SetDefault("log.level", "info")
}
