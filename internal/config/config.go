// Package config loads streamcore's engine parameters from config.yaml plus
// environment overrides, grounded on the teacher's control-plane viper +
// mapstructure idiom.
package config

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// WindowConfig configures the SlidingWindow parameters shared by every
// TopK group.
type WindowConfig struct {
	N int `mapstructure:"n"`
	B int `mapstructure:"b"`
	K int `mapstructure:"k"`
}

// GraphConfig configures the CompressedSparse graph.
type GraphConfig struct {
	Capacity   uint64 `mapstructure:"capacity"`
	WindowSecs int    `mapstructure:"window_secs"`
}

// FeatureMapConfig selects and configures the FeatureMap implementation.
type FeatureMapConfig struct {
	Backend  string `mapstructure:"backend"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
	TTLSecs  int    `mapstructure:"ttl_secs"`
}

// BusConfig selects and configures the Subscriber bus implementation.
type BusConfig struct {
	Backend string   `mapstructure:"backend"` // "memory" or "kafka"
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Config is streamcore's full runtime configuration.
type Config struct {
	Window     WindowConfig     `mapstructure:"window"`
	Graph      GraphConfig      `mapstructure:"graph"`
	FeatureMap FeatureMapConfig `mapstructure:"feature_map"`
	Bus        BusConfig        `mapstructure:"bus"`

	AdminAddr      string `mapstructure:"admin_addr"`
	MetricInterval int    `mapstructure:"metric_interval"`
}

// Load reads config.yaml from the conventional search paths (./config, .),
// applies STREAMCORE_-prefixed environment overrides, and unmarshals into a
// Config. A missing config file is not an error: every field has a
// SetDefault value, matching the teacher's default-then-override pattern.
func Load() (*Config, error) {
	viper.SetDefault("window.n", 10000)
	viper.SetDefault("window.b", 1000)
	viper.SetDefault("window.k", 10)

	viper.SetDefault("graph.capacity", 4096)
	viper.SetDefault("graph.window_secs", 300)

	viper.SetDefault("feature_map.backend", "memory")
	viper.SetDefault("feature_map.redis_url", "localhost:6379")
	viper.SetDefault("feature_map.ttl_secs", 300)

	viper.SetDefault("bus.backend", "memory")
	viper.SetDefault("bus.brokers", []string{})
	viper.SetDefault("bus.topic", "topk.notifications")

	viper.SetDefault("admin_addr", ":8090")
	viper.SetDefault("metric_interval", 10000)

	viper.SetEnvPrefix("STREAMCORE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Debug("config: no config.yaml found, using defaults and environment overrides")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
