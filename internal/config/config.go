package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`

	// StoreBackend selects the remote store: "rtdb" (path-addressed JSON over
	// REST) or "redis" for self-hosted deployments.
	StoreBackend string `mapstructure:"store_backend"`
	StoreURL     string `mapstructure:"store_url"`
	RedisAddr    string `mapstructure:"redis_addr"`

	// PlayerURL is the websocket endpoint of the desktop player bridge.
	PlayerURL string `mapstructure:"player_url"`

	PublishInterval    time.Duration `mapstructure:"publish_interval"`
	HostPollInterval   time.Duration `mapstructure:"host_poll_interval"`
	GuestPollInterval  time.Duration `mapstructure:"guest_poll_interval"`
	InvitePollInterval time.Duration `mapstructure:"invite_poll_interval"`

	DriftTolerance time.Duration `mapstructure:"drift_tolerance"`
	InviteTTL      time.Duration `mapstructure:"invite_ttl"`
	MaxMembers     int           `mapstructure:"max_members"`
	MaxNameLength  int           `mapstructure:"max_name_length"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8766)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("store_backend", "rtdb")
	v.SetDefault("store_url", "")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("player_url", "ws://127.0.0.1:8974/ws")
	v.SetDefault("publish_interval", "2s")
	v.SetDefault("host_poll_interval", "3s")
	v.SetDefault("guest_poll_interval", "2s")
	v.SetDefault("invite_poll_interval", "5s")
	v.SetDefault("drift_tolerance", "3s")
	v.SetDefault("invite_ttl", "60s")
	v.SetDefault("max_members", 5)
	v.SetDefault("max_name_length", 15)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
