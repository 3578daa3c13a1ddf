package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	StoreTimeout      time.Duration `mapstructure:"store_timeout" yaml:"store_timeout"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	UploadDir         string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	UploadMaxBytes    int64         `mapstructure:"upload_max_bytes" yaml:"upload_max_bytes"`
	WSRateLimit       int           `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		DatabasePath:      "dmchat.db",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		StoreTimeout:      5 * time.Second,
		HistoryLimit:      100,
		UploadDir:         "uploads",
		UploadMaxBytes:    10 << 20,
		WSRateLimit:       0,
	}
}
