// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment variables.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory evaluation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// WindowMS is the trailing look-back window for rule evaluation,
	// in milliseconds.
	WindowMS int64 `koanf:"window_ms"`

	// SweepIntervalMS controls how often every known patient is re-evaluated
	// regardless of fresh data, in milliseconds. Zero disables the sweep.
	SweepIntervalMS int64 `koanf:"sweep_interval_ms"`

	// KafkaBrokers enables the Kafka alert sink when non-empty.
	KafkaBrokers []string `koanf:"kafka_brokers"`

	// KafkaTopic is the topic alerts are published to.
	KafkaTopic string `koanf:"kafka_topic"`

	// WSSourceURL enables the WebSocket ingestion reader when non-empty,
	// e.g. "ws://localhost:8887".
	WSSourceURL string `koanf:"ws_source_url"`

	// TCPSourceAddr enables the TCP ingestion reader when non-empty,
	// e.g. "localhost:8085".
	TCPSourceAddr string `koanf:"tcp_source_addr"`
}

// Defaults.
const (
	defaultWindowMS        = int64(86_400_000) // 24h look-back
	defaultSweepIntervalMS = int64(30_000)
	defaultQueueSize       = 100_000
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9090",
		QueueSize:       defaultQueueSize,
		WorkerCount:     runtime.NumCPU() * 4,
		WindowMS:        defaultWindowMS,
		SweepIntervalMS: defaultSweepIntervalMS,
		KafkaTopic:      "vitalsentry.alerts",
	}
}
