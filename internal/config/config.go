package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath     = "SAVIO_AGENT_CONFIG"
	DefaultConfigPath = "/etc/savio/agent.yaml"
)

// Defaults mirror the contracted-service baseline the fleet ships with. Any
// zero or missing value falls back to these, so a partial config file is valid.
const (
	DefaultPingHost            = "8.8.8.8"
	DefaultPingPacketCount     = 5
	DefaultPingAttempts        = 3
	DefaultPingRetryDelaySec   = 2
	DefaultPingTimeoutSec      = 10
	DefaultBandwidthAttempts   = 3
	DefaultBandwidthRetrySec   = 3
	DefaultBandwidthTimeoutSec = 120
	DefaultGeolocationURL      = "https://ipinfo.io/json"
	DefaultGeolocationTimeout  = 5
	DefaultContractedDownload  = 100.0
	DefaultContractedUpload    = 20.0
	DefaultSLAThresholdPct     = 80.0
	DefaultSinkTable           = "network_test_results"
)

type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Ping        PingConfig        `yaml:"ping"`
	Bandwidth   BandwidthConfig   `yaml:"bandwidth"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	SLA         SLAConfig         `yaml:"sla"`
	Sink        SinkConfig        `yaml:"sink"`
}

type AgentConfig struct {
	// DeviceID overrides the hostname-derived device identifier.
	DeviceID string `yaml:"device_id"`
}

type PingConfig struct {
	Host          string `yaml:"host"`
	PacketCount   int    `yaml:"packet_count"`
	Attempts      int    `yaml:"attempts"`
	RetryDelaySec int    `yaml:"retry_delay_sec"`
	TimeoutSec    int    `yaml:"timeout_sec"`
}

func (c PingConfig) RetryDelay() time.Duration { return time.Duration(c.RetryDelaySec) * time.Second }
func (c PingConfig) Timeout() time.Duration    { return time.Duration(c.TimeoutSec) * time.Second }

type BandwidthConfig struct {
	Attempts      int `yaml:"attempts"`
	RetryDelaySec int `yaml:"retry_delay_sec"`
	TimeoutSec    int `yaml:"timeout_sec"`
}

func (c BandwidthConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySec) * time.Second
}

func (c BandwidthConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

type GeolocationConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

func (c GeolocationConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

type SLAConfig struct {
	ContractedDownloadMbps float64 `yaml:"contracted_download_mbps"`
	ContractedUploadMbps   float64 `yaml:"contracted_upload_mbps"`
	ThresholdPct           float64 `yaml:"threshold_pct"`
}

type SinkConfig struct {
	// PostgresDSN enables the database sink when non-empty; the record is
	// always emitted to stdout regardless.
	PostgresDSN string `yaml:"postgres_dsn"`
	Table       string `yaml:"table"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func Load(ctx context.Context, path string) (Config, error) {
	var cfg Config

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func LoadFromEnv(ctx context.Context) (Config, error) {
	path := os.Getenv(envConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}
	return Load(ctx, path)
}

func applyDefaults(cfg *Config) {
	if cfg.Ping.Host == "" {
		cfg.Ping.Host = DefaultPingHost
	}
	if cfg.Ping.PacketCount <= 0 {
		cfg.Ping.PacketCount = DefaultPingPacketCount
	}
	if cfg.Ping.Attempts <= 0 {
		cfg.Ping.Attempts = DefaultPingAttempts
	}
	if cfg.Ping.RetryDelaySec <= 0 {
		cfg.Ping.RetryDelaySec = DefaultPingRetryDelaySec
	}
	if cfg.Ping.TimeoutSec <= 0 {
		cfg.Ping.TimeoutSec = DefaultPingTimeoutSec
	}
	if cfg.Bandwidth.Attempts <= 0 {
		cfg.Bandwidth.Attempts = DefaultBandwidthAttempts
	}
	if cfg.Bandwidth.RetryDelaySec <= 0 {
		cfg.Bandwidth.RetryDelaySec = DefaultBandwidthRetrySec
	}
	if cfg.Bandwidth.TimeoutSec <= 0 {
		cfg.Bandwidth.TimeoutSec = DefaultBandwidthTimeoutSec
	}
	if cfg.Geolocation.URL == "" {
		cfg.Geolocation.URL = DefaultGeolocationURL
	}
	if cfg.Geolocation.TimeoutSec <= 0 {
		cfg.Geolocation.TimeoutSec = DefaultGeolocationTimeout
	}
	if cfg.SLA.ContractedDownloadMbps <= 0 {
		cfg.SLA.ContractedDownloadMbps = DefaultContractedDownload
	}
	if cfg.SLA.ContractedUploadMbps <= 0 {
		cfg.SLA.ContractedUploadMbps = DefaultContractedUpload
	}
	if cfg.SLA.ThresholdPct <= 0 {
		cfg.SLA.ThresholdPct = DefaultSLAThresholdPct
	}
	if cfg.Sink.Table == "" {
		cfg.Sink.Table = DefaultSinkTable
	}
}
