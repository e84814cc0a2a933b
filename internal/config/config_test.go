package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
agent:
  device_id: KE-NBO-SCH-0042A-SPEED1
ping:
  host: 1.1.1.1
  attempts: 5
  retry_delay_sec: 1
bandwidth:
  attempts: 2
sla:
  contracted_download_mbps: 50
  contracted_upload_mbps: 10
sink:
  postgres_dsn: postgres://savio@db.internal:5432/monitoring
`

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Agent.DeviceID != "KE-NBO-SCH-0042A-SPEED1" {
		t.Fatalf("unexpected device id: %s", cfg.Agent.DeviceID)
	}
	if cfg.Ping.Host != "1.1.1.1" {
		t.Fatalf("unexpected ping host: %s", cfg.Ping.Host)
	}
	if cfg.Ping.Attempts != 5 {
		t.Fatalf("unexpected ping attempts: %d", cfg.Ping.Attempts)
	}
	if cfg.Ping.RetryDelay() != time.Second {
		t.Fatalf("unexpected ping retry delay: %v", cfg.Ping.RetryDelay())
	}
	if cfg.Bandwidth.Attempts != 2 {
		t.Fatalf("unexpected bandwidth attempts: %d", cfg.Bandwidth.Attempts)
	}
	if cfg.SLA.ContractedDownloadMbps != 50 || cfg.SLA.ContractedUploadMbps != 10 {
		t.Fatalf("unexpected contracted speeds: %+v", cfg.SLA)
	}
	if cfg.Sink.PostgresDSN != "postgres://savio@db.internal:5432/monitoring" {
		t.Fatalf("unexpected sink DSN: %s", cfg.Sink.PostgresDSN)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	if err := os.WriteFile(path, []byte("agent: {}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Ping.Host != DefaultPingHost {
		t.Fatalf("expected default ping host, got %s", cfg.Ping.Host)
	}
	if cfg.Ping.PacketCount != DefaultPingPacketCount {
		t.Fatalf("expected default packet count, got %d", cfg.Ping.PacketCount)
	}
	if cfg.Bandwidth.Timeout() != DefaultBandwidthTimeoutSec*time.Second {
		t.Fatalf("expected default bandwidth timeout, got %v", cfg.Bandwidth.Timeout())
	}
	if cfg.Geolocation.URL != DefaultGeolocationURL {
		t.Fatalf("expected default geolocation URL, got %s", cfg.Geolocation.URL)
	}
	if cfg.SLA.ThresholdPct != DefaultSLAThresholdPct {
		t.Fatalf("expected default SLA threshold, got %v", cfg.SLA.ThresholdPct)
	}
	if cfg.Sink.Table != DefaultSinkTable {
		t.Fatalf("expected default sink table, got %s", cfg.Sink.Table)
	}
}

func TestDefaultMatchesLoadOfEmptyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != Default() {
		t.Fatalf("Default() diverges from empty-file load:\n%+v\n%+v", Default(), loaded)
	}
}

func TestLoadFromEnv(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(envConfigPath, path)

	cfg, err := LoadFromEnv(ctx)
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}

	if cfg.Ping.Host != "1.1.1.1" {
		t.Fatalf("unexpected ping host: %s", cfg.Ping.Host)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	if err := os.WriteFile(path, []byte("ping: [not a mapping"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(ctx, path); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}
