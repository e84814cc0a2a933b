package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/saviohq/agent/internal/config"
	"github.com/saviohq/agent/internal/geo"
	"github.com/saviohq/agent/internal/logging"
	"github.com/saviohq/agent/internal/platform"
	"github.com/saviohq/agent/internal/probe"
	"github.com/saviohq/agent/internal/report"
	"github.com/saviohq/agent/internal/sink"
	"github.com/saviohq/agent/internal/sla"
)

const agentVersion = "1.0.0"

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = run(ctx, os.Args[2:])
	case "version":
		fmt.Println(agentVersion)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "command %s failed: %v\n", cmd, err)
		os.Exit(1)
	}
}

// run executes exactly one probe cycle. It returns an error only for startup
// failures; measurement failures are captured in the emitted record's error
// code and still exit zero.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "Path to agent configuration file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}

	logger := logging.New()
	start := time.Now()
	cycleID := uuid.NewString()

	deviceID := cfg.Agent.DeviceID
	if deviceID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("resolve device identity: %w", err)
		}
		deviceID = hostname
	}

	capability := platform.Detect()
	identity := report.Identity{
		DeviceID:      deviceID,
		AgentVersion:  agentVersion,
		OSDescriptor:  capability.OSDescriptor(ctx, platform.DefaultRunner),
		UptimeSeconds: capability.UptimeSeconds(ctx, platform.DefaultRunner),
	}

	logger.Printf("cycle %s starting (device=%s site=%s)", cycleID, deviceID, report.SiteName(deviceID))

	contract := sla.Contract{
		DownloadMbps: cfg.SLA.ContractedDownloadMbps,
		UploadMbps:   cfg.SLA.ContractedUploadMbps,
		ThresholdPct: cfg.SLA.ThresholdPct,
	}

	assembler, err := report.NewAssembler(
		report.Config{Contract: contract},
		report.Dependencies{
			Pinger: probe.NewPingProber(probe.PingConfig{
				Host:        cfg.Ping.Host,
				PacketCount: cfg.Ping.PacketCount,
				MaxAttempts: cfg.Ping.Attempts,
				RetryDelay:  cfg.Ping.RetryDelay(),
				Timeout:     cfg.Ping.Timeout(),
			}, probe.PingDependencies{Platform: capability, Logger: logger}),
			Bandwidth: probe.NewBandwidthProber(probe.BandwidthConfig{
				MaxAttempts: cfg.Bandwidth.Attempts,
				RetryDelay:  cfg.Bandwidth.RetryDelay(),
				Timeout:     cfg.Bandwidth.Timeout(),
			}, probe.BandwidthDependencies{Logger: logger}),
			Locator: geo.NewResolver(geo.Config{
				URL:     cfg.Geolocation.URL,
				Timeout: cfg.Geolocation.Timeout(),
			}, geo.Dependencies{Logger: logger}),
			Logger: logger,
		},
	)
	if err != nil {
		return fmt.Errorf("init assembler: %w", err)
	}

	rec := assembler.Run(ctx, identity)

	if err := sink.NewConsole(os.Stdout).Write(ctx, rec); err != nil {
		logger.Printf("cycle %s: %v", cycleID, err)
	}

	if cfg.Sink.PostgresDSN == "" {
		logger.Printf("cycle %s: no database sink configured, record emitted to stdout only", cycleID)
	} else if pg, err := sink.NewPostgres(sink.PostgresConfig{DSN: cfg.Sink.PostgresDSN, Table: cfg.Sink.Table}); err != nil {
		logger.Printf("cycle %s: sink init failed: %v", cycleID, err)
	} else if err := pg.Write(ctx, rec); err != nil {
		logger.Printf("cycle %s: sink write failed: %v", cycleID, err)
	} else {
		logger.Printf("cycle %s: record stored", cycleID)
	}

	logger.Printf("cycle %s finished in %.2fs (error_code=%d)", cycleID, time.Since(start).Seconds(), rec.ErrorCode)
	return nil
}

func printUsage() {
	fmt.Println("Savio Network Probe Agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  savio-agent run [--config /etc/savio/agent.yaml]")
	fmt.Println("  savio-agent version")
}
