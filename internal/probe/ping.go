// Package probe implements the gating reachability check and the throughput
// measurement that make up one probe cycle.
package probe

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/saviohq/agent/internal/platform"
)

// DefaultPacketLossPct is reported when no burst ever completed.
const DefaultPacketLossPct = 100.0

// PingResult is the outcome of one reachability check. A completed echo burst
// counts as reachable regardless of its loss percentage; only bursts that
// never complete (timeout, process error, unparseable output) fail.
type PingResult struct {
	Reachable     bool
	PacketLossPct float64
	Attempts      int
}

type PingConfig struct {
	Host        string
	PacketCount int
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// PingDependencies allow test overrides for command execution and logging.
type PingDependencies struct {
	Platform   platform.Capability
	RunCommand platform.CommandRunner
	Logger     *log.Logger
}

// PingProber measures reachability and packet loss against a fixed target by
// shelling out to the host ping utility.
type PingProber struct {
	cfg    PingConfig
	plat   platform.Capability
	run    platform.CommandRunner
	logger *log.Logger
}

func NewPingProber(cfg PingConfig, deps PingDependencies) *PingProber {
	if cfg.PacketCount <= 0 {
		cfg.PacketCount = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	plat := deps.Platform
	if plat == nil {
		plat = platform.Detect()
	}
	run := deps.RunCommand
	if run == nil {
		run = platform.DefaultRunner
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PingProber{cfg: cfg, plat: plat, run: run, logger: logger}
}

// Probe issues up to MaxAttempts echo bursts, sleeping RetryDelay between
// failed attempts. All transport failures are absorbed into the terminal
// unreachable result; no error escapes.
func (p *PingProber) Probe(ctx context.Context) PingResult {
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		pct, ok := p.attempt(ctx)
		if ok {
			return PingResult{Reachable: true, PacketLossPct: pct, Attempts: attempt}
		}
		if attempt < p.cfg.MaxAttempts {
			sleep(ctx, p.cfg.RetryDelay)
		}
	}

	return PingResult{Reachable: false, PacketLossPct: DefaultPacketLossPct, Attempts: p.cfg.MaxAttempts}
}

func (p *PingProber) attempt(ctx context.Context) (float64, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	argv := p.plat.PingArgs(p.cfg.Host, p.cfg.PacketCount)
	out, err := p.run(attemptCtx, argv[0], argv[1:]...)
	if err != nil {
		p.logger.Printf("ping %s failed: %v", p.cfg.Host, err)
		return 0, false
	}

	pct, ok := p.plat.ParsePacketLoss(string(out), p.cfg.PacketCount)
	if !ok {
		// Unreadable output degrades to a retry, not a crash.
		p.logger.Printf("ping %s produced unparseable output", p.cfg.Host)
		return 0, false
	}
	return pct, true
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
