package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"
)

// BandwidthResult is one successful throughput measurement, normalized to
// megabits per second. LatencyMs and JitterMs stay nil when the measurement
// server never exposed them.
type BandwidthResult struct {
	DownloadMbps  float64
	UploadMbps    float64
	LatencyMs     *float64
	JitterMs      *float64
	DurationSec   float64
	ServerName    string
	ServerAddress string
	ClientIP      string
	Attempts      int
}

type BandwidthConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// SpeedTester runs one complete download+upload measurement against a server
// discovered by the underlying protocol. The production implementation speaks
// ndt7; tests substitute their own.
type SpeedTester interface {
	Measure(ctx context.Context) (BandwidthResult, error)
}

// BandwidthDependencies allow test overrides for the tester and logging.
type BandwidthDependencies struct {
	Tester SpeedTester
	Logger *log.Logger
}

// BandwidthProber wraps a SpeedTester in the cycle's bounded retry policy.
// It is the component most exposed to environmental variance, so every
// failure inside an attempt is retried after a fixed delay.
type BandwidthProber struct {
	cfg    BandwidthConfig
	tester SpeedTester
	logger *log.Logger
}

func NewBandwidthProber(cfg BandwidthConfig, deps BandwidthDependencies) *BandwidthProber {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	tester := deps.Tester
	if tester == nil {
		tester = NewNDT7Tester()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &BandwidthProber{cfg: cfg, tester: tester, logger: logger}
}

// Probe measures throughput, retrying up to MaxAttempts times. After the
// final attempt fails it reports the last cause; the caller decides how to
// zero-fill the record.
func (b *BandwidthProber) Probe(ctx context.Context) (BandwidthResult, error) {
	var lastErr error

	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
		start := time.Now()
		res, err := b.tester.Measure(attemptCtx)
		cancel()

		if err == nil {
			res.DurationSec = time.Since(start).Seconds()
			res.Attempts = attempt
			return res, nil
		}

		lastErr = err
		b.logger.Printf("throughput attempt %d/%d failed: %v", attempt, b.cfg.MaxAttempts, err)
		if attempt < b.cfg.MaxAttempts {
			sleep(ctx, b.cfg.RetryDelay)
		}
	}

	return BandwidthResult{}, fmt.Errorf("throughput test failed after %d attempts: %w", b.cfg.MaxAttempts, lastErr)
}
