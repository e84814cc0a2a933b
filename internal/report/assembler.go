// Package report orchestrates one probe cycle: the gating ping, the
// throughput measurement, SLA evaluation, and geolocation enrichment, folded
// into a single immutable NetworkHealthRecord.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/saviohq/agent/internal/geo"
	"github.com/saviohq/agent/internal/probe"
	"github.com/saviohq/agent/internal/sla"
	"github.com/saviohq/agent/pkg/types"
)

// Pinger is the gating reachability probe.
type Pinger interface {
	Probe(ctx context.Context) probe.PingResult
}

// Throughput measures download/upload speed; it is only consulted for hosts
// that passed the reachability gate.
type Throughput interface {
	Probe(ctx context.Context) (probe.BandwidthResult, error)
}

// Locator contributes best-effort geolocation regardless of probe outcome.
type Locator interface {
	Resolve(ctx context.Context) geo.Location
}

// Identity carries the static device/agent metadata stamped on every record.
type Identity struct {
	DeviceID      string
	AgentVersion  string
	OSDescriptor  string
	UptimeSeconds int64
}

type Config struct {
	Contract sla.Contract
}

// Dependencies supply the probes; Now and Logger are test overrides.
type Dependencies struct {
	Pinger    Pinger
	Bandwidth Throughput
	Locator   Locator
	Now       func() time.Time
	Logger    *log.Logger
}

// Assembler runs one cycle per call and produces the canonical record.
type Assembler struct {
	contract  sla.Contract
	pinger    Pinger
	bandwidth Throughput
	locator   Locator
	now       func() time.Time
	logger    *log.Logger
}

func NewAssembler(cfg Config, deps Dependencies) (*Assembler, error) {
	if deps.Pinger == nil {
		return nil, fmt.Errorf("pinger is required")
	}
	if deps.Bandwidth == nil {
		return nil, fmt.Errorf("bandwidth prober is required")
	}
	if deps.Locator == nil {
		return nil, fmt.Errorf("locator is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Assembler{
		contract:  cfg.Contract,
		pinger:    deps.Pinger,
		bandwidth: deps.Bandwidth,
		locator:   deps.Locator,
		now:       now,
		logger:    logger,
	}, nil
}

// Run executes the full cycle. It never returns an error: every measurement
// failure is converted into the record's error taxonomy, and geolocation is
// attached on all paths. The returned record is complete and final.
func (a *Assembler) Run(ctx context.Context, id Identity) types.NetworkHealthRecord {
	rec := types.NetworkHealthRecord{
		DeviceID:               id.DeviceID,
		SiteName:               SiteName(id.DeviceID),
		AgentVersion:           id.AgentVersion,
		OSDescriptor:           id.OSDescriptor,
		UptimeSeconds:          id.UptimeSeconds,
		PacketLossPct:          probe.DefaultPacketLossPct,
		PublicIP:               types.PublicIPUnavailable,
		ContractedDownloadMbps: a.contract.DownloadMbps,
		ContractedUploadMbps:   a.contract.UploadMbps,
	}

	ping := a.pinger.Probe(ctx)
	rec.PingSucceeded = ping.Reachable
	rec.PacketLossPct = ping.PacketLossPct

	switch {
	case !ping.Reachable:
		rec.ErrorCode = types.ErrorNoConnectivity
		rec.ErrorMessage = "no internet connection"
		a.logger.Printf("host unreachable after %d ping attempts", ping.Attempts)
	default:
		bw, err := a.bandwidth.Probe(ctx)
		if err != nil {
			rec.ErrorCode = types.ErrorThroughputTest
			rec.ErrorMessage = err.Error()
			a.logger.Printf("throughput measurement failed: %v", err)
		} else {
			a.attachThroughput(&rec, bw)
		}
	}

	loc := a.locator.Resolve(ctx)
	rec.Latitude = loc.Latitude
	rec.Longitude = loc.Longitude
	rec.City = loc.City
	rec.Region = loc.Region
	rec.ISPOrg = loc.Org

	rec.Timestamp = a.now().UTC()
	return rec
}

// attachThroughput rounds measurements to 2 decimals, then evaluates the SLA
// on the rounded values so the stored metrics and the compliance verdict
// agree with each other.
func (a *Assembler) attachThroughput(rec *types.NetworkHealthRecord, bw probe.BandwidthResult) {
	rec.DownloadMbps = round2(bw.DownloadMbps)
	rec.UploadMbps = round2(bw.UploadMbps)
	rec.PingMs = round2Ptr(bw.LatencyMs)
	rec.JitterMs = round2Ptr(bw.JitterMs)
	rec.TestDurationSec = round2(bw.DurationSec)
	rec.TestServerName = bw.ServerName
	rec.TestServerAddress = bw.ServerAddress
	if bw.ClientIP != "" {
		rec.PublicIP = bw.ClientIP
	}

	res := sla.Evaluate(rec.DownloadMbps, rec.UploadMbps, a.contract)
	rec.SLACompliant = res.Compliant
	rec.SLADeviationPct = round2(res.DeviationPct)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := round2(*v)
	return &rounded
}
