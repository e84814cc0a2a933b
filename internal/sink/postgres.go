package sink

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/saviohq/agent/pkg/types"
)

const DefaultTable = "network_test_results"

// The table name is interpolated into the statement, so it is restricted to a
// plain identifier.
var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var recordColumns = []string{
	"timestamp_utc",
	"device_id",
	"site_name",
	"agent_version",
	"os_descriptor",
	"uptime_seconds",
	"ping_succeeded",
	"packet_loss_pct",
	"download_mbps",
	"upload_mbps",
	"ping_ms",
	"jitter_ms",
	"test_duration_sec",
	"test_server_name",
	"test_server_address",
	"public_ip",
	"contracted_download_mbps",
	"contracted_upload_mbps",
	"sla_compliant",
	"sla_deviation_pct",
	"latitude",
	"longitude",
	"city",
	"region",
	"isp_org",
	"error_code",
	"error_message",
}

type PostgresConfig struct {
	DSN   string
	Table string
}

// Postgres appends one record per cycle to a flat results table. The
// connection is opened, used once, and released inside Write so no resource
// outlives the cycle.
type Postgres struct {
	dsn       string
	insertSQL string
}

func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid sink table name %q", table)
	}
	return &Postgres{dsn: cfg.DSN, insertSQL: insertStatement(table)}, nil
}

func (p *Postgres) Write(ctx context.Context, rec types.NetworkHealthRecord) error {
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return fmt.Errorf("connect result store: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, p.insertSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func insertStatement(table string) string {
	placeholders := make([]string, len(recordColumns))
	for i := range recordColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(recordColumns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// recordArgs flattens the record in recordColumns order. Optional fields pass
// through as nil pointers so unmeasured values land as NULL, never a sentinel.
func recordArgs(rec types.NetworkHealthRecord) []any {
	return []any{
		rec.Timestamp,
		rec.DeviceID,
		rec.SiteName,
		rec.AgentVersion,
		rec.OSDescriptor,
		rec.UptimeSeconds,
		rec.PingSucceeded,
		rec.PacketLossPct,
		rec.DownloadMbps,
		rec.UploadMbps,
		rec.PingMs,
		rec.JitterMs,
		rec.TestDurationSec,
		rec.TestServerName,
		rec.TestServerAddress,
		rec.PublicIP,
		rec.ContractedDownloadMbps,
		rec.ContractedUploadMbps,
		rec.SLACompliant,
		rec.SLADeviationPct,
		rec.Latitude,
		rec.Longitude,
		rec.City,
		rec.Region,
		rec.ISPOrg,
		rec.ErrorCode,
		rec.ErrorMessage,
	}
}
