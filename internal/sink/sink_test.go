package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/saviohq/agent/pkg/types"
)

func sampleRecord() types.NetworkHealthRecord {
	ping := 24.5
	return types.NetworkHealthRecord{
		Timestamp:              time.Date(2025, 6, 1, 6, 30, 0, 0, time.UTC),
		DeviceID:               "KE-NBO-SCH-0042A-SPEED1",
		SiteName:               "School-0042A",
		AgentVersion:           "1.0.0",
		OSDescriptor:           "Linux 6.1.0-13-amd64",
		UptimeSeconds:          86400,
		PingSucceeded:          true,
		PacketLossPct:          0,
		DownloadMbps:           45.32,
		UploadMbps:             9.87,
		PingMs:                 &ping,
		TestDurationSec:        31.7,
		TestServerName:         "mlab1-nbo01.mlab-oti.measurement-lab.org",
		TestServerAddress:      "196.201.2.10",
		PublicIP:               "41.90.12.34",
		ContractedDownloadMbps: 100,
		ContractedUploadMbps:   20,
		SLADeviationPct:        -54.68,
		City:                   "Nairobi",
	}
}

func TestConsoleWriteEmitsIndentedJSON(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf)

	if err := console.Write(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\n  \"device_id\": \"KE-NBO-SCH-0042A-SPEED1\"") {
		t.Fatalf("expected indented device_id field, got:\n%s", out)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["ping_ms"] != 24.5 {
		t.Fatalf("unexpected ping_ms: %v", decoded["ping_ms"])
	}
	if decoded["jitter_ms"] != nil {
		t.Fatalf("expected null jitter_ms, got %v", decoded["jitter_ms"])
	}
}

func TestNewPostgresValidation(t *testing.T) {
	if _, err := NewPostgres(PostgresConfig{}); err == nil {
		t.Fatal("expected error for missing DSN")
	}
	if _, err := NewPostgres(PostgresConfig{DSN: "postgres://x", Table: "bad table; drop"}); err == nil {
		t.Fatal("expected error for invalid table name")
	}
	pg, err := NewPostgres(PostgresConfig{DSN: "postgres://x"})
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	if !strings.Contains(pg.insertSQL, DefaultTable) {
		t.Fatalf("expected default table in statement: %s", pg.insertSQL)
	}
}

func TestInsertStatementShape(t *testing.T) {
	stmt := insertStatement("network_test_results")
	if !strings.HasPrefix(stmt, "INSERT INTO network_test_results (") {
		t.Fatalf("unexpected statement: %s", stmt)
	}
	if !strings.Contains(stmt, "$27") || strings.Contains(stmt, "$28") {
		t.Fatalf("expected exactly 27 placeholders: %s", stmt)
	}
	if strings.Count(stmt, ",") != 2*(len(recordColumns)-1) {
		t.Fatalf("column/placeholder count mismatch: %s", stmt)
	}
}

func TestRecordArgsMatchesColumns(t *testing.T) {
	rec := sampleRecord()
	args := recordArgs(rec)
	if len(args) != len(recordColumns) {
		t.Fatalf("expected %d args, got %d", len(recordColumns), len(args))
	}
	if args[0] != rec.Timestamp {
		t.Fatalf("expected timestamp first, got %v", args[0])
	}
	// Optional fields pass through as typed nil pointers so they land as NULL.
	if args[11] != (*float64)(nil) {
		t.Fatalf("expected nil jitter arg, got %v", args[11])
	}
	if args[len(args)-1] != rec.ErrorMessage {
		t.Fatalf("expected error message last, got %v", args[len(args)-1])
	}
}
