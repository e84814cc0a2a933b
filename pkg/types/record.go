package types

import "time"

// PublicIPUnavailable is the sentinel recorded when the agent could not learn
// its own public address during a cycle.
const PublicIPUnavailable = "Unavailable"

// Error codes carried by a NetworkHealthRecord. Exactly one of the three
// conditions holds per record.
const (
	ErrorNone           = 0
	ErrorNoConnectivity = 1
	ErrorThroughputTest = 2
)

// NetworkHealthRecord is the flat wire contract emitted once per probe cycle.
// Field names and types are the contract with downstream consumers; a record
// is never mutated after assembly.
type NetworkHealthRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	DeviceID      string    `json:"device_id"`
	SiteName      string    `json:"site_name"`
	AgentVersion  string    `json:"agent_version"`
	OSDescriptor  string    `json:"os_descriptor"`
	UptimeSeconds int64     `json:"uptime_seconds"`

	PingSucceeded bool    `json:"ping_succeeded"`
	PacketLossPct float64 `json:"packet_loss_pct"`

	DownloadMbps      float64  `json:"download_mbps"`
	UploadMbps        float64  `json:"upload_mbps"`
	PingMs            *float64 `json:"ping_ms"`
	JitterMs          *float64 `json:"jitter_ms"`
	TestDurationSec   float64  `json:"test_duration_sec"`
	TestServerName    string   `json:"test_server_name"`
	TestServerAddress string   `json:"test_server_address"`

	PublicIP string `json:"public_ip"`

	ContractedDownloadMbps float64 `json:"contracted_download_mbps"`
	ContractedUploadMbps   float64 `json:"contracted_upload_mbps"`
	SLACompliant           bool    `json:"sla_compliant"`
	SLADeviationPct        float64 `json:"sla_deviation_pct"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	ISPOrg    string  `json:"isp_org"`

	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
