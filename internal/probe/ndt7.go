package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-lab/ndt7-client-go"
	"github.com/m-lab/ndt7-client-go/spec"
)

const (
	ndt7ClientName       = "savio-agent"
	ndt7ClientVersion    = "1.0.0"
	ndt7HandshakeTimeout = 10 * time.Second
)

// NDT7Tester measures throughput over the ndt7 protocol. Server discovery is
// delegated to the client's own locate lookup; each Measure call starts from
// a fresh client so no server affinity leaks between attempts.
type NDT7Tester struct {
	newClient func() *ndt7.Client
}

func NewNDT7Tester() *NDT7Tester {
	return &NDT7Tester{
		newClient: func() *ndt7.Client {
			client := ndt7.NewClient(ndt7ClientName, ndt7ClientVersion)
			client.Dialer = websocket.Dialer{HandshakeTimeout: ndt7HandshakeTimeout}
			return client
		},
	}
}

// Measure runs the download then the upload subtest and folds the protocol's
// measurement stream into a single BandwidthResult. Throughput is derived
// from the client-side application counters: ElapsedTime is in microseconds,
// so 8*bytes/elapsed yields Mbit/s directly. Latency and jitter come from the
// server's TCP view during the download.
func (t *NDT7Tester) Measure(ctx context.Context) (BandwidthResult, error) {
	client := t.newClient()
	var res BandwidthResult

	download, err := client.StartDownload(ctx)
	if err != nil {
		return BandwidthResult{}, err
	}
	res.ServerName = client.FQDN
	for m := range download {
		t.observeDownload(&res, &m)
	}
	if res.DownloadMbps <= 0 {
		return BandwidthResult{}, errors.New("download produced no measurements")
	}

	upload, err := client.StartUpload(ctx)
	if err != nil {
		return BandwidthResult{}, err
	}
	for m := range upload {
		t.observeUpload(&res, &m)
	}
	if res.UploadMbps <= 0 {
		return BandwidthResult{}, errors.New("upload produced no measurements")
	}

	return res, nil
}

func (t *NDT7Tester) observeDownload(res *BandwidthResult, m *spec.Measurement) {
	switch m.Origin {
	case spec.OriginClient:
		if m.AppInfo != nil && m.AppInfo.ElapsedTime > 0 {
			res.DownloadMbps = 8 * float64(m.AppInfo.NumBytes) / float64(m.AppInfo.ElapsedTime)
		}
	case spec.OriginServer:
		if m.TCPInfo != nil {
			latency := float64(m.TCPInfo.MinRTT) / 1000
			jitter := float64(m.TCPInfo.RTTVar) / 1000
			res.LatencyMs = &latency
			res.JitterMs = &jitter
		}
		if m.ConnectionInfo != nil {
			res.ClientIP = hostOnly(m.ConnectionInfo.Client)
			if addr := hostOnly(m.ConnectionInfo.Server); addr != "" {
				res.ServerAddress = addr
			}
		}
	}
}

func (t *NDT7Tester) observeUpload(res *BandwidthResult, m *spec.Measurement) {
	if m.Origin == spec.OriginClient && m.AppInfo != nil && m.AppInfo.ElapsedTime > 0 {
		res.UploadMbps = 8 * float64(m.AppInfo.NumBytes) / float64(m.AppInfo.ElapsedTime)
	}
}

func hostOnly(addr string) string {
	if addr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
