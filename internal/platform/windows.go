package platform

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Windows ping reports "Packets: Sent = 5, Received = 4, Lost = 1 (20% loss)".
var windowsLostPattern = regexp.MustCompile(`Lost = (\d+)`)

type windowsCapability struct{}

func (windowsCapability) PingArgs(host string, count int) []string {
	return []string{"ping", "-n", strconv.Itoa(count), host}
}

func (windowsCapability) ParsePacketLoss(output string, sent int) (float64, bool) {
	match := windowsLostPattern.FindStringSubmatch(output)
	if match == nil || sent <= 0 {
		return 0, false
	}
	lost, err := strconv.Atoi(match[1])
	if err != nil || lost < 0 || lost > sent {
		return 0, false
	}
	return float64(lost) / float64(sent) * 100, true
}

func (windowsCapability) UptimeSeconds(ctx context.Context, run CommandRunner) int64 {
	if run == nil {
		return 0
	}
	out, err := run(ctx, "powershell", "-NoProfile", "-Command",
		"[int]((Get-Date) - (Get-CimInstance Win32_OperatingSystem).LastBootUpTime).TotalSeconds")
	if err != nil {
		return 0
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

func (windowsCapability) OSDescriptor(ctx context.Context, run CommandRunner) string {
	fallback := fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
	if run == nil {
		return fallback
	}
	out, err := run(ctx, "cmd", "/c", "ver")
	if err != nil {
		return fallback
	}
	desc := strings.TrimSpace(string(out))
	if desc == "" {
		return fallback
	}
	return desc
}
