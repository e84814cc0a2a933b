package platform

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Both iputils and BSD ping report a summary line such as
// "5 packets transmitted, 4 received, 20% packet loss" (Linux) or
// "5 packets transmitted, 4 packets received, 20.0% packet loss" (macOS).
var unixLossPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)% packet loss`)

// Darwin sysctl kern.boottime prints "{ sec = 1693400000, usec = 123456 } ...".
var boottimePattern = regexp.MustCompile(`sec\s*=\s*(\d+)`)

type linuxCapability struct{}

func (linuxCapability) PingArgs(host string, count int) []string {
	return []string{"ping", "-c", strconv.Itoa(count), host}
}

func (linuxCapability) ParsePacketLoss(output string, sent int) (float64, bool) {
	return parseUnixLoss(output)
}

func (linuxCapability) UptimeSeconds(ctx context.Context, run CommandRunner) int64 {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0
	}
	return parseProcUptime(string(data))
}

func (linuxCapability) OSDescriptor(ctx context.Context, run CommandRunner) string {
	return unameDescriptor(ctx, run)
}

type darwinCapability struct{}

func (darwinCapability) PingArgs(host string, count int) []string {
	return []string{"ping", "-c", strconv.Itoa(count), host}
}

func (darwinCapability) ParsePacketLoss(output string, sent int) (float64, bool) {
	return parseUnixLoss(output)
}

func (darwinCapability) UptimeSeconds(ctx context.Context, run CommandRunner) int64 {
	if run == nil {
		return 0
	}
	out, err := run(ctx, "sysctl", "-n", "kern.boottime")
	if err != nil {
		return 0
	}
	return uptimeFromBoottime(string(out), time.Now())
}

func (darwinCapability) OSDescriptor(ctx context.Context, run CommandRunner) string {
	return unameDescriptor(ctx, run)
}

func parseUnixLoss(output string) (float64, bool) {
	match := unixLossPattern.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(match[1], 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}

func parseProcUptime(data string) int64 {
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return 0
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || secs < 0 {
		return 0
	}
	return int64(secs)
}

func uptimeFromBoottime(output string, now time.Time) int64 {
	match := boottimePattern.FindStringSubmatch(output)
	if match == nil {
		return 0
	}
	boot, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0
	}
	uptime := now.Unix() - boot
	if uptime < 0 {
		return 0
	}
	return uptime
}

func unameDescriptor(ctx context.Context, run CommandRunner) string {
	fallback := fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
	if run == nil {
		return fallback
	}
	out, err := run(ctx, "uname", "-srv")
	if err != nil {
		return fallback
	}
	desc := strings.TrimSpace(string(out))
	if desc == "" {
		return fallback
	}
	return desc
}
