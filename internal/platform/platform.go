// Package platform isolates the host-OS specifics the probe cycle depends on:
// how the system ping utility is invoked and parsed, and where uptime and the
// OS descriptor come from. One Capability variant exists per target platform
// and is selected once at startup.
package platform

import (
	"context"
	"os/exec"
	"runtime"
)

// CommandRunner executes an external command and returns its combined output.
// Probers and capabilities take it as a dependency so tests can supply canned
// output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultRunner shells out via os/exec, honouring context cancellation.
func DefaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Capability describes one target platform.
type Capability interface {
	// PingArgs returns the full argv for a fixed-count echo burst.
	PingArgs(host string, count int) []string
	// ParsePacketLoss extracts the loss percentage from ping output. The
	// sent count is needed on platforms that only report absolute losses.
	ParsePacketLoss(output string, sent int) (float64, bool)
	// UptimeSeconds reports host uptime, 0 if undeterminable.
	UptimeSeconds(ctx context.Context, run CommandRunner) int64
	// OSDescriptor reports a human-readable OS identity string.
	OSDescriptor(ctx context.Context, run CommandRunner) string
}

// Detect selects the Capability for the running OS.
func Detect() Capability {
	switch runtime.GOOS {
	case "windows":
		return windowsCapability{}
	case "darwin":
		return darwinCapability{}
	default:
		return linuxCapability{}
	}
}
