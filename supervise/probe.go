// Package supervise implements the tunnel supervision control loop.
// This file contains the data-plane connectivity prober.
package supervise

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
)

// PingProber checks data-plane connectivity by sending a small bounded
// number of echo probes through the tunnel interface. It implements
// common.Prober.
type PingProber struct {
	// Count is how many echo probes one check sends.
	Count int
	// Timeout is the per-check deadline.
	Timeout time.Duration
}

// NewPingProber returns a prober with the given parameters, falling back to
// the application defaults for zero values.
func NewPingProber(count int, timeout time.Duration) *PingProber {
	if count <= 0 {
		count = common.DefaultProbeCount
	}
	if timeout <= 0 {
		timeout = common.DefaultProbeTimeout
	}
	return &PingProber{Count: count, Timeout: timeout}
}

// Probe pings the target through the interface. Binding to the interface
// matters: a reply over the default route would report the WAN healthy while
// the tunnel is dead.
func (p *PingProber) Probe(ctx context.Context, iface, target string) error {
	deadlineSec := int(p.Timeout / time.Second)
	if deadlineSec < 1 {
		deadlineSec = 1
	}

	cmd := exec.CommandContext(ctx, "ping",
		"-n", "-q",
		"-c", strconv.Itoa(p.Count),
		"-w", strconv.Itoa(deadlineSec),
		"-I", iface,
		target,
	)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s via %s: %v", common.ErrProbeFailed, target, iface, err)
	}
	return nil
}
