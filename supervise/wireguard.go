// Package supervise implements the tunnel supervision control loop.
// This file contains the host tunnel subsystem adapter, backed by the wg(8)
// command line tool.
package supervise

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
)

// WG adapts the wg(8) tool to the supervisor's capability interfaces. It
// implements both common.HandshakeSource and common.TunnelReloader.
type WG struct{}

// LastHandshake reads the most recent successful key exchange on the
// interface via "wg show <iface> latest-handshakes". A zero time with nil
// error means the interface exists but no peer has ever completed a
// handshake.
func (WG) LastHandshake(ctx context.Context, iface string) (time.Time, error) {
	cmd := exec.CommandContext(ctx, "wg", "show", iface, "latest-handshakes")
	output, err := cmd.Output()
	if err != nil {
		// wg exits non-zero both for a missing interface and for
		// permission problems; either way the tunnel state is unreadable.
		return time.Time{}, fmt.Errorf("%w: %s: %v", common.ErrInterfaceMissing, iface, err)
	}

	return parseLatestHandshakes(string(output))
}

// parseLatestHandshakes extracts the newest handshake epoch from wg's
// "latest-handshakes" output, one "<peer-key>\t<epoch-seconds>" line per
// peer. Epoch 0 means no handshake yet.
func parseLatestHandshakes(output string) (time.Time, error) {
	var newest int64

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		epochField := fields[len(fields)-1]

		epoch, err := strconv.ParseInt(epochField, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: unparseable handshake line %q", common.ErrNoHandshake, line)
		}
		if epoch > newest {
			newest = epoch
		}
	}

	if newest == 0 {
		return time.Time{}, nil
	}
	return time.Unix(newest, 0), nil
}

// Sync resynchronizes the running interface's configuration from the file at
// configPath via "wg syncconf". This reconfigures in place: peers are
// replaced without tearing the interface down, so addresses, routes, and
// unrelated interface state survive the reload.
func (WG) Sync(ctx context.Context, iface, configPath string) error {
	cmd := exec.CommandContext(ctx, "wg", "syncconf", iface, configPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		return fmt.Errorf("%w: %s: %v (%s)", common.ErrReloadFailed, iface, err, detail)
	}
	return nil
}
