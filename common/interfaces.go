// Package common provides shared constants, types, and utilities
// used across WG Sentinel.
package common

import (
	"context"
	"time"
)

// HandshakeSource reports protocol-level liveness for a tunnel interface.
// The production implementation reads the host tunnel subsystem; tests use
// canned values.
type HandshakeSource interface {
	// LastHandshake returns the time of the most recent successful key
	// exchange on the interface. A zero time with nil error means the
	// interface exists but has never completed a handshake.
	LastHandshake(ctx context.Context, iface string) (time.Time, error)
}

// Prober checks data-plane connectivity through a tunnel interface.
type Prober interface {
	// Probe sends a small bounded number of echo probes over the interface
	// to the target address. A nil return means at least one probe came back.
	Probe(ctx context.Context, iface, target string) error
}

// TunnelReloader applies a configuration file to a running interface.
type TunnelReloader interface {
	// Sync reconfigures the running interface in place from the file at
	// configPath, without tearing the interface down.
	Sync(ctx context.Context, iface, configPath string) error
}

// ProvisionResult describes a completed provisioning run.
type ProvisionResult struct {
	// ProfileName is the display name given to the provisioned profile.
	ProfileName string
	// ConfigPath is where the tool wrote its tunnel config file.
	ConfigPath string
	// Artifacts lists every file published to the destination directories.
	Artifacts []string
}

// Provisioner obtains fresh tunnel credentials and publishes profile
// artifacts. The supervisor only ever sees this interface, so its recovery
// path can be tested with a fake that returns canned success or failure.
type Provisioner interface {
	Provision(ctx context.Context) (*ProvisionResult, error)
}

// Event kinds recorded in the supervision journal.
const (
	EventTransition = "transition"
	EventRecovery   = "recovery"
	EventProvision  = "provision"
)

// Event is one entry in the supervision journal.
type Event struct {
	ID     string
	At     time.Time
	Kind   string
	State  string
	Detail string
}

// Journal records supervision events for later inspection. Implementations
// must treat every call as best effort; the supervisor never lets a journal
// failure affect the control loop.
type Journal interface {
	Append(ev Event) error
	Recent(n int) ([]Event, error)
	Close() error
}

// Logger defines the interface for leveled logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
