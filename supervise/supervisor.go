// Package supervise implements the tunnel supervision control loop.
// This file contains the Supervisor and its health state machine.
package supervise

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/wgsentinel/wg-sentinel/common"
	"github.com/wgsentinel/wg-sentinel/config"
)

// Classification is the outcome of one health sample.
type Classification int

const (
	// Healthy: fresh handshake and the probe came back.
	Healthy Classification = iota
	// Stale: no handshake within the staleness window, or the handshake
	// state is unreadable. The connectivity probe is skipped.
	Stale
	// Unreachable: handshake is fresh but the data-plane probe failed.
	Unreachable
)

// String returns a human-readable representation of the classification.
func (c Classification) String() string {
	switch c {
	case Healthy:
		return "Healthy"
	case Stale:
		return "Stale"
	case Unreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// Deps are the capabilities the supervisor acts through. Every field is an
// interface so the loop can be exercised with canned implementations.
type Deps struct {
	Handshakes  common.HandshakeSource
	Prober      common.Prober
	Reloader    common.TunnelReloader
	Provisioner common.Provisioner
	Journal     common.Journal
}

// Supervisor is the never-ending tunnel health monitor with bounded,
// debounced, idempotent recovery.
type Supervisor struct {
	cfg  *config.Config
	deps Deps

	// recoveryMu serializes every provisioning run and reload. The control
	// loop itself is single-threaded; this guards against the optional
	// cron-scheduled refresh firing while a health-triggered recovery is in
	// flight.
	recoveryMu sync.Mutex

	// lastClass tracks the previous cycle's classification so transitions
	// can be journaled once instead of every poll.
	lastClass Classification

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a supervisor for the given configuration and capabilities.
// Nil Journal is replaced with a no-op implementation.
func New(cfg *config.Config, deps Deps) *Supervisor {
	if deps.Journal == nil {
		deps.Journal = NopJournal{}
	}
	return &Supervisor{
		cfg:       cfg,
		deps:      deps,
		lastClass: Healthy,
		now:       time.Now,
	}
}

// Run executes the control loop until ctx is cancelled. Cancellation is
// honored between cycles, never mid-probe. Run never returns a supervision
// error; every failure inside a cycle is logged and absorbed.
func (s *Supervisor) Run(ctx context.Context) error {
	common.LogInfo("Supervising %s: poll %v, staleness %v, down budget %v, probe target %s",
		s.cfg.Interface, s.cfg.PollInterval(), s.cfg.HandshakeStaleness(), s.cfg.MaxDownTime(), s.cfg.ProbeTarget)

	if s.cfg.RefreshSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(s.cfg.RefreshSchedule, func() { s.scheduledRefresh(ctx) })
		if err != nil {
			common.LogError("Invalid refresh schedule %q, scheduled refresh disabled: %v", s.cfg.RefreshSchedule, err)
		} else {
			common.LogInfo("Scheduled refresh enabled: %q", s.cfg.RefreshSchedule)
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	// The accumulator lives here, owned by the loop alone.
	var downTime time.Duration

	for {
		select {
		case <-ctx.Done():
			common.LogInfo("Supervisor stopping: %v", ctx.Err())
			return nil
		case <-ticker.C:
			downTime = s.cycle(ctx, downTime)
			common.GetLogger().CheckRotation()
		}
	}
}

// cycle performs one poll: classify health, update the accumulator, and
// trigger recovery when the budget is exhausted. It returns the new
// accumulator value. All the timing rules live here: the accumulator
// grows by exactly one poll interval per unhealthy cycle,
// resets to zero on any healthy cycle, and resets unconditionally after a
// recovery attempt.
func (s *Supervisor) cycle(ctx context.Context, downTime time.Duration) time.Duration {
	class := s.classify(ctx)

	if class != s.lastClass {
		common.LogInfo("Tunnel %s health changed: %s -> %s", s.cfg.Interface, s.lastClass, class)
		s.journal(common.EventTransition, class.String(), s.lastClass.String()+" -> "+class.String())
		s.lastClass = class
	}

	if class == Healthy {
		if downTime > 0 {
			common.LogInfo("Tunnel %s healthy again, clearing %v of accumulated down time", s.cfg.Interface, downTime)
		}
		return 0
	}

	downTime += s.cfg.PollInterval()
	common.LogWarn("Tunnel %s is %s (down %v of %v budget)", s.cfg.Interface, class, downTime, s.cfg.MaxDownTime())

	if downTime >= s.cfg.MaxDownTime() {
		s.recover(ctx)
		// Reset regardless of the recovery outcome, so the next attempt
		// is a full budget window away.
		return 0
	}

	return downTime
}

// classify samples both health signals. The connectivity probe runs only
// when the handshake is fresh; a stale tunnel is already known to be down
// and probing it just wastes the probe timeout.
func (s *Supervisor) classify(ctx context.Context) Classification {
	handshake, err := s.deps.Handshakes.LastHandshake(ctx, s.cfg.Interface)
	if err != nil {
		if errors.Is(err, common.ErrInterfaceMissing) {
			// Likely misconfiguration. Keep running anyway: a loop that
			// logs is more useful to a remote operator than one that exits.
			common.LogError("Cannot read handshake state (interface misconfigured?): %v", err)
		} else {
			common.LogWarn("Handshake query failed: %v", err)
		}
		return Stale
	}

	if handshake.IsZero() || s.now().Sub(handshake) > s.cfg.HandshakeStaleness() {
		return Stale
	}

	if err := s.deps.Prober.Probe(ctx, s.cfg.Interface, s.cfg.ProbeTarget); err != nil {
		common.LogWarn("Connectivity probe failed: %v", err)
		return Unreachable
	}

	return Healthy
}

// recover regenerates credentials and reloads the interface. Failures are
// logged, never propagated: the caller resets the accumulator either way.
func (s *Supervisor) recover(ctx context.Context) {
	common.LogWarn("Down budget exhausted on %s, regenerating credentials", s.cfg.Interface)
	s.provisionAndReload(ctx, common.EventRecovery)
}

// scheduledRefresh is the cron-driven proactive re-provision.
func (s *Supervisor) scheduledRefresh(ctx context.Context) {
	common.LogInfo("Scheduled refresh firing for %s", s.cfg.Interface)
	s.provisionAndReload(ctx, common.EventProvision)
}

// provisionAndReload runs the provisioner and, if the expected config file
// exists afterwards, synchronizes the running interface from it. The
// recovery mutex guarantees at most one provisioning run at a time.
func (s *Supervisor) provisionAndReload(ctx context.Context, kind string) {
	s.recoveryMu.Lock()
	defer s.recoveryMu.Unlock()

	result, err := s.deps.Provisioner.Provision(ctx)
	if err != nil {
		common.LogError("Provisioning failed: %v", err)
		s.journal(kind, "failed", err.Error())
		return
	}

	if result != nil && result.ProfileName != "" {
		common.LogInfo("Provisioned profile %q", result.ProfileName)
	}

	path := s.cfg.AppliedConfigPath
	if !common.FileExists(path) {
		common.LogError("Expected config file %s missing after provisioning, skipping reload", path)
		s.journal(kind, "no-config", path)
		return
	}

	if err := s.deps.Reloader.Sync(ctx, s.cfg.Interface, path); err != nil {
		common.LogError("Reload failed: %v", err)
		s.journal(kind, "reload-failed", err.Error())
		return
	}

	common.LogInfo("Interface %s resynchronized from %s", s.cfg.Interface, path)
	s.journal(kind, "ok", path)
}

// journal records an event, best effort. The control loop must never be
// affected by journal trouble.
func (s *Supervisor) journal(kind, state, detail string) {
	ev := common.Event{
		ID:     uuid.NewString(),
		At:     s.now(),
		Kind:   kind,
		State:  state,
		Detail: detail,
	}
	if err := s.deps.Journal.Append(ev); err != nil {
		common.LogDebug("Journal append failed: %v", err)
	}
}

// NopJournal discards every event. Used when the journal is disabled.
type NopJournal struct{}

func (NopJournal) Append(common.Event) error          { return nil }
func (NopJournal) Recent(int) ([]common.Event, error) { return nil, nil }
func (NopJournal) Close() error                       { return nil }
