// Package supervise implements the tunnel supervision control loop for
// WG Sentinel.
//
// The supervisor samples two independent health signals every poll cycle:
//
//   - Protocol liveness: the age of the interface's most recent handshake.
//     A stale handshake catches credential and token expiry.
//   - Data-plane connectivity: a few echo probes through the interface.
//     A failed probe with a fresh handshake catches routing and firewall
//     breakage that leaves the tunnel cryptographically up but useless.
//
// Unhealthy cycles accumulate into a down-time budget; when the budget is
// exhausted the supervisor provisions fresh credentials and resynchronizes
// the running interface in place. The accumulator resets unconditionally
// after every recovery attempt, successful or not, so a broken provider is
// retried at most once per budget window instead of being hammered.
//
// No error terminates the loop; every failure is logged and the next poll
// proceeds. Only context cancellation stops the supervisor.
//
// # Concurrency
//
// The loop is single-threaded and blocking; polls never overlap and there is
// never more than one provisioning run in flight. The optional cron-driven
// refresh shares the recovery mutex, which is the one mutual-exclusion
// boundary guarding the config file, the tool's working copy, and the live
// interface state.
package supervise
