// Package cli provides command-line interface functionality for WG Sentinel.
// This covers one-shot inspection commands; the long-running supervision
// loop lives in the supervise package.
package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
	"github.com/wgsentinel/wg-sentinel/config"
)

// CLI represents the command-line interface.
type CLI struct {
	cfg        *config.Config
	handshakes common.HandshakeSource
	journal    common.Journal
}

// New creates a new CLI instance. The journal may be nil when journaling is
// disabled.
func New(cfg *config.Config, handshakes common.HandshakeSource, journal common.Journal) *CLI {
	return &CLI{
		cfg:        cfg,
		handshakes: handshakes,
		journal:    journal,
	}
}

// Status prints the current tunnel state and the most recent journal
// entries.
func (c *CLI) Status(ctx context.Context) error {
	fmt.Printf("Interface: %s\n", c.cfg.Interface)

	hs, err := c.handshakes.LastHandshake(ctx, c.cfg.Interface)
	switch {
	case err != nil:
		fmt.Printf("Handshake: unavailable (%v)\n", err)
	case hs.IsZero():
		fmt.Println("Handshake: never")
	default:
		age := time.Since(hs)
		state := "fresh"
		if age > c.cfg.HandshakeStaleness() {
			state = "stale"
		}
		fmt.Printf("Handshake: %s ago (%s)\n", formatDuration(age), state)
	}

	if c.journal == nil {
		fmt.Println("\nJournal disabled.")
		return nil
	}

	fmt.Println()
	return c.History(20)
}

// History prints up to n journal events, newest first.
func (c *CLI) History(n int) error {
	if c.journal == nil {
		fmt.Println("Journal disabled.")
		return nil
	}

	events, err := c.journal.Recent(n)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No supervision events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tSTATE\tDETAIL")
	fmt.Fprintln(w, "----\t----\t-----\t------")

	for _, ev := range events {
		detail := ev.Detail
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ev.At.Local().Format("2006-01-02 15:04:05"), ev.Kind, ev.State, detail)
	}

	w.Flush()
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`WG Sentinel - WireGuard tunnel keeper

Usage:
  wg-sentinel [OPTIONS]

Options:
  --supervise       Run the supervision loop (default when no command given)
  --provision       Provision fresh credentials and publish profiles, then exit
  --status          Show tunnel state and recent supervision events
  --history N       Show the last N supervision events
  --config PATH     Use an explicit configuration file
  --verbose         Enable verbose logging
  --version         Show version and exit
  --help            Show this help message

Examples:
  wg-sentinel --provision
  wg-sentinel --supervise --verbose
  wg-sentinel --status
  wg-sentinel --history 50

Notes:
  - Supervision requires the wg and ping tools on PATH
  - Provisioning additionally requires git`)
}
