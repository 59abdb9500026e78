// Package main provides the entry point for WG Sentinel.
// WG Sentinel keeps a site-to-site WireGuard tunnel alive: it provisions
// credentials through an external tool, publishes profile artifacts, and
// supervises the running tunnel, recovering it when it goes dark.
//
// Features:
//   - Credential provisioning via a git-synced external tool
//   - Profile artifact publication for appliance consumption
//   - Handshake and data-plane health monitoring
//   - Bounded down-time budget with automatic recovery
//   - SQLite journal of supervision events
//
// Usage:
//
//	wg-sentinel [options]
//
// Environment:
//
//	Supervision requires the wg and ping tools; provisioning with the
//	built-in pipeline additionally requires git.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/wgsentinel/wg-sentinel/cli"
	"github.com/wgsentinel/wg-sentinel/common"
	"github.com/wgsentinel/wg-sentinel/config"
	"github.com/wgsentinel/wg-sentinel/history"
	"github.com/wgsentinel/wg-sentinel/provision"
	"github.com/wgsentinel/wg-sentinel/supervise"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configPath  = flag.String("config", "", "Path to configuration file")

	// Command flags
	runProvision = flag.Bool("provision", false, "Provision fresh credentials and publish profiles, then exit")
	runSupervise = flag.Bool("supervise", false, "Run the supervision loop")
	showStatus   = flag.Bool("status", false, "Show tunnel state and recent supervision events")
	showHistory  = flag.Int("history", 0, "Show the last N supervision events")
)

// Exit codes for provisioning failures, distinguishable by wrapping
// scripts.
const (
	exitGeneric       = 1
	exitToolSync      = 2
	exitConfigTimeout = 3
	exitBadConfig     = 4
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitGeneric)
	}

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: cfg.LogToFile,
		LogDir:     cfg.LogDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	switch {
	case *runProvision:
		os.Exit(doProvision(ctx, cfg))
	case *showStatus:
		os.Exit(doStatus(ctx, cfg, 0))
	case *showHistory > 0:
		os.Exit(doStatus(ctx, cfg, *showHistory))
	case *runSupervise:
		os.Exit(doSupervise(ctx, cfg))
	default:
		// Supervision is the default mode when no command is given.
		os.Exit(doSupervise(ctx, cfg))
	}
}

// doProvision runs one provisioning cycle and maps its failure class to an
// exit code.
func doProvision(ctx context.Context, cfg *config.Config) int {
	if err := checkTools("git"); err != nil {
		common.LogError("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitGeneric
	}

	result, err := newProvisioner(cfg).Provision(ctx)
	if err != nil {
		common.LogError("Provisioning failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, common.ErrToolSync):
			return exitToolSync
		case errors.Is(err, common.ErrConfigTimeout):
			return exitConfigTimeout
		case errors.Is(err, common.ErrFieldMissing), errors.Is(err, common.ErrInvalidKey):
			return exitBadConfig
		default:
			return exitGeneric
		}
	}

	fmt.Printf("Provisioned profile %q\n", result.ProfileName)
	for _, path := range result.Artifacts {
		fmt.Printf("  %s\n", path)
	}
	return 0
}

// doSupervise runs the supervision loop until a shutdown signal arrives.
func doSupervise(ctx context.Context, cfg *config.Config) int {
	if err := checkTools("wg", "ping"); err != nil {
		common.LogError("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitGeneric
	}

	journal := openJournal(cfg)
	if journal != nil {
		defer journal.Close()
	}

	sup := supervise.New(cfg, supervise.Deps{
		Handshakes:  supervise.WG{},
		Prober:      supervise.NewPingProber(cfg.ProbeCount, cfg.ProbeTimeout()),
		Reloader:    supervise.WG{},
		Provisioner: newProvisioner(cfg),
		Journal:     journal,
	})

	if err := sup.Run(ctx); err != nil {
		common.LogError("Supervisor stopped: %v", err)
		return exitGeneric
	}
	return 0
}

// doStatus prints tunnel and journal state. n > 0 selects history-only mode.
func doStatus(ctx context.Context, cfg *config.Config, n int) int {
	journal := openJournal(cfg)
	if journal != nil {
		defer journal.Close()
	}

	app := cli.New(cfg, supervise.WG{}, journal)

	var err error
	if n > 0 {
		err = app.History(n)
	} else {
		err = app.Status(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitGeneric
	}
	return 0
}

// newProvisioner selects the external provisioner command when one is
// configured, otherwise the built-in tool pipeline.
func newProvisioner(cfg *config.Config) common.Provisioner {
	if len(cfg.ProvisionerCommand) > 0 {
		return &provision.CommandProvisioner{
			Argv:       cfg.ProvisionerCommand,
			ConfigPath: cfg.AppliedConfigPath,
		}
	}
	return provision.New(cfg)
}

// openJournal opens the SQLite journal when enabled. A journal failure is
// never fatal; supervision runs without one.
func openJournal(cfg *config.Config) common.Journal {
	if !cfg.EnableJournal {
		return nil
	}

	journal, err := history.Open(cfg.JournalPath)
	if err != nil {
		common.LogWarn("Could not open journal at %s, continuing without: %v", cfg.JournalPath, err)
		return nil
	}
	return journal
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context so the supervision loop
// can stop between cycles.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}

// checkTools verifies that the named external tools are available on PATH.
func checkTools(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("required tool %q not found on PATH", name)
		}
	}
	return nil
}
