// Package provision obtains fresh tunnel credentials and publishes them.
// This file contains the Runner orchestrating a full provisioning pipeline
// and the command-backed Provisioner used when an external provisioner is
// configured.
package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
	"github.com/wgsentinel/wg-sentinel/config"
	"github.com/wgsentinel/wg-sentinel/profile"
)

// Runner is the built-in provisioner: it drives the credential tool and
// publishes the resulting profile. It implements common.Provisioner.
type Runner struct {
	cfg *config.Config

	// Pipeline stages, overridable in tests so a run can be exercised
	// without git, the network, or the real tool.
	sync func(ctx context.Context) error
	run  func(ctx context.Context) (string, error)
	wait func(ctx context.Context, path string) error
}

// New creates a provisioning runner for the given configuration.
func New(cfg *config.Config) *Runner {
	r := &Runner{cfg: cfg}
	r.sync = r.syncTool
	r.run = r.runTool
	r.wait = r.awaitConfig
	return r
}

// Provision performs one full provisioning run: sync the tool, run it, wait
// for its config file, parse and validate the fields, derive the display
// name, and publish the artifacts to every destination directory.
//
// Each run produces a fresh profile that supersedes the previous one; no
// artifact is ever merged or appended to.
func (r *Runner) Provision(ctx context.Context) (*common.ProvisionResult, error) {
	if err := r.sync(ctx); err != nil {
		return nil, err
	}

	output, err := r.run(ctx)
	if err != nil {
		return nil, err
	}

	configPath := r.cfg.ToolConfigPath()
	if err := r.wait(ctx, configPath); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(configPath)
	if err != nil {
		return nil, common.WrapError(err, "failed to read tool config")
	}

	p, err := profile.Parse(source)
	if err != nil {
		return nil, err
	}
	p.Name = deriveName(r.cfg.ProfileName, extractRegion(output))

	written, err := p.Publish(r.cfg.DestinationDirs, time.Now())
	if err != nil {
		return nil, err
	}

	common.LogInfo("Provisioned profile %q (%d artifacts)", p.Name, len(written))
	return &common.ProvisionResult{
		ProfileName: p.Name,
		ConfigPath:  configPath,
		Artifacts:   written,
	}, nil
}

// deriveName picks the profile display name: a fixed configured name wins,
// then the region token the tool reported, then the default. The result is
// always truncated to the host platform's length limit.
func deriveName(fixed, region string) string {
	switch {
	case fixed != "":
		return common.TruncateName(fixed, common.MaxDisplayNameLen)
	case region != "":
		return common.TruncateName(region, common.MaxDisplayNameLen)
	default:
		common.LogWarn("No region reported by the credential tool, using default profile name %q", common.DefaultProfileName)
		return common.DefaultProfileName
	}
}

// CommandProvisioner invokes an external provisioner command. It is used
// when the supervisor is configured with provisioner_command instead of the
// built-in pipeline, treating the provisioner as an opaque, possibly slow,
// possibly failing program.
type CommandProvisioner struct {
	// Argv is the command and its arguments.
	Argv []string
	// ConfigPath is where the command is expected to leave the tunnel
	// config on success.
	ConfigPath string
}

// Provision runs the external command and blocks until it exits. The child's
// lifetime is bound to ctx, so a dying supervisor cannot orphan it.
func (c *CommandProvisioner) Provision(ctx context.Context) (*common.ProvisionResult, error) {
	if len(c.Argv) == 0 {
		return nil, fmt.Errorf("%w: empty provisioner command", common.ErrToolRun)
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		common.LogDebug("provisioner: %s", string(output))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrToolRun, err)
	}

	return &common.ProvisionResult{ConfigPath: c.ConfigPath}, nil
}
