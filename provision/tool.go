// Package provision obtains fresh tunnel credentials and publishes them.
// This file contains the credential tool working-copy sync, invocation, and
// the bounded wait for its output file.
package provision

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/wgsentinel/wg-sentinel/common"
)

// syncTool ensures the credential tool's working copy exists and matches
// upstream. If absent it is cloned; if present it is fetched and hard-reset,
// discarding any local modifications. The tool is infrastructure we consume,
// never something we patch in place.
func (r *Runner) syncTool(ctx context.Context) error {
	gitDir := filepath.Join(r.cfg.ToolDir, ".git")

	if !common.FileExists(gitDir) {
		common.LogInfo("Cloning credential tool from %s", r.cfg.ToolRepoURL)
		if err := r.git(ctx, "clone", r.cfg.ToolRepoURL, r.cfg.ToolDir); err != nil {
			return fmt.Errorf("%w: clone: %v", common.ErrToolSync, err)
		}
		return nil
	}

	common.LogDebug("Updating credential tool working copy at %s", r.cfg.ToolDir)
	if err := r.git(ctx, "-C", r.cfg.ToolDir, "fetch", "--prune", "origin"); err != nil {
		return fmt.Errorf("%w: fetch: %v", common.ErrToolSync, err)
	}
	if err := r.git(ctx, "-C", r.cfg.ToolDir, "reset", "--hard", "origin/HEAD"); err != nil {
		return fmt.Errorf("%w: reset: %v", common.ErrToolSync, err)
	}
	return nil
}

// git runs one git command, logging its output at debug level.
func (r *Runner) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		common.LogDebug("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	return err
}

// runTool invokes the credential tool with the configured flags and returns
// its combined output. Every output line is streamed to the log as it
// arrives, since the tool can sit in its own retry loop toward the provider
// for a while.
func (r *Runner) runTool(ctx context.Context) (string, error) {
	toolPath := filepath.Join(r.cfg.ToolDir, r.cfg.ToolCommand)
	if !common.FileExists(toolPath) {
		return "", fmt.Errorf("%w: tool command %s not found", common.ErrToolRun, toolPath)
	}

	cmd := exec.CommandContext(ctx, toolPath, r.cfg.ToolArgs...)
	cmd.Dir = r.cfg.ToolDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrToolRun, err)
	}
	cmd.Stderr = cmd.Stdout

	common.LogInfo("Running credential tool: %s %s", toolPath, strings.Join(r.cfg.ToolArgs, " "))
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrToolRun, err)
	}

	var output strings.Builder
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		common.LogDebug("tool: %s", line)
		output.WriteString(line)
		output.WriteByte('\n')
	}

	if err := cmd.Wait(); err != nil {
		return output.String(), fmt.Errorf("%w: %v", common.ErrToolRun, err)
	}
	return output.String(), nil
}

// awaitConfig waits for the tool's config file to materialize, with a capped
// number of attempts rather than an unbounded block.
func (r *Runner) awaitConfig(ctx context.Context, path string) error {
	attempts := r.cfg.WaitAttempts

	check := func() error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			return fmt.Errorf("config file %s is empty", path)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.cfg.WaitDelay()), uint64(attempts-1)),
		ctx,
	)

	if err := backoff.Retry(check, policy); err != nil {
		return fmt.Errorf("%w: %s after %d attempts", common.ErrConfigTimeout, path, attempts)
	}
	return nil
}

// regionPattern matches the region/location token the tool reports while it
// negotiates with the provider, e.g. "using region: zurich" or
// "Region=CA Montreal".
var regionPattern = regexp.MustCompile(`(?i)\bregion\b[^A-Za-z0-9]+([A-Za-z0-9_-]+)`)

// extractRegion scans tool output for a region token. Returns "" when the
// tool never named one.
func extractRegion(output string) string {
	match := regionPattern.FindStringSubmatch(output)
	if match == nil {
		return ""
	}
	return match[1]
}
