// Package config provides configuration management for WG Sentinel.
// It handles loading, saving, and validating settings for both the
// provisioner and the supervisor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/wgsentinel/wg-sentinel/common"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. WG_SENTINEL_INTERFACE, WG_SENTINEL_PROBE_TARGET.
const envPrefix = "WG_SENTINEL"

// Config represents the application configuration.
// Values are loaded from a YAML file and may be overridden per field through
// WG_SENTINEL_* environment variables, which is how appliance deployments
// usually inject site-specific settings.
type Config struct {
	// Interface is the WireGuard interface being supervised.
	Interface string `yaml:"interface" envconfig:"INTERFACE"`
	// PollIntervalSec is how often the supervisor samples tunnel health.
	PollIntervalSec int `yaml:"poll_interval_seconds" envconfig:"POLL_INTERVAL_SECONDS"`
	// HandshakeStalenessSec is the handshake age beyond which the tunnel
	// counts as stale.
	HandshakeStalenessSec int `yaml:"handshake_staleness_seconds" envconfig:"HANDSHAKE_STALENESS_SECONDS"`
	// MaxDownTimeSec is the cumulative down budget before recovery fires.
	MaxDownTimeSec int `yaml:"max_down_time_seconds" envconfig:"MAX_DOWN_TIME_SECONDS"`
	// ProbeTarget is the address pinged through the tunnel for the
	// data-plane check.
	ProbeTarget string `yaml:"probe_target" envconfig:"PROBE_TARGET"`
	// ProbeCount is how many echo probes one connectivity check sends.
	ProbeCount int `yaml:"probe_count" envconfig:"PROBE_COUNT"`
	// ProbeTimeoutSec is the per-check echo probe deadline.
	ProbeTimeoutSec int `yaml:"probe_timeout_seconds" envconfig:"PROBE_TIMEOUT_SECONDS"`

	// ProvisionerCommand optionally replaces the built-in provisioner with
	// an external command (argv form). Empty means provision in-process.
	ProvisionerCommand []string `yaml:"provisioner_command,omitempty" envconfig:"PROVISIONER_COMMAND"`
	// AppliedConfigPath is the file the running interface is resynchronized
	// from after a recovery. Defaults to the tool's own output path.
	AppliedConfigPath string `yaml:"applied_config_path,omitempty" envconfig:"APPLIED_CONFIG_PATH"`

	// ToolRepoURL is the git repository of the credential-exchange tool.
	ToolRepoURL string `yaml:"tool_repo_url" envconfig:"TOOL_REPO_URL"`
	// ToolDir is the tool's working copy location.
	ToolDir string `yaml:"tool_dir,omitempty" envconfig:"TOOL_DIR"`
	// ToolCommand is the tool entry point, relative to ToolDir.
	ToolCommand string `yaml:"tool_command" envconfig:"TOOL_COMMAND"`
	// ToolArgs are passed to the tool; the defaults request
	// force-regenerate plus create-new-connection.
	ToolArgs []string `yaml:"tool_args" envconfig:"TOOL_ARGS"`
	// ToolConfigName is the config file the tool emits inside ToolDir.
	ToolConfigName string `yaml:"tool_config_name" envconfig:"TOOL_CONFIG_NAME"`
	// WaitAttempts bounds the wait for the tool's config file.
	WaitAttempts int `yaml:"wait_attempts" envconfig:"WAIT_ATTEMPTS"`
	// WaitDelaySec is the pause between config-file checks.
	WaitDelaySec int `yaml:"wait_delay_seconds" envconfig:"WAIT_DELAY_SECONDS"`

	// DestinationDirs receive the published profile artifacts.
	DestinationDirs []string `yaml:"destination_dirs" envconfig:"DESTINATION_DIRS"`
	// ProfileName fixes the profile display name. Empty means derive it
	// from the region the tool reports, falling back to the default.
	ProfileName string `yaml:"profile_name,omitempty" envconfig:"PROFILE_NAME"`

	// RefreshSchedule is an optional cron expression for proactive
	// re-provisioning during supervision (e.g. "0 4 * * *").
	RefreshSchedule string `yaml:"refresh_schedule,omitempty" envconfig:"REFRESH_SCHEDULE"`

	// EnableJournal controls the SQLite supervision journal.
	EnableJournal bool `yaml:"enable_journal" envconfig:"ENABLE_JOURNAL"`
	// JournalPath is the journal database location. Empty selects the
	// per-user config directory.
	JournalPath string `yaml:"journal_path,omitempty" envconfig:"JOURNAL_PATH"`

	// LogToFile enables the rotating log file in addition to stdout.
	LogToFile bool `yaml:"log_to_file" envconfig:"LOG_TO_FILE"`
	// LogDir is the log file directory. Empty selects the per-user config
	// directory.
	LogDir string `yaml:"log_dir,omitempty" envconfig:"LOG_DIR"`
}

// DefaultConfig returns the default configuration.
// These are sensible defaults for a gateway with a single tunnel.
func DefaultConfig() *Config {
	return &Config{
		Interface:             "wg0",
		PollIntervalSec:       int(common.DefaultPollInterval / time.Second),
		HandshakeStalenessSec: int(common.DefaultHandshakeStaleness / time.Second),
		MaxDownTimeSec:        int(common.DefaultMaxDownTime / time.Second),
		ProbeTarget:           common.DefaultProbeTarget,
		ProbeCount:            common.DefaultProbeCount,
		ProbeTimeoutSec:       int(common.DefaultProbeTimeout / time.Second),
		ToolRepoURL:           common.DefaultToolRepoURL,
		ToolCommand:           common.DefaultToolCommand,
		ToolArgs:              []string{"-r", "-n"},
		ToolConfigName:        common.DefaultToolConfigName,
		WaitAttempts:          common.DefaultWaitAttempts,
		WaitDelaySec:          int(common.DefaultWaitDelay / time.Second),
		EnableJournal:         true,
		LogToFile:             true,
	}
}

// Load loads the configuration from the given path. An empty path selects
// the default location; a missing file there is not an error and yields the
// defaults. Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		configDir, err := common.GetConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, common.ConfigFileName)
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true) // Strict validation: reject unknown fields

		if err := decoder.Decode(cfg); err != nil {
			return nil, common.WrapError(err, "error parsing configuration")
		}
	case os.IsNotExist(err) && !explicit:
		// No config file yet, run on defaults.
	default:
		return nil, common.WrapError(err, "error opening configuration")
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, common.WrapError(err, "error applying environment overrides")
	}

	if err := cfg.validate(); err != nil {
		return nil, common.WrapError(err, "invalid configuration")
	}

	return cfg, nil
}

// validate verifies configuration values, falling back to defaults for
// recoverable mistakes and erroring only on values that cannot be guessed.
func (c *Config) validate() error {
	def := DefaultConfig()

	if c.Interface == "" {
		return fmt.Errorf("%w: interface must not be empty", common.ErrInvalidConfig)
	}

	if c.PollIntervalSec <= 0 {
		common.LogWarn("Invalid poll interval %d, using default %d", c.PollIntervalSec, def.PollIntervalSec)
		c.PollIntervalSec = def.PollIntervalSec
	}
	if c.HandshakeStalenessSec <= 0 {
		common.LogWarn("Invalid handshake staleness %d, using default %d", c.HandshakeStalenessSec, def.HandshakeStalenessSec)
		c.HandshakeStalenessSec = def.HandshakeStalenessSec
	}
	if c.MaxDownTimeSec <= 0 {
		common.LogWarn("Invalid max down time %d, using default %d", c.MaxDownTimeSec, def.MaxDownTimeSec)
		c.MaxDownTimeSec = def.MaxDownTimeSec
	}
	if c.ProbeCount <= 0 {
		c.ProbeCount = def.ProbeCount
	}
	if c.ProbeTimeoutSec <= 0 {
		c.ProbeTimeoutSec = def.ProbeTimeoutSec
	}
	if c.WaitAttempts <= 0 {
		c.WaitAttempts = def.WaitAttempts
	}
	if c.WaitDelaySec <= 0 {
		c.WaitDelaySec = def.WaitDelaySec
	}
	if c.ProbeTarget == "" {
		c.ProbeTarget = def.ProbeTarget
	}
	if c.ToolRepoURL == "" {
		c.ToolRepoURL = def.ToolRepoURL
	}
	if c.ToolCommand == "" {
		c.ToolCommand = def.ToolCommand
	}
	if c.ToolConfigName == "" {
		c.ToolConfigName = def.ToolConfigName
	}
	if len(c.ToolArgs) == 0 {
		c.ToolArgs = def.ToolArgs
	}

	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	if c.ToolDir == "" {
		c.ToolDir = filepath.Join(configDir, "pia-wg")
	}
	if len(c.DestinationDirs) == 0 {
		c.DestinationDirs = []string{filepath.Join(configDir, "profiles")}
	}
	if c.AppliedConfigPath == "" {
		c.AppliedConfigPath = filepath.Join(c.ToolDir, c.ToolConfigName)
	}
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(configDir, common.JournalFileName)
	}

	return nil
}

// Save saves the configuration to the given path, creating parent
// directories as needed. An empty path selects the default location.
func (c *Config) Save(path string) error {
	if path == "" {
		configDir, err := common.GetConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(configDir, common.ConfigFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return common.WrapError(err, "error creating config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(err, "error serializing configuration")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return common.WrapError(err, "error saving configuration")
	}

	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// HandshakeStaleness returns the staleness threshold as a duration.
func (c *Config) HandshakeStaleness() time.Duration {
	return time.Duration(c.HandshakeStalenessSec) * time.Second
}

// MaxDownTime returns the down budget as a duration.
func (c *Config) MaxDownTime() time.Duration {
	return time.Duration(c.MaxDownTimeSec) * time.Second
}

// ProbeTimeout returns the probe deadline as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// WaitDelay returns the config-file wait delay as a duration.
func (c *Config) WaitDelay() time.Duration {
	return time.Duration(c.WaitDelaySec) * time.Second
}

// ToolConfigPath returns where the credential tool writes its config file.
func (c *Config) ToolConfigPath() string {
	return filepath.Join(c.ToolDir, c.ToolConfigName)
}
