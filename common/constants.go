// Package common provides shared constants, types, and utilities
// used across WG Sentinel.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "WG Sentinel"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "wg-sentinel"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	LogFileName     = "wg-sentinel.log"
	JournalFileName = "journal.db"
)

// Default supervision parameters.
const (
	// DefaultPollInterval is how often the supervisor samples tunnel health.
	DefaultPollInterval = 60 * time.Second
	// DefaultHandshakeStaleness is the no-handshake age beyond which the
	// tunnel is classified as stale.
	DefaultHandshakeStaleness = 120 * time.Second
	// DefaultMaxDownTime is the cumulative down budget before recovery fires.
	DefaultMaxDownTime = 300 * time.Second
	// DefaultProbeTarget is the data-plane connectivity check address.
	DefaultProbeTarget = "1.1.1.1"
	// DefaultProbeCount is how many echo probes one connectivity check sends.
	DefaultProbeCount = 3
	// DefaultProbeTimeout is the per-check echo probe deadline.
	DefaultProbeTimeout = 5 * time.Second
)

// Default provisioning parameters.
const (
	// DefaultToolRepoURL is the upstream credential-exchange tool.
	DefaultToolRepoURL = "https://github.com/triffid/pia-wg.git"
	// DefaultToolCommand is the tool entry point inside its working copy.
	DefaultToolCommand = "pia-wg.sh"
	// DefaultToolConfigName is the config file the tool emits on success.
	DefaultToolConfigName = "pia.conf"
	// DefaultWaitAttempts bounds the wait for the tool's config file.
	DefaultWaitAttempts = 10
	// DefaultWaitDelay is the pause between config-file existence checks.
	DefaultWaitDelay = 2 * time.Second
	// DefaultProfileName is used when no fixed name is configured and no
	// region token could be discovered in the tool's output.
	DefaultProfileName = "pia"
	// MaxDisplayNameLen is the host platform's profile name limit.
	MaxDisplayNameLen = 10
	// PersistentKeepalive is the keepalive interval written into every
	// provisioned peer entry, in seconds.
	PersistentKeepalive = 20
)

// Profile artifact extensions. A provisioned profile is published as three
// sibling files sharing one base name.
const (
	ConfExt     = ".conf"
	ConnExt     = ".json"
	SettingsExt = ".settings"
)
