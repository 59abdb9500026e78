// Package common provides shared constants, types, utilities, and interfaces
// used throughout WG Sentinel.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like poll intervals, file names, and limits
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for the tunnel subsystem, probing, provisioning, and the journal
//   - Logger: Leveled logging with file rotation and multiple output destinations
//   - Utils: Common utility functions for file operations and string manipulation
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/wgsentinel/wg-sentinel/common"
//
//	// Use constants
//	interval := common.DefaultPollInterval
//
//	// Use logger
//	common.LogInfo("Supervising interface %s", ifaceName)
//
//	// Check errors
//	if errors.Is(err, common.ErrFieldMissing) {
//	    // Handle incomplete tool output
//	}
//
// # Design Principles
//
// The supervisor's core logic depends only on the small capability interfaces
// defined here (HandshakeSource, Prober, TunnelReloader, Provisioner, Journal),
// so it can be exercised in tests with canned implementations and no external
// processes.
package common
