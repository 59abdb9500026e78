// Package provision obtains fresh tunnel credentials from the upstream
// credential-exchange tool and publishes them as a profile.
//
// A provisioning run is a straight pipeline:
//
//  1. Sync the tool's git working copy (clone if absent, otherwise fetch and
//     hard-reset; the tool is read-only infrastructure, local edits are
//     discarded)
//  2. Run the tool with its force-regenerate and create-new flags
//  3. Wait, with a bounded number of attempts, for the tool's config file
//  4. Parse and validate the connection parameters
//  5. Publish the profile artifacts to every destination directory
//
// The run is finite and fails fast: any missing precondition aborts with a
// typed error so the scheduler or operator waiting on the exit code can tell
// which step failed. The Supervisor consumes this package only through the
// common.Provisioner interface and treats a failed run as a logged,
// non-fatal event.
package provision
