// Package profile implements the provisioned-profile data model for
// WG Sentinel.
//
// This package covers the stateless text-to-structured-data half of
// provisioning:
//
//   - Parsing: extracting connection parameters from a WireGuard tunnel
//     config file (plain "Key = Value" lines)
//   - Validation: sanity-checking the extracted key material before it is
//     ever published
//   - Descriptors: building the structured connection and settings JSON
//     documents the host platform consumes
//   - Publishing: writing the three sibling artifacts (verbatim config copy,
//     connection descriptor, settings descriptor) to destination directories
//
// # Artifact Layout
//
// A published profile named "swiss" in destination directory D consists of:
//
//	D/swiss.conf      verbatim copy of the tool's tunnel config
//	D/swiss.json      connection descriptor (keys, addresses, peer)
//	D/swiss.settings  settings descriptor (routing flags, creation time)
//
// Each file is written to a temp file in D and renamed into place, so a
// crash never leaves a partially written file. The three files are still
// committed independently of each other.
//
// # Failure Policy
//
// Any required field missing from the source config aborts parsing with a
// field-specific error before anything is written. Cryptographic material is
// never substituted with a default.
package profile
