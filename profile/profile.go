// Package profile implements the provisioned-profile data model.
// This file contains the Profile type and the tunnel-config parser.
package profile

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/curve25519"

	"github.com/wgsentinel/wg-sentinel/common"
)

// Profile holds the connection parameters extracted from a tunnel config
// file, together with the verbatim source it was parsed from.
type Profile struct {
	// Name is the display name the profile is published under.
	Name string
	// Source is the verbatim tunnel config the fields were parsed from.
	Source []byte

	// PrivateKey is the local interface private key (base64).
	PrivateKey string
	// Address is the local tunnel address. When the config carries a
	// comma-separated list, this is the first element.
	Address string
	// DNS are the tunnel DNS servers.
	DNS []string
	// PeerPublicKey is the remote peer's public key (base64).
	PeerPublicKey string
	// AllowedIPs are the ranges routed through the peer.
	AllowedIPs []string
	// Endpoint is the peer address as "host:port".
	Endpoint string
}

// Fields the parser requires, in the order they are reported when missing.
var requiredFields = []string{"PrivateKey", "Address", "DNS", "PublicKey", "AllowedIPs", "Endpoint"}

// Parse extracts the required connection parameters from a WireGuard tunnel
// config. The format is plain "Key = Value" lines; section headers and
// unrecognized keys are ignored. Every required field must be present;
// missing cryptographic material is an error, never defaulted.
func Parse(source []byte) (*Profile, error) {
	values := make(map[string]string)

	for _, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// First occurrence wins; a second [Peer] section never overrides
		// the first peer's values.
		if _, seen := values[key]; !seen && value != "" {
			values[key] = value
		}
	}

	for _, field := range requiredFields {
		if values[field] == "" {
			return nil, fmt.Errorf("%w: %s", common.ErrFieldMissing, field)
		}
	}

	addresses := common.SplitList(values["Address"])
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: Address", common.ErrFieldMissing)
	}

	p := &Profile{
		Source:        source,
		PrivateKey:    values["PrivateKey"],
		Address:       addresses[0],
		DNS:           common.SplitList(values["DNS"]),
		PeerPublicKey: values["PublicKey"],
		AllowedIPs:    common.SplitList(values["AllowedIPs"]),
		Endpoint:      values["Endpoint"],
	}

	if err := p.ValidateKeys(); err != nil {
		return nil, err
	}

	return p, nil
}

// ValidateKeys sanity-checks the profile's key material: both keys must be
// base64-encoded 32-byte values, and the private key must be usable for
// scalar multiplication. A key that fails here is corrupt credential
// material and must never be published.
func (p *Profile) ValidateKeys() error {
	priv, err := decodeKey(p.PrivateKey)
	if err != nil {
		return common.WrapError(err, "private key")
	}
	if _, err := curve25519.X25519(priv, curve25519.Basepoint); err != nil {
		return fmt.Errorf("%w: private key is not a valid curve25519 scalar", common.ErrInvalidKey)
	}

	if _, err := decodeKey(p.PeerPublicKey); err != nil {
		return common.WrapError(err, "peer public key")
	}

	return nil
}

// decodeKey decodes a base64 WireGuard key and checks its length.
func decodeKey(key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", common.ErrInvalidKey)
	}
	if len(raw) != curve25519.ScalarSize {
		return nil, fmt.Errorf("%w: decoded length %d, want %d", common.ErrInvalidKey, len(raw), curve25519.ScalarSize)
	}
	return raw, nil
}
