// Package profile implements the provisioned-profile data model.
// This file contains the structured descriptors the host platform consumes.
package profile

import (
	"encoding/json"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
)

// PeerDescriptor is one peer entry in the connection descriptor.
type PeerDescriptor struct {
	PersistentKeepalive int      `json:"persistentKeepalive"`
	PublicKey           string   `json:"publicKey"`
	AllowedIPs          []string `json:"allowedIPs"`
	Endpoint            string   `json:"endpoint"`
}

// ConnectionDescriptor is the structured connection document published
// alongside the verbatim config copy.
type ConnectionDescriptor struct {
	PrivateKey string           `json:"privateKey"`
	Addresses  []string         `json:"addresses"`
	DNS        []string         `json:"dns"`
	Peers      []PeerDescriptor `json:"peers"`
}

// SettingsDescriptor is the structured settings document carrying the host
// platform's routing flags and the profile identity.
type SettingsDescriptor struct {
	ServerSubnets        []string `json:"serverSubnets"`
	OverrideDefaultRoute bool     `json:"overrideDefaultRoute"`
	RouteDNS             bool     `json:"routeDNS"`
	StrictVPN            bool     `json:"strictVPN"`
	CreatedDate          float64  `json:"createdDate"`
	DisplayName          string   `json:"displayName"`
	Subtype              string   `json:"subtype"`
}

// Connection builds the connection descriptor for the profile. Exactly one
// peer entry is emitted, with the fixed keepalive interval.
func (p *Profile) Connection() ConnectionDescriptor {
	return ConnectionDescriptor{
		PrivateKey: p.PrivateKey,
		Addresses:  []string{p.Address},
		DNS:        p.DNS,
		Peers: []PeerDescriptor{
			{
				PersistentKeepalive: common.PersistentKeepalive,
				PublicKey:           p.PeerPublicKey,
				AllowedIPs:          p.AllowedIPs,
				Endpoint:            p.Endpoint,
			},
		},
	}
}

// Settings builds the settings descriptor for the profile at the given
// creation time. The routing flags are fixed: the tunnel owns the default
// route, DNS, and the kill switch.
func (p *Profile) Settings(created time.Time) SettingsDescriptor {
	return SettingsDescriptor{
		ServerSubnets:        []string{},
		OverrideDefaultRoute: true,
		RouteDNS:             true,
		StrictVPN:            true,
		CreatedDate:          float64(created.UnixMilli()) / 1000.0,
		DisplayName:          p.Name,
		Subtype:              "wireguard",
	}
}

// MarshalDescriptor renders a descriptor as indented JSON with a trailing
// newline, the form the host platform's own tools write.
func MarshalDescriptor(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
