package supervise

import (
	"errors"
	"testing"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
)

func TestParseLatestHandshakes(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected time.Time
	}{
		{
			name:     "single peer",
			output:   "hQ1yCTJkF0vC2u9DkG8mC0oXgJmJcTzT6d0y3cLkR2c=\t1756600000\n",
			expected: time.Unix(1756600000, 0),
		},
		{
			name: "multiple peers takes newest",
			output: "peerA=\t1756600000\n" +
				"peerB=\t1756609999\n" +
				"peerC=\t1756500000\n",
			expected: time.Unix(1756609999, 0),
		},
		{
			name:     "zero epoch means never",
			output:   "hQ1yCTJkF0vC2u9DkG8mC0oXgJmJcTzT6d0y3cLkR2c=\t0\n",
			expected: time.Time{},
		},
		{
			name:     "empty output",
			output:   "",
			expected: time.Time{},
		},
		{
			name: "blank lines ignored",
			output: "\n" +
				"peerA=\t1756600000\n" +
				"\n",
			expected: time.Unix(1756600000, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLatestHandshakes(tt.output)
			if err != nil {
				t.Fatalf("parseLatestHandshakes() error = %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("parseLatestHandshakes() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLatestHandshakes_Garbage(t *testing.T) {
	_, err := parseLatestHandshakes("peerA=\tnot-a-number\n")
	if !errors.Is(err, common.ErrNoHandshake) {
		t.Errorf("parseLatestHandshakes() error = %v, want ErrNoHandshake", err)
	}
}

func TestNewPingProber_Defaults(t *testing.T) {
	p := NewPingProber(0, 0)
	if p.Count != common.DefaultProbeCount {
		t.Errorf("Count = %d, want default %d", p.Count, common.DefaultProbeCount)
	}
	if p.Timeout != common.DefaultProbeTimeout {
		t.Errorf("Timeout = %v, want default %v", p.Timeout, common.DefaultProbeTimeout)
	}

	p = NewPingProber(5, 8*time.Second)
	if p.Count != 5 || p.Timeout != 8*time.Second {
		t.Errorf("NewPingProber(5, 8s) = %+v, explicit values must win", p)
	}
}
