package profile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPublish(t *testing.T) {
	p := testProfile(t)
	dirA := t.TempDir()
	dirB := t.TempDir()
	created := time.Now()

	written, err := p.Publish([]string{dirA, dirB}, created)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(written) != 6 {
		t.Fatalf("Publish() wrote %d files, want 3 per directory", len(written))
	}

	for _, dir := range []string{dirA, dirB} {
		confData, err := os.ReadFile(filepath.Join(dir, "swiss.conf"))
		if err != nil {
			t.Fatalf("reading config copy: %v", err)
		}
		if !bytes.Equal(confData, p.Source) {
			t.Error("config copy should be byte-identical to the source")
		}

		var conn ConnectionDescriptor
		connData, err := os.ReadFile(filepath.Join(dir, "swiss.json"))
		if err != nil {
			t.Fatalf("reading connection descriptor: %v", err)
		}
		if err := json.Unmarshal(connData, &conn); err != nil {
			t.Fatalf("connection descriptor is not valid JSON: %v", err)
		}
		if conn.PrivateKey != p.PrivateKey {
			t.Error("connection descriptor key material should match the profile")
		}

		var settings SettingsDescriptor
		settingsData, err := os.ReadFile(filepath.Join(dir, "swiss.settings"))
		if err != nil {
			t.Fatalf("reading settings descriptor: %v", err)
		}
		if err := json.Unmarshal(settingsData, &settings); err != nil {
			t.Fatalf("settings descriptor is not valid JSON: %v", err)
		}
		if settings.DisplayName != p.Name {
			t.Error("settings descriptor display name should match the profile")
		}
	}
}

func TestPublish_Idempotent(t *testing.T) {
	p := testProfile(t)
	dir := t.TempDir()
	created := time.Now()

	if _, err := p.Publish([]string{dir}, created); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}

	first := readAll(t, dir)

	if _, err := p.Publish([]string{dir}, created); err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}

	second := readAll(t, dir)

	if len(second) != len(first) {
		t.Fatalf("second publish produced %d files, want %d (overwrite, never append)", len(second), len(first))
	}
	for name, data := range first {
		if !bytes.Equal(second[name], data) {
			t.Errorf("artifact %s changed between identical publishes", name)
		}
	}
}

func TestPublish_NoStrayTempFiles(t *testing.T) {
	p := testProfile(t)
	dir := t.TempDir()

	if _, err := p.Publish([]string{dir}, time.Now()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		for _, e := range entries {
			t.Logf("found: %s", e.Name())
		}
		t.Errorf("destination has %d entries, want exactly the 3 artifacts", len(entries))
	}
}

func readAll(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		files[e.Name()] = data
	}
	return files
}
