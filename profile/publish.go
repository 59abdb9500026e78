// Package profile implements the provisioned-profile data model.
// This file contains artifact publishing.
package profile

import (
	"os"
	"path/filepath"
	"time"

	"github.com/wgsentinel/wg-sentinel/common"
)

// Publish writes the profile's three artifacts into every destination
// directory: the verbatim config copy, the connection descriptor, and the
// settings descriptor. Existing artifacts are overwritten wholesale: a new
// profile supersedes the old one, it is never merged into it.
//
// Returns the full paths of every file written.
func (p *Profile) Publish(dirs []string, created time.Time) ([]string, error) {
	connData, err := MarshalDescriptor(p.Connection())
	if err != nil {
		return nil, common.WrapError(err, "failed to encode connection descriptor")
	}
	settingsData, err := MarshalDescriptor(p.Settings(created))
	if err != nil {
		return nil, common.WrapError(err, "failed to encode settings descriptor")
	}

	var written []string
	for _, dir := range dirs {
		if err := common.EnsureDir(dir); err != nil {
			return written, common.WrapError(err, "failed to create destination directory")
		}

		artifacts := []struct {
			path string
			data []byte
		}{
			{filepath.Join(dir, p.Name+common.ConfExt), p.Source},
			{filepath.Join(dir, p.Name+common.ConnExt), connData},
			{filepath.Join(dir, p.Name+common.SettingsExt), settingsData},
		}

		for _, a := range artifacts {
			if err := writeFileAtomic(a.path, a.data); err != nil {
				return written, common.WrapError(err, "failed to write "+a.path)
			}
			written = append(written, a.path)
		}
	}

	return written, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash mid-write never leaves a torn file.
// Profiles carry private keys, hence the restrictive mode.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
