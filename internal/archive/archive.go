// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package archive bundles the vault files into a portable, compressed
// snapshot for backup and machine-to-machine transfer. The snapshot is a
// zstd-compressed tar stream holding the server metadata and the encrypted
// vault blob; passwords never leave the archive in plaintext because only
// the already-encrypted blob is packed.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/veygo/sshvault/internal/config"
)

// ErrNotAnArchive means the input is not a snapshot this tool produced.
var ErrNotAnArchive = errors.New("not a vault archive")

// files eligible for packing, in pack order. The settings file stays local
// on purpose: it holds machine-specific paths and preferences.
var bundleFiles = []string{
	config.ServersFile,
	config.VaultFile,
	config.HostsFile,
}

// Export writes a snapshot of the vault files under configDir to w.
// Missing optional files (for example an empty trust store) are skipped;
// a snapshot with no files at all is an error.
func Export(configDir string, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("initializing compressor: %w", err)
	}
	tw := tar.NewWriter(zw)

	packed := 0
	for _, name := range bundleFiles {
		path := filepath.Join(configDir, name)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", path, err)
		}
		if err := packFile(tw, path, name, info); err != nil {
			return err
		}
		packed++
	}
	if packed == 0 {
		return fmt.Errorf("nothing to export from %s", configDir)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing compression: %w", err)
	}
	return nil
}

func packFile(tw *tar.Writer, path, name string, info os.FileInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("packing %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("packing %s: %w", name, err)
	}
	return nil
}

// Import unpacks a snapshot from r into configDir, replacing the files it
// contains. Each file is written atomically so an interrupted import never
// leaves a half-written vault behind. Unknown entries in the archive are
// rejected rather than written, which also blocks path traversal.
func Import(configDir string, r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnArchive, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tr := tar.NewReader(zr)
	restored := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotAnArchive, err)
		}
		if !allowedEntry(hdr.Name) {
			return fmt.Errorf("%w: unexpected entry %q", ErrNotAnArchive, hdr.Name)
		}
		if err := restoreFile(configDir, hdr.Name, tr); err != nil {
			return err
		}
		restored++
	}
	if restored == 0 {
		return fmt.Errorf("%w: archive is empty", ErrNotAnArchive)
	}
	return nil
}

func allowedEntry(name string) bool {
	for _, allowed := range bundleFiles {
		if name == allowed {
			return true
		}
	}
	return false
}

func restoreFile(configDir, name string, r io.Reader) error {
	path := filepath.Join(configDir, name)
	tmp, err := os.CreateTemp(configDir, name+".import-*")
	if err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	return nil
}

// DefaultExportName suggests a file name for a new snapshot.
func DefaultExportName(now time.Time) string {
	return "sshvault-" + now.Format("20060102-150405") + ".tar.zst"
}
