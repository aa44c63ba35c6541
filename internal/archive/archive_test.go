// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veygo/sshvault/internal/config"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFixture(t, src, config.ServersFile, "[[servers]]\nid = \"a\"\n")
	writeFixture(t, src, config.VaultFile, "binary-blob-here")
	writeFixture(t, src, config.HostsFile, "box.example ssh-ed25519 AAAA\n")

	var buf bytes.Buffer
	if err := Export(src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := t.TempDir()
	if err := Import(dst, &buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	for _, name := range []string{config.ServersFile, config.VaultFile, config.HostsFile} {
		want, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			t.Fatalf("reading source %s: %v", name, err)
		}
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("reading restored %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s changed across round trip", name)
		}

		info, err := os.Stat(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("stat restored %s: %v", name, err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("restored %s has mode %v, want 0600", name, perm)
		}
	}
}

func TestExportSkipsMissingOptionalFiles(t *testing.T) {
	src := t.TempDir()
	writeFixture(t, src, config.ServersFile, "[[servers]]\nid = \"a\"\n")
	writeFixture(t, src, config.VaultFile, "blob")
	// no trusted_hosts file

	var buf bytes.Buffer
	if err := Export(src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := t.TempDir()
	if err := Import(dst, &buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, config.HostsFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("a file absent from the archive must not appear after import")
	}
}

func TestExportEmptyDirFails(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(t.TempDir(), &buf); err == nil {
		t.Fatal("exporting an empty directory must fail")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	err := Import(t.TempDir(), bytes.NewReader([]byte("certainly not zstd")))
	if !errors.Is(err, ErrNotAnArchive) {
		t.Fatalf("expected ErrNotAnArchive, got %v", err)
	}
}

func TestImportOverwritesExisting(t *testing.T) {
	src := t.TempDir()
	writeFixture(t, src, config.ServersFile, "new contents")
	writeFixture(t, src, config.VaultFile, "new blob")

	var buf bytes.Buffer
	if err := Export(src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := t.TempDir()
	writeFixture(t, dst, config.ServersFile, "old contents")
	if err := Import(dst, &buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, config.ServersFile))
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(got) != "new contents" {
		t.Fatalf("import did not replace the file: %q", got)
	}
}

func TestDefaultExportName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := DefaultExportName(now); got != "sshvault-20260314-092653.tar.zst" {
		t.Fatalf("unexpected name %q", got)
	}
}
