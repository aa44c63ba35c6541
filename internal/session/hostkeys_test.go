// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package session

import (
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func testHostKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrapping key: %v", err)
	}
	return key
}

func testAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 22}
}

func TestHostKeyStoreFirstUsePins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_hosts")
	hs, err := OpenHostKeyStore(path)
	if err != nil {
		t.Fatalf("OpenHostKeyStore failed: %v", err)
	}

	key := testHostKey(t)
	cb := hs.Callback()

	if err := cb("example.com:22", testAddr(), key); err != nil {
		t.Fatalf("first contact must pin, got error: %v", err)
	}
	if hs.Trusted("example.com") == "" {
		t.Fatal("key was not pinned")
	}

	// Same key again is fine.
	if err := cb("example.com:22", testAddr(), key); err != nil {
		t.Fatalf("pinned key rejected: %v", err)
	}
}

func TestHostKeyStoreMismatchFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_hosts")
	hs, err := OpenHostKeyStore(path)
	if err != nil {
		t.Fatalf("OpenHostKeyStore failed: %v", err)
	}
	cb := hs.Callback()

	if err := cb("example.com:22", testAddr(), testHostKey(t)); err != nil {
		t.Fatalf("pinning failed: %v", err)
	}

	err = cb("example.com:22", testAddr(), testHostKey(t))
	if err == nil {
		t.Fatal("a different key for a pinned host must be rejected")
	}
	if !strings.Contains(err.Error(), "host key mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHostKeyStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_hosts")
	key := testHostKey(t)

	hs, err := OpenHostKeyStore(path)
	if err != nil {
		t.Fatalf("OpenHostKeyStore failed: %v", err)
	}
	if err := hs.Callback()("pinned.example:2222", testAddr(), key); err != nil {
		t.Fatalf("pinning failed: %v", err)
	}

	reopened, err := OpenHostKeyStore(path)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	if reopened.Trusted("pinned.example") != hs.Trusted("pinned.example") {
		t.Fatal("pin did not survive a reload")
	}

	// The reloaded pin still rejects an impostor.
	if err := reopened.Callback()("pinned.example:2222", testAddr(), testHostKey(t)); err == nil {
		t.Fatal("reloaded store accepted a different key")
	}
}

func TestOpenHostKeyStoreSkipsCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted_hosts")
	content := "# pinned hosts\n\nbox.example ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIDummyDummyDummyDummyDummyDummyDummyDummyDum\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	hs, err := OpenHostKeyStore(path)
	if err != nil {
		t.Fatalf("OpenHostKeyStore failed: %v", err)
	}
	if hs.Trusted("box.example") == "" {
		t.Fatal("entry after comments was not loaded")
	}
	if hs.Trusted("# pinned") != "" {
		t.Fatal("comment line was loaded as a host")
	}
}
