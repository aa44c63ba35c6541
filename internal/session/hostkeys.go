// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/veygo/sshvault/internal/logging"
)

// HostKeyStore is a trust-on-first-use pin store for server host keys,
// backed by a flat file of "host keytype base64" lines. The first
// connection to a host records its key; any later mismatch fails the
// handshake loudly.
type HostKeyStore struct {
	mu   sync.Mutex
	path string
	keys map[string]string // host -> "keytype base64"
}

// OpenHostKeyStore loads (or initializes) the pin store at path.
func OpenHostKeyStore(path string) (*HostKeyStore, error) {
	hs := &HostKeyStore{path: path, keys: make(map[string]string)}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return hs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening trusted hosts file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		host, key, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		hs.keys[host] = key
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trusted hosts file %s: %w", path, err)
	}
	return hs, nil
}

// Callback returns the ssh.HostKeyCallback enforcing the pin store.
func (hs *HostKeyStore) Callback() ssh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		// The hostname handed to the callback can include the port; strip it
		// so lookups key on the bare host.
		host, _, err := net.SplitHostPort(hostname)
		if err != nil {
			host = hostname
		}

		presented := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(key)))

		hs.mu.Lock()
		known, ok := hs.keys[host]
		hs.mu.Unlock()

		if !ok {
			// First contact: pin the key.
			logging.Infof("pinning host key for %s on first use", host)
			return hs.pin(host, presented)
		}

		if known != presented {
			return fmt.Errorf("host key mismatch for %s: presented %s, possible man-in-the-middle attack; remove the entry from %s only if the host key legitimately changed",
				host, presented, hs.path)
		}
		return nil
	}
}

// pin records a host key and appends it to the backing file.
func (hs *HostKeyStore) pin(host, key string) error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(hs.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(hs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("writing trusted hosts file %s: %w", hs.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s %s\n", host, key); err != nil {
		return fmt.Errorf("writing trusted hosts file %s: %w", hs.path, err)
	}
	hs.keys[host] = key
	return nil
}

// Trusted returns the pinned key string for a host, or "" when unknown.
func (hs *HostKeyStore) Trusted(host string) string {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.keys[host]
}
