// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/veygo/sshvault/internal/security"
)

// Record is one encrypted credential, keyed by the server ID it belongs to.
// The password field holds the hex-encoded AES-CTR ciphertext, never the
// plaintext. ID uniqueness is the creation path's responsibility; the store
// trusts its callers.
type Record struct {
	ID       string `toml:"id"`
	Password string `toml:"password"`
}

// payload is the TOML shape of the decrypted store file:
//
//	[[servers]]
//	id = "..."
//	password = "<hex>"
type payload struct {
	Servers []Record `toml:"servers"`
}

// Store holds the encrypted credential records for all servers. It starts
// locked; Unlock authenticates and parses the on-disk blob, after which
// records can be read and mutated. Every mutation re-seals and rewrites the
// whole file; there are no incremental updates, so a crash can never leave
// a partially-written vault behind.
//
// All operations are serialized on one mutex. The interactive UI is
// effectively single-threaded, but the store does not rely on that.
type Store struct {
	mu       sync.Mutex
	path     string
	key      security.Secret
	records  []Record
	unlocked bool
}

// NewStore returns a locked store backed by the given file path. The file
// does not need to exist yet; a missing file unlocks to an empty vault.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Unlock reads, authenticates and parses the vault file with the given key.
// The key is retained (not copied) until Lock; the caller hands over
// ownership and must not zero it while the store is unlocked.
//
// Error policy: ErrIntegrity means wrong passphrase or tampered file,
// ErrFormat means a structurally broken blob, ErrDecode means the decrypted
// payload is not a record list. The store performs no retries; whether to
// re-prompt is the caller's decision.
func (s *Store) Unlock(key security.Secret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(key) != KeySize {
		return fmt.Errorf("%w: key must be %d bytes, got %d", ErrCrypto, KeySize, len(key))
	}

	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		// First run: nothing on disk yet, start with an empty vault.
		s.key = key
		s.records = nil
		s.unlocked = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading vault file %s: %w", s.path, err)
	}

	plaintext, err := Open(key, blob)
	if err != nil {
		return err
	}

	var p payload
	if err := toml.Unmarshal(plaintext, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	s.key = key
	s.records = p.Servers
	s.unlocked = true
	return nil
}

// Lock scrubs the key, drops the decrypted records and returns the store to
// its locked state. Safe to call repeatedly.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key.Zero()
	s.key = nil
	s.records = nil
	s.unlocked = false
}

// Unlocked reports whether record operations are currently available.
func (s *Store) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Add encrypts a password for the given server ID, appends the record and
// persists the store. On a persist failure the in-memory list is rolled
// back, so a failed Add is invisible.
func (s *Store) Add(id, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return ErrLocked
	}

	encrypted, err := EncryptField(s.key, id, password)
	if err != nil {
		return err
	}

	s.records = append(s.records, Record{ID: id, Password: encrypted})
	if err := s.save(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return err
	}
	return nil
}

// Modify replaces the stored password for an existing record and persists.
// ErrNotFound if the ID has no record; rollback on persist failure.
func (s *Store) Modify(id, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return ErrLocked
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	encrypted, err := EncryptField(s.key, id, password)
	if err != nil {
		return err
	}

	previous := s.records[idx].Password
	s.records[idx].Password = encrypted
	if err := s.save(); err != nil {
		s.records[idx].Password = previous
		return err
	}
	return nil
}

// Upsert replaces the stored password for an ID, inserting a fresh record
// when none exists yet.
func (s *Store) Upsert(id, password string) error {
	err := s.Modify(id, password)
	if errors.Is(err, ErrNotFound) {
		return s.Add(id, password)
	}
	return err
}

// Delete removes a record and persists. ErrNotFound if absent; rollback on
// persist failure.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return ErrLocked
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	before := s.records
	after := make([]Record, 0, len(before)-1)
	after = append(after, before[:idx]...)
	after = append(after, before[idx+1:]...)

	s.records = after
	if err := s.save(); err != nil {
		s.records = before
		return err
	}
	return nil
}

// ResolvePassword decrypts and returns the plaintext password for a server
// ID. The caller should not retain the result longer than needed.
func (s *Store) ResolvePassword(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return "", ErrLocked
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return DecryptField(s.key, id, s.records[idx].Password)
}

// EncryptedPassword returns the stored ciphertext for a server ID, mainly
// for tests and diagnostics.
func (s *Store) EncryptedPassword(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return "", ErrLocked
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[idx].Password, nil
}

// indexOf returns the position of a record or -1. Callers hold s.mu.
func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// save serializes, seals and rewrites the vault file. The write goes to a
// temporary file in the same directory followed by a rename, so readers see
// either the old file or the new one, never a torn write. Callers hold s.mu.
func (s *Store) save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(payload{Servers: s.records}); err != nil {
		return fmt.Errorf("%w: serializing records: %v", ErrPersist, err)
	}

	blob, err := Seal(s.key, buf.Bytes())
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrPersist, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
