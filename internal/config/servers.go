// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/veygo/sshvault/internal/model"
)

// ErrServerNotFound is returned when a lookup or mutation names an entry the
// store doesn't hold.
var ErrServerNotFound = errors.New("server not found")

// serversDoc is the TOML shape of config.toml:
//
//	[[servers]]
//	id = "..." name = "..." ip = "..." user = "..." shell = "..." port = "..."
type serversDoc struct {
	Servers []model.Server `toml:"servers"`
}

// ServerStore is the plaintext half of a server entry: everything except the
// password. Entries are joined to vault records by ID. Mutations rewrite the
// whole file through a temp-file rename, mirroring the vault's write
// discipline.
type ServerStore struct {
	mu      sync.Mutex
	path    string
	servers []model.Server
}

// LoadServers reads config.toml from the given directory. A missing file is
// an empty store, not an error.
func LoadServers(dir string) (*ServerStore, error) {
	path := filepath.Join(dir, ServersFile)
	st := &ServerStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc serversDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	st.servers = doc.Servers
	return st, nil
}

// All returns a copy of the server list in file order.
func (st *ServerStore) All() []model.Server {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]model.Server, len(st.servers))
	copy(out, st.servers)
	return out
}

// ByID returns the entry with the given ID.
func (st *ServerStore) ByID(id string) (model.Server, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.servers {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Server{}, fmt.Errorf("%w: id %s", ErrServerNotFound, id)
}

// ByName returns the entry with the given display name.
func (st *ServerStore) ByName(name string) (model.Server, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.servers {
		if s.Name == name {
			return s, nil
		}
	}
	return model.Server{}, fmt.Errorf("%w: %s", ErrServerNotFound, name)
}

// Add appends an entry and persists, assigning a fresh ID when the entry
// has none. Returns the entry as stored. Rolls back on write failure.
func (st *ServerStore) Add(s model.Server) (model.Server, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	st.servers = append(st.servers, s)
	if err := st.save(); err != nil {
		st.servers = st.servers[:len(st.servers)-1]
		return model.Server{}, err
	}
	return s, nil
}

// Update replaces the entry with the same ID and persists.
func (st *ServerStore) Update(s model.Server) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := range st.servers {
		if st.servers[i].ID == s.ID {
			previous := st.servers[i]
			st.servers[i] = s
			if err := st.save(); err != nil {
				st.servers[i] = previous
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: id %s", ErrServerNotFound, s.ID)
}

// Delete removes the entry with the given ID and persists.
func (st *ServerStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := range st.servers {
		if st.servers[i].ID == id {
			before := st.servers
			after := make([]model.Server, 0, len(before)-1)
			after = append(after, before[:i]...)
			after = append(after, before[i+1:]...)

			st.servers = after
			if err := st.save(); err != nil {
				st.servers = before
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: id %s", ErrServerNotFound, id)
}

// save rewrites config.toml atomically. Callers hold st.mu.
func (st *ServerStore) save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(serversDoc{Servers: st.servers}); err != nil {
		return fmt.Errorf("serializing server list: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ServersFile+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
