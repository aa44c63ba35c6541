// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the data types shared between the config store, the
// vault and the user interfaces.
package model

import (
	"fmt"
	"strings"
)

// Server is the non-secret metadata for one SSH server entry. The ID links
// it to the encrypted password record in the vault; the two stores never
// share anything else.
type Server struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	IP    string `toml:"ip"`
	User  string `toml:"user"`
	Shell string `toml:"shell"`
	Port  string `toml:"port"`
}

// String returns the user@host:port representation.
func (s Server) String() string {
	return fmt.Sprintf("%s@%s:%s", s.User, s.IP, s.PortOrDefault())
}

// Validate checks the fields a connection actually needs. The ID is not one
// of them; the store assigns it on insert.
func (s Server) Validate() error {
	var missing []string
	if s.IP == "" {
		missing = append(missing, "ip")
	}
	if s.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return fmt.Errorf("server %q is missing required fields: %s", s.Name, strings.Join(missing, ", "))
	}
	return nil
}

// ShellOrDefault returns the configured login shell, falling back to bash.
func (s Server) ShellOrDefault() string {
	if s.Shell == "" {
		return "bash"
	}
	return s.Shell
}

// PortOrDefault returns the configured port, falling back to 22.
func (s Server) PortOrDefault() string {
	if s.Port == "" {
		return "22"
	}
	return s.Port
}
