// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/vault"
)

// Run starts the interactive front end and blocks until the user quits or
// picks a server to connect to. The vault may already be unlocked when the
// caller re-enters the TUI after a session ends.
func Run(servers *config.ServerStore, vs *vault.Store) (Result, error) {
	p := tea.NewProgram(newAppModel(servers, vs), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running ui: %w", err)
	}

	m, ok := final.(appModel)
	if !ok {
		return Result{}, fmt.Errorf("unexpected final model %T", final)
	}
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}
