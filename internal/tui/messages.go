// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// unlockResultMsg reports the outcome of an unlock attempt.
type unlockResultMsg struct {
	err error
}

// serverSavedMsg reports the outcome of adding or editing a server.
type serverSavedMsg struct {
	added bool
	err   error
}

// serverDeletedMsg reports the outcome of deleting a server.
type serverDeletedMsg struct {
	err error
}

// passwordCopiedMsg reports the outcome of copying a password.
type passwordCopiedMsg struct {
	err error
}

// clearStatusMsg expires a transient status line.
type clearStatusMsg struct{}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
