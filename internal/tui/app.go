// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui is the interactive terminal front end: unlock the vault, pick
// a server from the list, manage entries, and hand the chosen server back to
// the caller for the actual SSH session. The session itself runs outside
// Bubble Tea because it needs the raw terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/vault"
)

type screen int

const (
	screenUnlock screen = iota
	screenList
	screenForm
)

// Result is what the TUI hands back to the caller when it exits.
type Result struct {
	// ConnectTo is the ID of the server the user chose to connect to, or ""
	// when the user quit.
	ConnectTo string
}

type appModel struct {
	servers *config.ServerStore
	vault   *vault.Store

	currentScreen screen
	unlock        unlockModel
	form          formModel

	idx    int
	status string

	showConfirm   bool
	pendingDelete model.Server

	result Result
	err    error
}

func newAppModel(servers *config.ServerStore, vs *vault.Store) appModel {
	m := appModel{
		servers: servers,
		vault:   vs,
		unlock:  newUnlockModel(),
	}
	if vs.Unlocked() {
		// Coming back from a finished session: skip straight to the list.
		m.currentScreen = screenList
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.currentScreen == screenUnlock {
		return textinput.Blink
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showConfirm {
			return m.updateConfirm(msg)
		}
	case tea.WindowSizeMsg:
		return m, nil

	case unlockResultMsg:
		m.unlock.submitting = false
		if msg.err == nil {
			m.currentScreen = screenList
			return m, nil
		}
		m.unlock.attempts++
		if errors.Is(msg.err, vault.ErrIntegrity) {
			m.unlock.errMsg = i18n.T("error.wrong_passphrase")
		} else {
			m.unlock.errMsg = msg.err.Error()
		}
		if m.unlock.attempts >= maxUnlockAttempts {
			m.err = fmt.Errorf("%s", i18n.T("error.too_many_attempts"))
			return m, tea.Quit
		}
		m.unlock.input.SetValue("")
		return m, nil

	case serverSavedMsg:
		m.form.submitting = false
		if msg.err != nil {
			m.form.errMsg = msg.err.Error()
			return m, nil
		}
		m.currentScreen = screenList
		if msg.added {
			m.status = i18n.T("msg.server_added")
		} else {
			m.status = i18n.T("msg.server_updated")
		}
		return m, cmdClearStatus()

	case serverDeletedMsg:
		m.pendingDelete = model.Server{}
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = i18n.T("msg.server_deleted")
		}
		if m.idx >= len(m.servers.All()) {
			m.idx = len(m.servers.All()) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, cmdClearStatus()

	case passwordCopiedMsg:
		if msg.err != nil {
			m.status = i18n.T("error.clipboard")
		} else {
			m.status = i18n.T("msg.password_copied")
		}
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	switch m.currentScreen {
	case screenUnlock:
		return m.updateUnlock(msg)
	case screenList:
		return m.updateList(msg)
	case screenForm:
		return m.updateForm(msg)
	}
	return m, nil
}

func (m appModel) updateUnlock(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(keyMsg, keys.enter):
			if m.unlock.submitting {
				return m, nil
			}
			pass := m.unlock.input.Value()
			m.unlock.submitting = true
			m.unlock.errMsg = ""
			return m, m.cmdUnlock(pass)
		}
	}
	var cmd tea.Cmd
	m.unlock.input, cmd = m.unlock.input.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	servers := m.servers.All()
	switch {
	case key.Matches(keyMsg, keys.quit):
		return m, tea.Quit

	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}

	case key.Matches(keyMsg, keys.down):
		if m.idx < len(servers)-1 {
			m.idx++
		}

	case key.Matches(keyMsg, keys.enter):
		if s, ok := m.selected(); ok {
			m.result.ConnectTo = s.ID
			return m, tea.Quit
		}

	case key.Matches(keyMsg, keys.add):
		m.form = newFormModel()
		m.currentScreen = screenForm

	case key.Matches(keyMsg, keys.edit):
		if s, ok := m.selected(); ok {
			m.form = newEditFormModel(s)
			m.currentScreen = screenForm
		}

	case key.Matches(keyMsg, keys.delete):
		if s, ok := m.selected(); ok {
			m.pendingDelete = s
			m.showConfirm = true
		}

	case key.Matches(keyMsg, keys.copy):
		if s, ok := m.selected(); ok {
			return m, m.cmdCopyPassword(s.ID)
		}
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenList
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.form.focusNext()
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.form.focusPrev()
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.form.submitting {
				return m, nil
			}
			s, badFields, ok := m.form.server()
			if !ok {
				m.form.errMsg = badFields
				return m, nil
			}
			m.form.errMsg = ""
			m.form.submitting = true
			return m, m.cmdSaveServer(s, m.form.password(), m.form.editing)
		}
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		m.showConfirm = false
		return m, m.cmdDeleteServer(m.pendingDelete)
	case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
		m.showConfirm = false
		m.pendingDelete = model.Server{}
	}
	return m, nil
}

func (m appModel) selected() (model.Server, bool) {
	servers := m.servers.All()
	if len(servers) == 0 || m.idx < 0 || m.idx >= len(servers) {
		return model.Server{}, false
	}
	return servers[m.idx], true
}

func (m appModel) cmdUnlock(passphrase string) tea.Cmd {
	vs := m.vault
	return func() tea.Msg {
		derived := vault.DeriveKey(passphrase)
		return unlockResultMsg{err: vs.Unlock(derived)}
	}
}

func (m appModel) cmdSaveServer(s model.Server, password string, editing bool) tea.Cmd {
	servers, vs := m.servers, m.vault
	return func() tea.Msg {
		if editing {
			if err := servers.Update(s); err != nil {
				return serverSavedMsg{err: err}
			}
		} else {
			stored, err := servers.Add(s)
			if err != nil {
				return serverSavedMsg{err: err}
			}
			s = stored
		}
		// A blank password on edit keeps the stored one; on add it means
		// key or agent auth, so no vault record is written.
		if password != "" {
			if err := vs.Upsert(s.ID, password); err != nil {
				return serverSavedMsg{err: err}
			}
		}
		return serverSavedMsg{added: !editing}
	}
}

func (m appModel) cmdDeleteServer(s model.Server) tea.Cmd {
	servers, vs := m.servers, m.vault
	return func() tea.Msg {
		if err := servers.Delete(s.ID); err != nil {
			return serverDeletedMsg{err: err}
		}
		// The password record follows its server; a missing record is fine.
		if err := vs.Delete(s.ID); err != nil && !errors.Is(err, vault.ErrNotFound) {
			return serverDeletedMsg{err: err}
		}
		return serverDeletedMsg{}
	}
}

func (m appModel) cmdCopyPassword(id string) tea.Cmd {
	vs := m.vault
	return func() tea.Msg {
		password, err := vs.ResolvePassword(id)
		if err != nil {
			return passwordCopiedMsg{err: err}
		}
		return passwordCopiedMsg{err: clipboard.WriteAll(password)}
	}
}

func (m appModel) View() string {
	if m.showConfirm {
		msg := i18n.Tf("confirm.delete", map[string]interface{}{"Name": m.pendingDelete.Name})
		return appStyle.Render(overlayBoxStyle.Render(
			msg + "\n\n" + helpStyle.Render("y: "+i18n.T("confirm.yes")+" • n: "+i18n.T("confirm.no"))))
	}

	switch m.currentScreen {
	case screenUnlock:
		return m.unlock.View()
	case screenForm:
		return m.form.View()
	}
	return m.listView()
}

func (m appModel) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("list.title")))
	b.WriteString("\n\n")

	servers := m.servers.All()
	if len(servers) == 0 {
		b.WriteString(i18n.T("list.empty"))
		b.WriteString("\n")
	}
	for i, s := range servers {
		line := fmt.Sprintf("%-20s %s", s.Name, s.String())
		if i == m.idx {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(strings.Join([]string{
		"enter: " + i18n.T("list.help.connect"),
		"a: " + i18n.T("list.help.add"),
		"e: " + i18n.T("list.help.edit"),
		"d: " + i18n.T("list.help.delete"),
		"c: " + i18n.T("list.help.copy"),
		"q: " + i18n.T("list.help.quit"),
	}, " • ")))
	return appStyle.Render(b.String())
}
