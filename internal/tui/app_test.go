// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/vault"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyEsc() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyEsc} }

func testStores(t *testing.T) (*config.ServerStore, *vault.Store) {
	t.Helper()
	dir := t.TempDir()
	servers, err := config.LoadServers(dir)
	if err != nil {
		t.Fatalf("LoadServers failed: %v", err)
	}
	vs := vault.NewStore(filepath.Join(dir, config.VaultFile))
	if err := vs.Unlock(vault.DeriveKey("pass")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	return servers, vs
}

func addServer(t *testing.T, servers *config.ServerStore, name string) model.Server {
	t.Helper()
	s, err := servers.Add(model.Server{Name: name, IP: "10.0.0.1", User: "root", Port: "22"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return s
}

func TestAppStartsOnListWhenUnlocked(t *testing.T) {
	servers, vs := testStores(t)
	m := newAppModel(servers, vs)
	if m.currentScreen != screenList {
		t.Fatal("an unlocked vault must skip the unlock screen")
	}
}

func TestAppStartsOnUnlockWhenLocked(t *testing.T) {
	servers, vs := testStores(t)
	vs.Lock()
	m := newAppModel(servers, vs)
	if m.currentScreen != screenUnlock {
		t.Fatal("a locked vault must show the unlock screen")
	}
}

func TestUnlockBoundedRetries(t *testing.T) {
	servers, vs := testStores(t)
	vs.Lock()
	m := newAppModel(servers, vs)

	var mdl tea.Model = m
	var cmd tea.Cmd
	for i := 0; i < maxUnlockAttempts-1; i++ {
		mdl, cmd = mdl.Update(unlockResultMsg{err: vault.ErrIntegrity})
		if cmd != nil {
			t.Fatalf("attempt %d must not quit", i+1)
		}
		got := mdl.(appModel)
		if got.unlock.attempts != i+1 {
			t.Fatalf("attempts = %d, want %d", got.unlock.attempts, i+1)
		}
		if got.unlock.errMsg == "" {
			t.Fatal("a failed attempt must surface an error")
		}
	}

	mdl, cmd = mdl.Update(unlockResultMsg{err: vault.ErrIntegrity})
	got := mdl.(appModel)
	if got.err == nil {
		t.Fatal("exhausting attempts must be a fatal error")
	}
	if cmd == nil {
		t.Fatal("exhausting attempts must quit")
	}
}

func TestUnlockSuccessSwitchesToList(t *testing.T) {
	servers, vs := testStores(t)
	vs.Lock()
	m := newAppModel(servers, vs)

	mdl, _ := m.Update(unlockResultMsg{})
	if mdl.(appModel).currentScreen != screenList {
		t.Fatal("a successful unlock must show the list")
	}
}

func TestListEnterSelectsServerForConnect(t *testing.T) {
	servers, vs := testStores(t)
	s := addServer(t, servers, "web-1")
	m := newAppModel(servers, vs)

	mdl, cmd := m.Update(keyEnter())
	got := mdl.(appModel)
	if got.result.ConnectTo != s.ID {
		t.Fatalf("ConnectTo = %q, want %q", got.result.ConnectTo, s.ID)
	}
	if cmd == nil {
		t.Fatal("choosing a server must quit the ui")
	}
}

func TestListEnterWithNoServersDoesNothing(t *testing.T) {
	servers, vs := testStores(t)
	m := newAppModel(servers, vs)

	mdl, cmd := m.Update(keyEnter())
	got := mdl.(appModel)
	if got.result.ConnectTo != "" || cmd != nil {
		t.Fatal("enter on an empty list must be a no-op")
	}
}

func TestListNavigationClamps(t *testing.T) {
	servers, vs := testStores(t)
	addServer(t, servers, "one")
	addServer(t, servers, "two")
	m := newAppModel(servers, vs)

	var mdl tea.Model = m
	mdl, _ = mdl.Update(keyRune('k')) // up from the top stays put
	if mdl.(appModel).idx != 0 {
		t.Fatal("up at the top must clamp")
	}
	mdl, _ = mdl.Update(keyRune('j'))
	mdl, _ = mdl.Update(keyRune('j')) // down past the end stays put
	if got := mdl.(appModel).idx; got != 1 {
		t.Fatalf("idx = %d, want 1", got)
	}
}

func TestAddOpensBlankForm(t *testing.T) {
	servers, vs := testStores(t)
	m := newAppModel(servers, vs)

	mdl, _ := m.Update(keyRune('a'))
	got := mdl.(appModel)
	if got.currentScreen != screenForm {
		t.Fatal("'a' must open the form")
	}
	if got.form.editing {
		t.Fatal("'a' must open a blank, non-editing form")
	}
}

func TestEditOpensPrefilledForm(t *testing.T) {
	servers, vs := testStores(t)
	s := addServer(t, servers, "web-1")
	m := newAppModel(servers, vs)

	mdl, _ := m.Update(keyRune('e'))
	got := mdl.(appModel)
	if got.currentScreen != screenForm || !got.form.editing {
		t.Fatal("'e' must open an editing form")
	}
	if got.form.serverID != s.ID {
		t.Fatal("edit form must target the selected server")
	}
	if got.form.inputs[fieldName].Value() != "web-1" {
		t.Fatal("edit form must be pre-filled")
	}
}

func TestFormEscReturnsToList(t *testing.T) {
	servers, vs := testStores(t)
	m := newAppModel(servers, vs)

	var mdl tea.Model = m
	mdl, _ = mdl.Update(keyRune('a'))
	mdl, _ = mdl.Update(keyEsc())
	if mdl.(appModel).currentScreen != screenList {
		t.Fatal("esc must abandon the form")
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	servers, vs := testStores(t)
	s := addServer(t, servers, "web-1")
	m := newAppModel(servers, vs)

	mdl, _ := m.Update(keyRune('d'))
	got := mdl.(appModel)
	if !got.showConfirm {
		t.Fatal("'d' must ask for confirmation")
	}
	if got.pendingDelete.ID != s.ID {
		t.Fatal("confirmation must target the selected server")
	}

	// Declining leaves the entry alone.
	mdl, _ = got.Update(keyRune('n'))
	got = mdl.(appModel)
	if got.showConfirm {
		t.Fatal("'n' must dismiss the confirmation")
	}
	if _, err := servers.ByID(s.ID); err != nil {
		t.Fatal("declining must not delete")
	}
}

func TestConfirmedDeleteRemovesServerAndRecord(t *testing.T) {
	servers, vs := testStores(t)
	s := addServer(t, servers, "web-1")
	if err := vs.Add(s.ID, "secret"); err != nil {
		t.Fatalf("vault Add failed: %v", err)
	}
	m := newAppModel(servers, vs)

	var mdl tea.Model = m
	mdl, _ = mdl.Update(keyRune('d'))
	mdl, cmd := mdl.Update(keyRune('y'))
	if cmd == nil {
		t.Fatal("confirming must dispatch the delete")
	}
	msg := cmd()
	mdl, _ = mdl.Update(msg)

	if _, err := servers.ByID(s.ID); !errors.Is(err, config.ErrServerNotFound) {
		t.Fatalf("server still present: %v", err)
	}
	if _, err := vs.ResolvePassword(s.ID); !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("vault record still present: %v", err)
	}
	if got := mdl.(appModel).status; got == "" {
		t.Fatal("a completed delete must report status")
	}
}

func TestSaveNewServerStoresPassword(t *testing.T) {
	servers, vs := testStores(t)
	m := newAppModel(servers, vs)

	cmd := m.cmdSaveServer(model.Server{Name: "db-1", IP: "10.0.0.2", User: "admin"}, "hunter2", false)
	msg := cmd()
	saved, ok := msg.(serverSavedMsg)
	if !ok || saved.err != nil {
		t.Fatalf("save failed: %v", msg)
	}
	if !saved.added {
		t.Fatal("a new server must report added")
	}

	s, err := servers.ByName("db-1")
	if err != nil {
		t.Fatalf("server not stored: %v", err)
	}
	pw, err := vs.ResolvePassword(s.ID)
	if err != nil {
		t.Fatalf("password not stored: %v", err)
	}
	if pw != "hunter2" {
		t.Fatalf("password = %q, want %q", pw, "hunter2")
	}
}

func TestEditWithBlankPasswordKeepsStored(t *testing.T) {
	servers, vs := testStores(t)
	s := addServer(t, servers, "web-1")
	if err := vs.Add(s.ID, "original"); err != nil {
		t.Fatalf("vault Add failed: %v", err)
	}
	m := newAppModel(servers, vs)

	s.Name = "web-renamed"
	msg := m.cmdSaveServer(s, "", true)()
	if saved := msg.(serverSavedMsg); saved.err != nil {
		t.Fatalf("save failed: %v", saved.err)
	}

	pw, err := vs.ResolvePassword(s.ID)
	if err != nil {
		t.Fatalf("ResolvePassword failed: %v", err)
	}
	if pw != "original" {
		t.Fatalf("blank password must keep the stored one, got %q", pw)
	}
	if got, _ := servers.ByID(s.ID); got.Name != "web-renamed" {
		t.Fatal("metadata edit did not apply")
	}
}

func TestListViewShowsServers(t *testing.T) {
	servers, vs := testStores(t)
	addServer(t, servers, "web-1")
	m := newAppModel(servers, vs)

	view := m.View()
	if !strings.Contains(view, "web-1") {
		t.Fatalf("list view missing server name:\n%s", view)
	}
}
