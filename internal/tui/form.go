// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/model"
)

// form field indices, in focus order.
const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUser
	fieldShell
	fieldPassword
	fieldCount
)

type formModel struct {
	inputs     []textinput.Model
	focus      int
	editing    bool
	serverID   string
	submitting bool
	errMsg     string
}

func newFormModel() formModel {
	labels := []string{
		i18n.T("form.name"),
		i18n.T("form.host"),
		i18n.T("form.port"),
		i18n.T("form.user"),
		i18n.T("form.shell"),
		i18n.T("form.password"),
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 256
		in.Width = 40
		inputs[i] = in
	}
	inputs[fieldPort].Placeholder = "22"
	inputs[fieldPort].CharLimit = 5
	inputs[fieldShell].Placeholder = "bash"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '*'
	inputs[fieldName].Focus()

	return formModel{inputs: inputs}
}

// newEditFormModel pre-fills the form from an existing server. The password
// field starts blank; leaving it blank keeps the stored password.
func newEditFormModel(s model.Server) formModel {
	m := newFormModel()
	m.editing = true
	m.serverID = s.ID
	m.inputs[fieldName].SetValue(s.Name)
	m.inputs[fieldHost].SetValue(s.IP)
	m.inputs[fieldPort].SetValue(s.Port)
	m.inputs[fieldUser].SetValue(s.User)
	m.inputs[fieldShell].SetValue(s.Shell)
	return m
}

func (m *formModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *formModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// server builds the model.Server from the form fields. The validation error
// message is already localized.
func (m *formModel) server() (model.Server, string, bool) {
	s := model.Server{
		ID:    m.serverID,
		Name:  strings.TrimSpace(m.inputs[fieldName].Value()),
		IP:    strings.TrimSpace(m.inputs[fieldHost].Value()),
		Port:  strings.TrimSpace(m.inputs[fieldPort].Value()),
		User:  strings.TrimSpace(m.inputs[fieldUser].Value()),
		Shell: strings.TrimSpace(m.inputs[fieldShell].Value()),
	}
	if s.Name == "" || s.IP == "" || s.User == "" {
		return s, i18n.T("form.name") + ", " + i18n.T("form.host") + ", " + i18n.T("form.user"), false
	}
	if s.Port != "" {
		if p, err := strconv.Atoi(s.Port); err != nil || p < 1 || p > 65535 {
			return s, i18n.T("form.port"), false
		}
	}
	return s, "", true
}

func (m *formModel) password() string {
	return m.inputs[fieldPassword].Value()
}

func (m formModel) View() string {
	title := i18n.T("form.title.add")
	if m.editing {
		title = i18n.T("form.title.edit")
	}

	labels := []string{
		i18n.T("form.name"),
		i18n.T("form.host"),
		i18n.T("form.port"),
		i18n.T("form.user"),
		i18n.T("form.shell"),
		i18n.T("form.password"),
	}
	width := 0
	for _, l := range labels {
		if len(l) > width {
			width = len(l)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		label := labels[i] + strings.Repeat(" ", width-len(labels[i]))
		if i == m.focus {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(label)
		b.WriteString("  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: " + i18n.T("form.submit") + " • esc: " + i18n.T("form.cancel")))
	return appStyle.Render(b.String())
}
