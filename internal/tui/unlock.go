// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/veygo/sshvault/internal/i18n"
)

// maxUnlockAttempts bounds passphrase retries before the app gives up.
const maxUnlockAttempts = 3

type unlockModel struct {
	input      textinput.Model
	attempts   int
	submitting bool
	errMsg     string
}

func newUnlockModel() unlockModel {
	in := textinput.New()
	in.Placeholder = i18n.T("prompt.passphrase")
	in.CharLimit = 256
	in.Width = 40
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'
	in.Focus()
	return unlockModel{input: in}
}

// attemptsLeft reports how many tries remain before lockout.
func (m unlockModel) attemptsLeft() int {
	return maxUnlockAttempts - m.attempts
}

func (m unlockModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("unlock.title")))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d %s", m.attemptsLeft(), i18n.T("unlock.attempts_left"))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(i18n.T("unlock.help")))
	return appStyle.Render(b.String())
}
