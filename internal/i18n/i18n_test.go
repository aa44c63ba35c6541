// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package i18n

import (
	"strings"
	"testing"
)

func TestTKnownAndUnknownMessages(t *testing.T) {
	SetLang("en")

	if got := T("error.auth"); got == "error.auth" || got == "" {
		t.Fatalf("known message ID not translated, got %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("unknown ID must fall back to the ID, got %q", got)
	}
}

func TestTfTemplates(t *testing.T) {
	SetLang("en")

	got := Tf("msg.session_ended", map[string]interface{}{"Code": 7})
	if !strings.Contains(got, "7") {
		t.Fatalf("template data not interpolated, got %q", got)
	}
}

func TestSetLangFallsBackToEnglish(t *testing.T) {
	// An unknown language resolves through the English default messages.
	SetLang("xx")
	defer SetLang("en")

	if got := T("error.auth"); got == "error.auth" || got == "" {
		t.Fatalf("fallback language not applied, got %q", got)
	}
}
