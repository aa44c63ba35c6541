// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package vault

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	first := DeriveKey("correct horse battery staple")
	second := DeriveKey("correct horse battery staple")

	if len(first) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(first))
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("same passphrase produced different keys")
	}
}

func TestDeriveKeyDistinct(t *testing.T) {
	a := DeriveKey("passphrase-a")
	b := DeriveKey("passphrase-b")
	if bytes.Equal(a, b) {
		t.Fatalf("different passphrases produced identical keys")
	}
}

func TestDeriveKeyEmptyPassphrase(t *testing.T) {
	// Empty passphrase is the explicit no-passphrase mode; it must work and
	// be deterministic like any other input.
	first := DeriveKey("")
	second := DeriveKey("")
	if len(first) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(first))
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("empty passphrase key not deterministic")
	}
}
