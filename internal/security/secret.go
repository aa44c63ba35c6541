// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"fmt"
	"io"
)

// Secret is a thin wrapper around a byte slice intended to hold sensitive
// material (derived vault keys, passphrases, resolved passwords). It
// implements redaction helpers so accidental formatting or marshaling does
// not reveal data, and Zero so owners can scrub it when their scope ends.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return "[SECRET]" }

// Format implements fmt.Formatter to ensure `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, c rune) {
	if _, err := io.WriteString(f, "[SECRET]"); err != nil {
		_ = err // formatting a secret must never surface the payload, even on error
	}
}

// Bytes returns a copy of the underlying bytes. Callers are responsible for
// zeroing sensitive copies when done.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Zero overwrites the underlying byte slice with zeros. The vault key and any
// resolved passwords go through here when the vault locks or the process exits.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// Use executes fn with the underlying bytes (not a copy). Prefer this when
// callers need to avoid copies; responsibility for zeroing belongs to the
// caller if they retain the slice.
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"[SECRET]"`), nil }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[SECRET]"), nil }

// FromString creates a Secret from a string input. The string itself cannot
// be scrubbed; callers should avoid retaining it.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes creates a Secret from bytes (it makes a copy).
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

// Redacted returns a short human-readable placeholder useful for logs.
func (s Secret) Redacted() string { return "[SECRET]" }
