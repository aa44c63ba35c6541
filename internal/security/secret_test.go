// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("supersecret")
	if fmt.Sprintf("%v", s) != "[SECRET]" {
		t.Fatalf("unexpected fmt output: %q", fmt.Sprintf("%v", s))
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != "\"[SECRET]\"" {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
}

func TestSecretZero(t *testing.T) {
	s := FromString("abc123")
	(&s).Zero()
	// Inspect the underlying bytes using Use to avoid creating copies.
	if err := s.Use(func(b []byte) error {
		for i := range b {
			if b[i] != 0 {
				t.Fatalf("expected zeroed byte at index %d, got %d", i, b[i])
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("s.Use failed: %v", err)
	}
}

// TestSecretBytes tests that Bytes() returns a copy of underlying bytes.
func TestSecretBytes(t *testing.T) {
	s := Secret([]byte("sensitive"))

	copy1 := s.Bytes()
	if !bytes.Equal(copy1, []byte("sensitive")) {
		t.Fatalf("copy doesn't match original: %v", copy1)
	}

	// Modify the copy and ensure the original secret is not modified.
	copy1[0] = 'X'
	if s[0] != 's' {
		t.Fatalf("modifying copy affected original: %v", []byte(s))
	}

	copy2 := s.Bytes()
	copy2[1] = 'Y'
	if copy1[1] != 'e' || copy2[1] != 'Y' {
		t.Fatalf("copies are not independent: copy1=%v, copy2=%v", copy1, copy2)
	}
}

// TestSecretUse tests that Use executes the callback with underlying bytes
// and propagates its error.
func TestSecretUse(t *testing.T) {
	s := FromString("testdata")
	callCount := 0

	err := s.Use(func(b []byte) error {
		callCount++
		if string(b) != "testdata" {
			return errors.New("unexpected byte slice content")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	if callCount != 1 {
		t.Fatalf("callback not called exactly once, count: %d", callCount)
	}

	testErr := errors.New("callback error")
	if err := s.Use(func(b []byte) error { return testErr }); err != testErr {
		t.Fatalf("expected %v, got %v", testErr, err)
	}
}

// TestSecretFormat tests that Format redacts secrets under all common verbs.
func TestSecretFormat(t *testing.T) {
	s := FromString("mysecretvalue")

	for _, verb := range []string{"%v", "%s", "%#v", "%+v"} {
		output := fmt.Sprintf(verb, s)
		if output != "[SECRET]" {
			t.Fatalf("unexpected %s output: %q", verb, output)
		}
	}
	if s.String() != "[SECRET]" {
		t.Fatalf("unexpected String output: %q", s.String())
	}
	if s.Redacted() != "[SECRET]" {
		t.Fatalf("unexpected Redacted output: %q", s.Redacted())
	}
}

// TestSecretMarshalText tests MarshalText redaction.
func TestSecretMarshalText(t *testing.T) {
	s := FromString("textdata")
	out, err := s.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(out) != "[SECRET]" {
		t.Fatalf("unexpected MarshalText output: %q", string(out))
	}
}

// TestSecretFromBytes tests FromBytes makes an independent copy.
func TestSecretFromBytes(t *testing.T) {
	original := []byte("frombytes")
	s := FromBytes(original)

	if !bytes.Equal([]byte(s), original) {
		t.Fatalf("FromBytes didn't copy content correctly")
	}

	original[0] = 'X'
	if s[0] != 'f' {
		t.Fatalf("FromBytes didn't make independent copy, original affected")
	}
}

// TestSecretZeroNil tests Zero on nil pointers and nil values.
func TestSecretZeroNil(t *testing.T) {
	var p *Secret
	p.Zero() // must not panic

	s := Secret(nil)
	(&s).Zero()
	if s != nil {
		t.Fatalf("Zero should leave nil Secret as nil")
	}
}

// TestSecretZeroAndVerify tests that Zero truly overwrites bytes.
func TestSecretZeroAndVerify(t *testing.T) {
	s := FromString("password123")

	if err := s.Use(func(b []byte) error {
		for _, v := range b {
			if v == 0 {
				return errors.New("secret already zeroed")
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	(&s).Zero()

	if err := s.Use(func(b []byte) error {
		for i, v := range b {
			if v != 0 {
				return fmt.Errorf("byte %d is %d, expected 0", i, v)
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("post-zero verification failed: %v", err)
	}
}
