// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vault implements the encrypted credential store: passphrase key
// derivation, authenticated encryption of the store file, and per-record
// password encryption.
//
// On disk the store is a single sealed blob:
//
//	iv(16) || AES-256-CTR ciphertext || HMAC-SHA256 tag(32)
//
// where the tag authenticates iv||ciphertext under the vault key. The tag is
// always verified before any ciphertext is decrypted or parsed.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	ivSize  = 16
	tagSize = sha256.Size
)

// applyCTR runs AES-256-CTR over data. CTR is symmetric, so the same
// function both encrypts and decrypts.
func applyCTR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

// computeTag returns HMAC-SHA256(key, iv || ciphertext).
func computeTag(key, iv, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// Seal encrypts plaintext under key with a fresh random IV and appends the
// authentication tag: iv || ciphertext || tag.
func Seal(key, plaintext []byte) ([]byte, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("%w: reading random iv: %v", ErrCrypto, err)
	}

	ciphertext, err := applyCTR(key, iv, plaintext)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, ivSize+len(ciphertext)+tagSize)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)
	blob = append(blob, computeTag(key, iv, ciphertext)...)
	return blob, nil
}

// Open verifies the tag of a sealed blob and, only then, decrypts it.
// A blob too short to hold an IV and a tag is ErrFormat; a tag mismatch is
// ErrIntegrity. The tag comparison is constant time.
func Open(key, blob []byte) ([]byte, error) {
	if len(blob) < ivSize+tagSize {
		return nil, fmt.Errorf("%w: sealed blob is %d bytes, need at least %d", ErrFormat, len(blob), ivSize+tagSize)
	}

	iv := blob[:ivSize]
	ciphertext := blob[ivSize : len(blob)-tagSize]
	tag := blob[len(blob)-tagSize:]

	if !hmac.Equal(tag, computeTag(key, iv, ciphertext)) {
		return nil, ErrIntegrity
	}

	return applyCTR(key, iv, ciphertext)
}

// fieldIV derives the per-record IV from the record's server ID: the first
// 16 bytes of SHA-256(id). A deterministic IV makes the ciphertext for a
// given (id, password, key) reproducible, at the cost of reusing the IV when
// the same record's password changes across vault versions. Hardening would
// store a random IV next to each field instead; that is a format change.
func fieldIV(id string) []byte {
	digest := sha256.Sum256([]byte(id))
	return digest[:ivSize]
}

// EncryptField encrypts one password under the vault key with the
// id-derived IV and returns the ciphertext hex-encoded.
func EncryptField(key []byte, id, password string) (string, error) {
	ciphertext, err := applyCTR(key, fieldIV(id), []byte(password))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ciphertext), nil
}

// DecryptField reverses EncryptField. CTR has no integrity check of its own;
// a wrong key yields garbage, not an error. Whole-file integrity is the
// sealed blob's job.
func DecryptField(key []byte, id, encrypted string) (string, error) {
	ciphertext, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: password field is not valid hex: %v", ErrFormat, err)
	}
	plaintext, err := applyCTR(key, fieldIV(id), ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
