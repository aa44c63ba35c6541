// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import "errors"

// Sentinel errors for the vault. Callers match with errors.Is and decide the
// policy (re-prompt, abort, report); the vault itself never retries.
var (
	// ErrCrypto means the cipher could not be initialized. Fatal for the
	// operation that hit it.
	ErrCrypto = errors.New("cipher initialization failed")

	// ErrIntegrity means the authentication tag did not match. Either the
	// passphrase is wrong or the file was tampered with; the vault cannot
	// tell the two apart and the plaintext is never touched.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrFormat means the sealed blob is structurally invalid (too short to
	// hold IV and tag, or a field is not valid hex). No decryption is
	// attempted and no repair is possible.
	ErrFormat = errors.New("malformed vault data")

	// ErrDecode means the blob authenticated and decrypted but the plaintext
	// is not a valid record list.
	ErrDecode = errors.New("vault payload could not be parsed")

	// ErrNotFound means no record exists for the requested server ID.
	ErrNotFound = errors.New("record not found")

	// ErrPersist means the filesystem write failed. The in-memory state has
	// been rolled back; nothing changed from the caller's point of view.
	ErrPersist = errors.New("vault could not be persisted")

	// ErrLocked means a record operation was attempted before Unlock.
	ErrLocked = errors.New("vault is locked")
)
