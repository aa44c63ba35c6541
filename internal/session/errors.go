// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"strings"
)

// Sentinel errors for connection and session failures. Callers distinguish
// them with errors.Is so the UI can tell "host unreachable" from "wrong
// credentials" from "session died mid-flight".
var (
	// ErrConnect covers network-level failures: DNS, refused, timeout.
	ErrConnect = errors.New("could not connect to host")

	// ErrAuth means the transport worked but the server rejected the
	// credentials. Never retried internally; re-prompting is the caller's
	// decision.
	ErrAuth = errors.New("authentication rejected")

	// ErrAbnormalClose means the remote channel closed without ever
	// reporting an exit status. Reported as an error instead of inventing
	// exit code 0.
	ErrAbnormalClose = errors.New("remote session closed without exit status")

	// ErrNoAgent means agent authentication was requested but no running
	// SSH agent could be found.
	ErrNoAgent = errors.New("no ssh agent available")
)

// IsAuthError reports whether an error from the SSH handshake is an
// authentication rejection rather than a transport failure. The ssh package
// does not expose a typed error for this, so this is a conservative
// string-based check.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "no supported methods remain")
}

// IsConnectionTimeoutError reports whether an error looks like a network
// timeout.
func IsConnectionTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "i/o timeout")
}

// IsConnectionRefusedError reports whether an error looks like the host
// actively refusing or being unreachable.
func IsConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "no such host")
}
