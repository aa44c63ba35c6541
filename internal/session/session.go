// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session opens authenticated SSH connections and bridges the local
// terminal to an interactive remote shell. It owns the concurrency of the
// copy loop, window resizing and exit-code handling; the wire protocol is
// golang.org/x/crypto/ssh's job.
package session

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/veygo/sshvault/internal/logging"
)

// Options tune a connection attempt.
type Options struct {
	// Timeout bounds the TCP connect and SSH handshake. Zero means the
	// default of 10 seconds; an unauthenticated peer must not be able to
	// hold the client forever.
	Timeout time.Duration

	// TermType is the terminal type requested for the PTY. Empty means the
	// local TERM variable, falling back to "xterm".
	TermType string

	// HostKeys, when set, enforces trust-on-first-use pinning. When nil any
	// host key is accepted, matching plain password-manager behavior; the
	// CLI always passes a store.
	HostKeys *HostKeyStore
}

// DefaultTimeout bounds connection attempts when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Session is one authenticated SSH connection. A session runs at most one
// interactive command at a time and is closed exactly once.
type Session struct {
	client    *ssh.Client
	termType  string
	closeOnce sync.Once
	closeErr  error
}

// Connect dials host:port and authenticates as user with the single method
// described by auth. Authentication is attempted exactly once; any retry or
// credential re-prompt policy belongs to the caller.
//
// The returned error unwraps to ErrAuth when the server rejected the
// credentials and to ErrConnect for transport-level failures, so callers can
// present the two very differently.
func Connect(user string, auth Auth, host, port string, opts Options) (*Session, error) {
	method, err := auth.method()
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if opts.HostKeys != nil {
		hostKeyCallback = opts.HostKeys.Callback()
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{method},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	if port == "" {
		port = "22"
	}
	addr := net.JoinHostPort(host, port)

	logging.Debugf("dialing %s as %s", addr, user)
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		if IsAuthError(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrAuth, addr, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, addr, err)
	}

	termType := opts.TermType
	if termType == "" {
		termType = os.Getenv("TERM")
	}
	if termType == "" {
		termType = "xterm"
	}

	return &Session{client: client, termType: termType}, nil
}

// Run executes command interactively: it requests a PTY sized to the local
// terminal, starts the command and bridges bytes in both directions until
// the command exits or ctx is canceled. It returns the remote exit code.
//
// On an I/O failure mid-session the returned error describes the side that
// failed and the session is left in a state where Close is still safe.
func (s *Session) Run(ctx context.Context, command string, term Terminal) (int, error) {
	proc, err := s.client.NewSession()
	if err != nil {
		return -1, fmt.Errorf("opening channel: %w", err)
	}
	defer proc.Close()

	return runBridge(ctx, proc, term, s.termType, command)
}

// Close sends a polite disconnect. Safe to call after a failed Run and safe
// to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}
