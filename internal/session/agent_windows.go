//go:build windows
// +build windows

// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Windows-specific lookup of the running SSH agent.
package session

import (
	"net"
	"os"

	"github.com/Microsoft/go-winio"
	"github.com/davidmz/go-pageant"
	"golang.org/x/crypto/ssh/agent"
)

// getSSHAgent attempts to connect to a running SSH agent on Windows. It
// first tries Pageant-compatible agents (PuTTY, gpg-agent), then falls back
// to the OpenSSH agent named pipe, honoring SSH_AUTH_SOCK when set.
func getSSHAgent() agent.Agent {
	if pageant.Available() {
		return pageant.New()
	}

	var agentConn net.Conn
	var err error
	if sshAgentSocket := os.Getenv("SSH_AUTH_SOCK"); sshAgentSocket != "" {
		agentConn, err = winio.DialPipe(sshAgentSocket, nil)
	} else {
		agentConn, err = winio.DialPipe(`\\.\pipe\openssh-ssh-agent`, nil)
	}

	if err == nil && agentConn != nil {
		return agent.NewClient(agentConn)
	}
	return nil
}
