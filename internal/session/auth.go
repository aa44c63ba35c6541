// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/veygo/sshvault/internal/security"
)

// Auth selects exactly one authentication mechanism for a connection.
// Precedence: password, then private key file, then the running SSH agent.
// Exactly one method is offered to the server; there is no silent fallback
// between them, so a rejection is always attributable.
type Auth struct {
	Password security.Secret
	KeyPath  string
	UseAgent bool
}

// PasswordAuth builds an Auth carrying a plaintext password.
func PasswordAuth(password string) Auth {
	return Auth{Password: security.FromString(password)}
}

// KeyAuth builds an Auth reading a private key from path.
func KeyAuth(path string) Auth {
	return Auth{KeyPath: path}
}

// AgentAuth builds an Auth that defers to the running SSH agent.
func AgentAuth() Auth {
	return Auth{UseAgent: true}
}

// method resolves the Auth into the single ssh.AuthMethod to offer.
func (a Auth) method() (ssh.AuthMethod, error) {
	switch {
	case len(a.Password) > 0:
		return ssh.Password(string(a.Password.Bytes())), nil

	case a.KeyPath != "":
		pem, err := os.ReadFile(a.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading private key %s: %w", a.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key %s: %w", a.KeyPath, err)
		}
		return ssh.PublicKeys(signer), nil

	case a.UseAgent:
		agentClient := getSSHAgent()
		if agentClient == nil {
			return nil, ErrNoAgent
		}
		return ssh.PublicKeysCallback(agentClient.Signers), nil

	default:
		return nil, fmt.Errorf("no authentication method configured")
	}
}

// Zero scrubs the password material held by the Auth.
func (a *Auth) Zero() {
	a.Password.Zero()
}
