// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/logging"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/session"
	"github.com/veygo/sshvault/internal/vault"
)

var pushCmd = &cobra.Command{
	Use:   "push <name|user@host> <local-file> <remote-path>",
	Short: "Copy a local file to a server over SFTP",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServerConnection(args[0], func(sess *session.Session) error {
			if err := sess.Push(args[1], args[2]); err != nil {
				return err
			}
			logging.Infof("pushed %s to %s", args[1], args[2])
			return nil
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <name|user@host> <remote-file> [local-path]",
	Short: "Copy a remote file from a server over SFTP",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := ""
		if len(args) == 3 {
			local = args[2]
		}
		return withServerConnection(args[0], func(sess *session.Session) error {
			if err := sess.Pull(args[1], local); err != nil {
				return err
			}
			logging.Infof("pulled %s", args[1])
			return nil
		})
	},
}

// withServerConnection resolves a server, unlocks the vault if password
// auth might be needed, connects and hands the open session to fn. An
// ad-hoc "user@host" target bypasses the stores and authenticates with a
// key file or the SSH agent.
func withServerConnection(target string, fn func(*session.Session) error) error {
	servers, vs, err := openStores()
	if err != nil {
		return err
	}
	defer vs.Lock()

	s, resolveErr := resolveServer(servers, target)
	if resolveErr != nil {
		adhoc, ok := adHocTarget(target)
		if !ok {
			return resolveErr
		}
		s = adhoc
	} else if flagKeyFile == "" && !flagAgent {
		if err := unlockInteractive(vs); err != nil {
			return err
		}
	}

	sess, err := connectToServer(s, vs)
	if err != nil {
		return err
	}
	defer sess.Close()

	return fn(sess)
}

// adHocTarget turns a "user@host" or "user@host:port" string into a
// transient server entry that never touches the stores.
func adHocTarget(target string) (model.Server, bool) {
	parts := splitUserHost(target)
	if parts == nil {
		return model.Server{}, false
	}
	host, port := parts[1], ""
	if h, p, err := net.SplitHostPort(parts[1]); err == nil {
		host, port = h, p
	}
	if host == "" {
		return model.Server{}, false
	}
	return model.Server{Name: target, IP: host, User: parts[0], Port: port}, true
}

// connectToServer opens an SSH connection with the server's stored
// credentials and the pinned host keys.
func connectToServer(s model.Server, vs *vault.Store) (*session.Session, error) {
	auth, err := serverAuth(s, vs)
	if err != nil {
		return nil, err
	}
	defer auth.Zero()

	dir, err := config.Dir(settings)
	if err != nil {
		return nil, err
	}
	hostKeys, err := session.OpenHostKeyStore(filepath.Join(dir, config.HostsFile))
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		Timeout:  time.Duration(settings.ConnectTimeout) * time.Second,
		TermType: settings.Term,
		HostKeys: hostKeys,
	}
	sess, err := session.Connect(s.User, auth, s.IP, s.PortOrDefault(), opts)
	if err != nil {
		if session.IsAuthError(err) || errors.Is(err, session.ErrAuth) {
			return nil, fmt.Errorf("%s: %w", i18n.T("error.auth"), err)
		}
		return nil, fmt.Errorf("%s: %w", i18n.T("error.connect"), err)
	}
	return sess, nil
}
