// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/logging"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/session"
	"github.com/veygo/sshvault/internal/vault"
)

var (
	flagKeyFile string
	flagAgent   bool
)

func init() {
	connectCmd.Flags().StringVarP(&flagKeyFile, "key", "k", "", "private key file to authenticate with")
	connectCmd.Flags().BoolVar(&flagAgent, "agent", false, "authenticate with the running SSH agent")
}

var connectCmd = &cobra.Command{
	Use:   "connect <name>",
	Short: "Open an interactive session to a server",
	Long: `Open an interactive SSH session to a stored server. The stored
password is used when the vault has one; otherwise authentication falls
back to the SSH agent, or to a key file given with --key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, vs, err := openStores()
		if err != nil {
			return err
		}
		defer vs.Lock()

		s, err := resolveServer(servers, args[0])
		if err != nil {
			return err
		}

		// Key and agent auth need no vault secret, so only unlock when the
		// password might be needed.
		if flagKeyFile == "" && !flagAgent {
			if err := unlockInteractive(vs); err != nil {
				return err
			}
		}

		code, err := runServerSession(cmd.Context(), s, vs)
		if err != nil {
			return err
		}
		if code != 0 {
			logging.Warnf("%s", i18n.Tf("msg.session_ended", map[string]interface{}{"Code": code}))
		}
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <name>",
	Short: "Copy a server's password to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, vs, err := openStores()
		if err != nil {
			return err
		}
		defer vs.Lock()

		s, err := resolveServer(servers, args[0])
		if err != nil {
			return err
		}
		if err := unlockInteractive(vs); err != nil {
			return err
		}

		password, err := vs.ResolvePassword(s.ID)
		if errors.Is(err, vault.ErrNotFound) {
			return fmt.Errorf("%s", i18n.T("error.record_not_found"))
		}
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(password); err != nil {
			return fmt.Errorf("%s: %w", i18n.T("error.clipboard"), err)
		}
		logging.Infof("%s", i18n.T("msg.password_copied"))
		return nil
	},
}

// serverAuth builds the authentication for a server: the stored password
// when the vault holds one, else a key file or the agent.
func serverAuth(s model.Server, vs *vault.Store) (session.Auth, error) {
	if flagKeyFile != "" {
		return session.KeyAuth(flagKeyFile), nil
	}
	if flagAgent || !vs.Unlocked() {
		return session.AgentAuth(), nil
	}

	password, err := vs.ResolvePassword(s.ID)
	if errors.Is(err, vault.ErrNotFound) {
		// No stored password for this server; the agent is the only option
		// left.
		return session.AgentAuth(), nil
	}
	if err != nil {
		return session.Auth{}, err
	}
	return session.PasswordAuth(password), nil
}

// runServerSession connects, switches the local terminal to raw mode and
// bridges it to the remote shell until the session ends. Returns the remote
// exit code.
func runServerSession(ctx context.Context, s model.Server, vs *vault.Store) (int, error) {
	sess, err := connectToServer(s, vs)
	if err != nil {
		return -1, err
	}
	defer sess.Close()

	term, err := session.NewStdTerminal()
	if err != nil {
		return -1, err
	}

	restore, err := session.RawMode()
	if err != nil {
		return -1, err
	}

	// The remote session owns the terminal now; keep our own output down to
	// errors until it is back.
	logging.Quiet()
	code, runErr := sess.Run(ctx, s.ShellOrDefault(), term)
	restore()
	logging.SetDebug(verbose || settings.Debug)

	if runErr != nil {
		if errors.Is(runErr, session.ErrAbnormalClose) {
			return -1, fmt.Errorf("%s: %w", i18n.T("error.session"), runErr)
		}
		return -1, runErr
	}
	return code, nil
}
