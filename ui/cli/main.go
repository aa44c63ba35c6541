// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for sshvault using the Cobra
// library. It defines the root command, subcommands (list, add, connect,
// push, pull, export, ...) and the shared setup that loads settings and
// opens the stores.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veygo/sshvault/buildvars"
	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/logging"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/tui"
	"github.com/veygo/sshvault/internal/vault"
)

// version is set by the linker at build time.
var version = "dev"

var (
	cfgFile string
	verbose bool

	settings config.Settings
)

// maxPassphraseAttempts bounds interactive passphrase retries, matching the
// interactive UI.
const maxPassphraseAttempts = 3

// setupDefaultServices loads settings and initializes logging and
// translations. It runs before every command.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	var err error
	settings, err = config.Load(cmd, cfgFile)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if verbose || settings.Debug {
		logging.SetDebug(true)
	}
	i18n.SetLang(settings.Language)
	return nil
}

// Execute runs the CLI entrypoint. The main package calls this and handles
// process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command. Tests use it
// to build isolated instances.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sshvault",
		Short: "sshvault is an encrypted credential manager for SSH servers.",
		Long: `sshvault keeps server credentials in a passphrase-protected vault
and opens interactive SSH sessions with them. Server metadata lives in a
plain config file; passwords only ever touch disk encrypted.

Running without a subcommand launches the interactive TUI.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}
	cmd.Version = buildvars.VersionOrDefault(version)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file")
	cmd.PersistentFlags().String("language", "en", `UI language ("en")`)
	cmd.PersistentFlags().String("config-dir", "", "directory holding the vault files")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)
	cmd.AddCommand(editCmd)
	cmd.AddCommand(rmCmd)
	cmd.AddCommand(connectCmd)
	cmd.AddCommand(copyCmd)
	cmd.AddCommand(pushCmd)
	cmd.AddCommand(pullCmd)
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(importCmd)
	cmd.AddCommand(versionCmd)

	return cmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sshvault version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sshvault %s\n", buildvars.VersionOrDefault(version))
	},
}

// openStores loads the server list and the (still locked) vault from the
// config directory.
func openStores() (*config.ServerStore, *vault.Store, error) {
	dir, err := config.Dir(settings)
	if err != nil {
		return nil, nil, err
	}
	servers, err := config.LoadServers(dir)
	if err != nil {
		return nil, nil, err
	}
	vs := vault.NewStore(filepath.Join(dir, config.VaultFile))
	return servers, vs, nil
}

// readPassphrase prompts on the terminal with echo disabled.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

// unlockInteractive prompts for the vault passphrase, retrying a wrong one
// a bounded number of times. Corrupt vault files are not retried: typing
// the passphrase again cannot fix them.
func unlockInteractive(vs *vault.Store) error {
	for attempt := 1; ; attempt++ {
		pass, err := readPassphrase(i18n.T("prompt.passphrase"))
		if err != nil {
			return err
		}
		key := vault.DeriveKey(pass)
		err = vs.Unlock(key)
		if err == nil {
			return nil
		}
		if errors.Is(err, vault.ErrIntegrity) {
			logging.Errorf("%s", i18n.T("error.wrong_passphrase"))
			if attempt >= maxPassphraseAttempts {
				return fmt.Errorf("%s", i18n.T("error.too_many_attempts"))
			}
			continue
		}
		if errors.Is(err, vault.ErrFormat) || errors.Is(err, vault.ErrDecode) {
			return fmt.Errorf("%s: %w", i18n.T("error.vault_corrupt"), err)
		}
		return err
	}
}

// resolveServer finds a server by name, falling back to ID.
func resolveServer(servers *config.ServerStore, nameOrID string) (model.Server, error) {
	s, err := servers.ByName(nameOrID)
	if err == nil {
		return s, nil
	}
	if s, idErr := servers.ByID(nameOrID); idErr == nil {
		return s, nil
	}
	return model.Server{}, fmt.Errorf("%s", i18n.Tf("error.server_not_found", map[string]interface{}{"Name": nameOrID}))
}

// runInteractive drives the TUI loop: show the list, run the chosen
// session on the real terminal, then return to the list until the user
// quits.
func runInteractive(cmd *cobra.Command) error {
	servers, vs, err := openStores()
	if err != nil {
		return err
	}
	defer vs.Lock()

	for {
		result, err := tui.Run(servers, vs)
		if err != nil {
			return err
		}
		if result.ConnectTo == "" {
			return nil
		}

		s, err := servers.ByID(result.ConnectTo)
		if err != nil {
			return err
		}
		code, err := runServerSession(cmd.Context(), s, vs)
		if err != nil {
			logging.Errorf("%v", err)
			continue
		}
		if code != 0 {
			logging.Warnf("%s", i18n.Tf("msg.session_ended", map[string]interface{}{"Code": code}))
		}
	}
}

// splitUserHost parses "user@host" targets used by push/pull style
// commands. Returns nil when the format doesn't match.
func splitUserHost(target string) []string {
	user, host, ok := strings.Cut(target, "@")
	if !ok || user == "" || host == "" {
		return nil
	}
	return []string{user, host}
}
