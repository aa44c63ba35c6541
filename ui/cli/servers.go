// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/logging"
	"github.com/veygo/sshvault/internal/model"
	"github.com/veygo/sshvault/internal/vault"
)

var (
	flagName  string
	flagHost  string
	flagPort  string
	flagUser  string
	flagShell string
)

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&flagName, "name", "", "display name")
		c.Flags().StringVar(&flagHost, "host", "", "host name or IP address")
		c.Flags().StringVar(&flagPort, "port", "", "SSH port (default 22)")
		c.Flags().StringVar(&flagUser, "user", "", "login user")
		c.Flags().StringVar(&flagShell, "shell", "", "remote shell (default bash)")
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, _, err := openStores()
		if err != nil {
			return err
		}

		all := servers.All()
		if len(all) == 0 {
			fmt.Println(i18n.T("list.empty"))
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTARGET\tSHELL\tID")
		for _, s := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.String(), s.ShellOrDefault(), s.ID)
		}
		return w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server to the vault",
	Long: `Add a server entry. Metadata is taken from flags; the password is
prompted for interactively so it never lands in shell history. Leave the
password empty to authenticate with a key file or the SSH agent instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := model.Server{
			Name:  flagName,
			IP:    flagHost,
			Port:  flagPort,
			User:  flagUser,
			Shell: flagShell,
		}
		if err := s.Validate(); err != nil {
			return err
		}

		servers, vs, err := openStores()
		if err != nil {
			return err
		}
		defer vs.Lock()

		password, err := readPassphrase(i18n.T("prompt.password"))
		if err != nil {
			return err
		}
		if err := unlockInteractive(vs); err != nil {
			return err
		}

		stored, err := servers.Add(s)
		if err != nil {
			return err
		}
		if password != "" {
			if err := vs.Add(stored.ID, password); err != nil {
				// Keep metadata and vault consistent: a server without its
				// password record is fine, the reverse is not.
				return err
			}
		}
		logging.Infof("%s", i18n.T("msg.server_added"))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a server entry",
	Long: `Edit a server entry. Only the given flags change; the password is
prompted for and kept unchanged when left empty.`,
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
		if flagName != "" {
			s.Name = flagName
		}
		if flagHost != "" {
			s.IP = flagHost
		}
		if flagPort != "" {
			s.Port = flagPort
		}
		if flagUser != "" {
			s.User = flagUser
		}
		if flagShell != "" {
			s.Shell = flagShell
		}
		if err := s.Validate(); err != nil {
			return err
		}

		password, err := readPassphrase(i18n.T("prompt.password"))
		if err != nil {
			return err
		}
		if err := unlockInteractive(vs); err != nil {
			return err
		}

		if err := servers.Update(s); err != nil {
			return err
		}
		if password != "" {
			if err := vs.Upsert(s.ID, password); err != nil {
				return err
			}
		}
		logging.Infof("%s", i18n.T("msg.server_updated"))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a server and its stored password",
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

		if err := servers.Delete(s.ID); err != nil {
			return err
		}
		if err := vs.Delete(s.ID); err != nil && !errors.Is(err, vault.ErrNotFound) {
			return err
		}
		logging.Infof("%s", i18n.T("msg.server_deleted"))
		return nil
	},
}
