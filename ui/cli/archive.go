// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veygo/sshvault/internal/archive"
	"github.com/veygo/sshvault/internal/config"
	"github.com/veygo/sshvault/internal/i18n"
	"github.com/veygo/sshvault/internal/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the vault as a compressed snapshot",
	Long: `Export the server list, the encrypted vault and the pinned host keys
as one compressed file. Passwords stay encrypted inside the snapshot; the
vault passphrase is still needed after an import.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir(settings)
		if err != nil {
			return err
		}

		path := archive.DefaultExportName(time.Now())
		if len(args) == 1 {
			path = args[0]
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := archive.Export(dir, f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logging.Infof("%s", i18n.Tf("msg.exported", map[string]interface{}{"Path": path}))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the vault from a snapshot",
	Long: `Restore the vault files from a snapshot produced by export. Existing
files are replaced; the snapshot's own passphrase applies afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir(settings)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		if err := archive.Import(dir, f); err != nil {
			return err
		}
		logging.Infof("%s", i18n.Tf("msg.imported", map[string]interface{}{"Path": args[0]}))
		return nil
	},
}
