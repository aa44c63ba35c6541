// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for sshvault.
//
// Usage:
//
//	go run . [flags]
//	./sshvault [flags]
//
// Running without a subcommand launches the interactive TUI. See --help
// for the subcommands.
package main

import (
	"os"

	"github.com/veygo/sshvault/internal/logging"
	"github.com/veygo/sshvault/ui/cli"
)

// main is the entrypoint for the sshvault CLI.
func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
