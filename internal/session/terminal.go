// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// Terminal is the local side of the bridge: a byte source (keystrokes), a
// byte sink (display) and a way to ask for the current dimensions. The
// bridge never touches os.Stdin/os.Stdout directly so tests can drive it
// with buffers.
type Terminal interface {
	io.Reader
	io.Writer

	// Size returns the current width and height in cells.
	Size() (width, height int, err error)

	// CancelInput aborts a pending Read. After cancellation reads fail, so
	// the input pump can be shut down when the remote side exits first.
	CancelInput() bool
}

// stdTerminal is the real local terminal on stdin/stdout.
type stdTerminal struct {
	in  cancelreader.CancelReader
	out *os.File
}

// NewStdTerminal wraps the process's stdin/stdout as a Terminal. The reader
// is cancelable so a remote-initiated exit does not leave a goroutine
// swallowing the next keystroke.
func NewStdTerminal() (Terminal, error) {
	in, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("preparing terminal input: %w", err)
	}
	return &stdTerminal{in: in, out: os.Stdout}, nil
}

func (t *stdTerminal) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t *stdTerminal) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *stdTerminal) CancelInput() bool           { return t.in.Cancel() }

func (t *stdTerminal) Size() (int, int, error) {
	return term.GetSize(int(t.out.Fd()))
}

// RawMode switches the local terminal into raw mode and returns a restore
// function. The restore must run before any error is shown to the user,
// reporting through a half-raw terminal is unreadable.
func RawMode() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
