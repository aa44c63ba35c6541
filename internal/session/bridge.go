// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/ssh"
)

// remoteProcess is the slice of an SSH session the bridge drives. It is
// satisfied by *ssh.Session; tests drive the bridge with a scripted fake.
type remoteProcess interface {
	RequestPty(termType string, height, width int, modes ssh.TerminalModes) error
	Start(command string) error
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.Reader, error)
	WindowChange(height, width int) error
	Wait() error
	Close() error
}

// runBridge attaches a PTY, starts command and pumps bytes between the
// local terminal and the remote process until the command exits or ctx is
// canceled. It returns the remote exit code.
//
// Semantics the rest of the program relies on:
//   - bytes flow in order, both directions, with no batching across reads;
//   - local EOF half-closes the remote stdin exactly once while remote
//     output keeps flowing;
//   - a window-size change is sent before remote output is flushed, so the
//     remote side learns the new dimensions no later than its next write
//     reaches the screen;
//   - the loop ends only with the remote exit status; a close without one is
//     ErrAbnormalClose, never a silent exit code 0.
func runBridge(ctx context.Context, proc remoteProcess, term Terminal, termType, command string) (int, error) {
	width, height, err := term.Size()
	if err != nil || width <= 0 || height <= 0 {
		width, height = 80, 24
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := proc.RequestPty(termType, height, width, modes); err != nil {
		return -1, fmt.Errorf("requesting pty: %w", err)
	}

	stdin, err := proc.StdinPipe()
	if err != nil {
		return -1, fmt.Errorf("opening remote stdin: %w", err)
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("opening remote stdout: %w", err)
	}

	if err := proc.Start(command); err != nil {
		return -1, fmt.Errorf("starting remote command: %w", err)
	}

	// Half-close of the remote input happens at most once, whether triggered
	// by local EOF, remote exit, or cancellation.
	var eofOnce sync.Once
	sendEOF := func() { eofOnce.Do(func() { _ = stdin.Close() }) }

	// Local input pump: one read, fully forwarded, then the next read.
	// Terminal input is human-speed; the remote write applies the transport's
	// own flow control.
	inErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, rerr := term.Read(buf)
			if n > 0 {
				if _, werr := stdin.Write(buf[:n]); werr != nil {
					if !errors.Is(werr, io.EOF) {
						inErr <- werr
					}
					return
				}
			}
			if rerr != nil {
				// EOF or canceled read: half-close and stop polling local
				// input for the rest of the session.
				sendEOF()
				return
			}
		}
	}()

	// Remote output pump. Before flushing received bytes, compare the local
	// terminal size against the last known one and notify the remote of any
	// change.
	outDone := make(chan error, 1)
	go func() {
		buf := make([]byte, 32*1024)
		lastW, lastH := width, height
		for {
			n, rerr := stdout.Read(buf)
			if n > 0 {
				if w, h, serr := term.Size(); serr == nil && (w != lastW || h != lastH) {
					_ = proc.WindowChange(h, w)
					lastW, lastH = w, h
				}
				if _, werr := term.Write(buf[:n]); werr != nil {
					outDone <- werr
					return
				}
			}
			if rerr != nil {
				if errors.Is(rerr, io.EOF) {
					outDone <- nil
				} else {
					outDone <- rerr
				}
				return
			}
		}
	}()

	waitCh := make(chan error, 1)
	go func() { waitCh <- proc.Wait() }()

	var waitErr error
	select {
	case waitErr = <-waitCh:
		// Remote command finished; fall through to drain remaining output.

	case werr := <-inErr:
		term.CancelInput()
		_ = proc.Close()
		<-waitCh
		return -1, fmt.Errorf("forwarding local input: %w", werr)

	case <-ctx.Done():
		term.CancelInput()
		sendEOF()
		_ = proc.Close()
		<-waitCh
		return -1, ctx.Err()
	}

	// Flush whatever the remote sent before its exit status; the pump ends
	// with the channel EOF that follows the status message.
	if werr := <-outDone; werr != nil {
		term.CancelInput()
		sendEOF()
		return -1, fmt.Errorf("writing to local terminal: %w", werr)
	}

	term.CancelInput()
	sendEOF()
	return exitStatus(waitErr)
}

// exitStatus maps the Wait error of a remote process to an exit code.
func exitStatus(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}

	var missing *ssh.ExitMissingError
	if errors.As(waitErr, &missing) {
		return -1, ErrAbnormalClose
	}

	var coded interface{ ExitStatus() int }
	if errors.As(waitErr, &coded) {
		return coded.ExitStatus(), nil
	}

	return -1, fmt.Errorf("remote session failed: %w", waitErr)
}
