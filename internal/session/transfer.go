// Copyright (c) 2026 sshvault authors
// sshvault - encrypted SSH credential manager
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
)

// Push uploads a local file to remotePath over SFTP. The upload goes to a
// temporary name next to the destination and is moved into place with a
// rename, so the remote side never observes a half-written file.
func (s *Session) Push(localPath, remotePath string) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("starting sftp subsystem: %w", err)
	}
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer src.Close()

	tmpPath := remotePath + fmt.Sprintf(".sshvault.%d", time.Now().UnixNano())
	dst, err := client.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating remote file %s: %w", tmpPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = client.Remove(tmpPath)
		return fmt.Errorf("uploading to %s: %w", remotePath, err)
	}
	if err := dst.Close(); err != nil {
		_ = client.Remove(tmpPath)
		return fmt.Errorf("finishing upload to %s: %w", remotePath, err)
	}

	if info, err := os.Stat(localPath); err == nil {
		_ = client.Chmod(tmpPath, info.Mode().Perm())
	}

	if err := client.Rename(tmpPath, remotePath); err != nil {
		_ = client.Remove(tmpPath)
		return fmt.Errorf("moving %s into place: %w", remotePath, err)
	}
	return nil
}

// Pull downloads remotePath into localPath over SFTP.
func (s *Session) Pull(remotePath, localPath string) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("starting sftp subsystem: %w", err)
	}
	defer client.Close()

	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("opening remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	if localPath == "" {
		localPath = path.Base(remotePath)
	}
	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return dst.Close()
}
