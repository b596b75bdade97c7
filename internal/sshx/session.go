// internal/sshx/session.go

package sshx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	scp "github.com/bramvdbogaerde/go-scp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Session is an authenticated remote connection used to run commands and
// transfer files. A session is either live or closed, never half-open; all
// blocking operations take a context.
type Session interface {
	// Name returns the user@host identity of the session.
	Name() string

	// Run executes a remote command and returns its trimmed stdout.
	Run(ctx context.Context, command string) (string, error)

	// Start launches a remote command without waiting for it to finish.
	Start(ctx context.Context, command string) error

	// UploadFile copies one local file to the device.
	UploadFile(ctx context.Context, localPath, remotePath string) error

	// UploadDir mirrors a local directory tree to the device.
	UploadDir(ctx context.Context, localDir, remoteDir string) error

	// ReadFile fetches a remote file's contents.
	ReadFile(ctx context.Context, remotePath string) ([]byte, error)

	// Close tears down the underlying connection.
	Close() error
}

// sshSession implements Session over golang.org/x/crypto/ssh, with SCP for
// single-file pushes and SFTP for directory trees.
type sshSession struct {
	client *ssh.Client
	user   string
	host   string
}

func newSession(client *ssh.Client, user, host string) *sshSession {
	return &sshSession{client: client, user: user, host: host}
}

func (s *sshSession) Name() string {
	return fmt.Sprintf("%s@%s", s.user, s.host)
}

// Run executes a remote command and returns its trimmed stdout. Stderr is
// folded into the returned error on failure.
func (s *sshSession) Run(ctx context.Context, command string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(command)
	}()

	select {
	case err := <-done:
		if err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return "", fmt.Errorf("remote command failed: %s", msg)
		}
		return strings.TrimSpace(stdout.String()), nil
	case <-ctx.Done():
		// Closing the session unblocks sess.Run.
		sess.Close()
		<-done
		return "", ctx.Err()
	}
}

// Start launches a remote command without waiting for it to finish. Used to
// leave the deployed program running after the tool exits.
func (s *sshSession) Start(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	// Closing the session right away would tear the remote process down
	// before nohup detaches it, so Wait reaps it in the background instead.
	if err := sess.Start(command); err != nil {
		sess.Close()
		return fmt.Errorf("failed to start remote command: %w", err)
	}
	go func() {
		_ = sess.Wait()
		sess.Close()
	}()
	return nil
}

func (s *sshSession) UploadFile(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}

	client, err := scp.NewClientBySSH(s.client)
	if err != nil {
		return fmt.Errorf("failed to create scp client: %w", err)
	}
	defer client.Close()

	if err := client.Copy(ctx, f, remotePath, "0644", info.Size()); err != nil {
		return fmt.Errorf("scp upload failed: %w", err)
	}
	return nil
}

// UploadDir mirrors a local directory tree to the device over SFTP. The
// remote directory is created when missing; existing files are overwritten.
func (s *sshSession) UploadDir(ctx context.Context, localDir, remoteDir string) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("failed to create sftp client: %w", err)
	}
	defer client.Close()

	return filepath.WalkDir(localDir, func(localPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		remotePath, err := remoteTarget(remoteDir, localDir, localPath)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if err := client.MkdirAll(remotePath); err != nil {
				return fmt.Errorf("failed to create remote directory %s: %w", remotePath, err)
			}
			return nil
		}

		src, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer src.Close()

		dst, err := client.Create(remotePath)
		if err != nil {
			return fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("failed to copy %s: %w", remotePath, err)
		}

		// Carry the local execute bit across.
		if info, err := d.Info(); err == nil {
			_ = client.Chmod(remotePath, info.Mode().Perm())
		}
		return nil
	})
}

// remoteTarget maps a file under localDir to its POSIX path under remoteDir.
func remoteTarget(remoteDir, localDir, localPath string) (string, error) {
	rel, err := filepath.Rel(localDir, localPath)
	if err != nil {
		return "", err
	}
	return path.Join(remoteDir, filepath.ToSlash(rel)), nil
}

func (s *sshSession) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	defer client.Close()

	f, err := client.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (s *sshSession) Close() error {
	return s.client.Close()
}
