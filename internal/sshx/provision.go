// internal/sshx/provision.go

package sshx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pideploy/internal/models"
)

// provisionKeys generates an ed25519 key pair on the device, authorizes the
// public half there, copies both halves into the local keys directory, and
// persists the paths into the connection store. After this runs, Connect
// prefers key authentication for the entry.
func (m *Manager) provisionKeys(ctx context.Context, sess Session, info *models.ConnectionInfo) error {
	workDir := fmt.Sprintf("/tmp/pideploy-keygen-%s", uuid.NewString())
	keyFile := workDir + "/id_ed25519"

	keygen := strings.Join([]string{
		fmt.Sprintf("mkdir -p %s", workDir),
		fmt.Sprintf("ssh-keygen -q -t ed25519 -N '' -C %q -f %s", info.Name(), keyFile),
	}, " && ")
	if _, err := sess.Run(ctx, keygen); err != nil {
		return fmt.Errorf("remote key generation failed: %w", err)
	}
	defer func() {
		// The private half must never linger on the device.
		_, _ = sess.Run(ctx, fmt.Sprintf("rm -rf %s", workDir))
	}()

	authorize := strings.Join([]string{
		"mkdir -p ~/.ssh",
		"chmod 700 ~/.ssh",
		fmt.Sprintf("cat %s.pub >> ~/.ssh/authorized_keys", keyFile),
		"chmod 600 ~/.ssh/authorized_keys",
	}, " && ")
	if _, err := sess.Run(ctx, authorize); err != nil {
		return fmt.Errorf("failed to authorize generated key: %w", err)
	}

	privateData, err := sess.ReadFile(ctx, keyFile)
	if err != nil {
		return fmt.Errorf("failed to fetch private key: %w", err)
	}
	publicData, err := sess.ReadFile(ctx, keyFile+".pub")
	if err != nil {
		return fmt.Errorf("failed to fetch public key: %w", err)
	}

	keysDir, err := m.store.KeysDir()
	if err != nil {
		return err
	}
	base := keyFileBase(info)
	privatePath := filepath.Join(keysDir, base)
	publicPath := privatePath + ".pub"

	if err := os.WriteFile(privatePath, privateData, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, publicData, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	info.SetKeyPaths(privatePath, publicPath)
	if err := m.store.Update(info); err != nil {
		return fmt.Errorf("failed to persist key paths: %w", err)
	}

	m.logger.Info("provisioned key authentication",
		"connection", info.Name(), "key", privatePath)
	return nil
}

// reauthorizeKey re-appends the locally held public key to the device's
// authorized_keys. Run when key auth failed but the stored password still
// works, which usually means the device was re-imaged.
func (m *Manager) reauthorizeKey(ctx context.Context, sess Session, info *models.ConnectionInfo) error {
	publicData, err := os.ReadFile(info.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read local public key: %w", err)
	}
	pub := strings.TrimSpace(string(publicData))

	script := strings.Join([]string{
		"mkdir -p ~/.ssh",
		"chmod 700 ~/.ssh",
		"touch ~/.ssh/authorized_keys",
		fmt.Sprintf("grep -qxF %q ~/.ssh/authorized_keys || echo %q >> ~/.ssh/authorized_keys", pub, pub),
		"chmod 600 ~/.ssh/authorized_keys",
	}, " && ")
	if _, err := sess.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to re-authorize key: %w", err)
	}
	return nil
}

// keyFileBase derives a filesystem-safe key file name from the connection
// identity.
func keyFileBase(info *models.ConnectionInfo) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, info.Name())
	return safe + "_ed25519"
}
