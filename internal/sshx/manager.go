// internal/sshx/manager.go

// Package sshx establishes authenticated sessions to remote devices, with
// key/password fallback and on-device key provisioning.
package sshx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"pideploy/internal/config"
	"pideploy/internal/models"
	"pideploy/internal/pderr"
)

// DefaultConnectTimeout bounds the SSH dial when the caller does not set one.
const DefaultConnectTimeout = 10 * time.Second

// dialFunc opens an authenticated session against an address. Split out so
// tests can substitute the network.
type dialFunc func(ctx context.Context, addr, user string, auth ssh.AuthMethod, timeout time.Duration) (Session, error)

// Manager opens authenticated sessions. Successful password-only logins are
// upgraded to key authentication by provisioning a key pair on the device
// and persisting the file paths back into the connection store.
type Manager struct {
	store   *config.Store
	logger  *slog.Logger
	timeout time.Duration

	lookupHost    func(ctx context.Context, host string) ([]string, error)
	dial          dialFunc
	forgetHostKey func(addr string) error
}

// NewManager builds a connection manager over the given store.
func NewManager(store *config.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:         store,
		logger:        logger,
		timeout:       DefaultConnectTimeout,
		lookupHost:    net.DefaultResolver.LookupHost,
		dial:          sshDial,
		forgetHostKey: forgetKnownHost,
	}
}

// SetTimeout overrides the dial timeout.
func (m *Manager) SetTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

// Connect opens an authenticated session to the device described by info.
// Key authentication is attempted first when a key path is recorded; on
// authentication failure the stored password is tried. A successful
// password login provisions device-generated keys for future connections,
// and a still-valid key that stopped working (typically a re-imaged device)
// is re-authorized. A re-imaged device also presents a new host key; when a
// stored password is available the stale pin is replaced instead of
// erroring. Every outcome is either a live Session or a typed error; no
// half-open session is ever returned.
func (m *Manager) Connect(ctx context.Context, info *models.ConnectionInfo) (Session, error) {
	if err := info.Validate(); err != nil {
		return nil, pderr.Wrap(pderr.CodeAuthFailure, "invalid connection entry", err)
	}

	addr, err := m.resolveAddress(ctx, info)
	if err != nil {
		return nil, err
	}

	keyTried := false
	if info.AuthMode() == models.AuthModeKey {
		keyTried = true
		sess, err := m.dialWithKey(ctx, addr, info)
		if err == nil {
			return sess, nil
		}
		recoverable := pderr.HasCode(err, pderr.CodeAuthFailure) ||
			pderr.HasCode(err, pderr.CodeHostKeyMismatch)
		if !recoverable || info.Password == "" {
			return nil, err
		}
		m.logger.Warn("key authentication failed, falling back to password",
			"connection", info.Name())
	}

	if info.Password == "" {
		return nil, pderr.Newf(pderr.CodeAuthFailure,
			"no usable credentials for %s", info.Name())
	}

	sess, err := m.dial(ctx, addr, info.User, ssh.Password(info.Password), m.timeout)
	if err != nil && pderr.HasCode(err, pderr.CodeHostKeyMismatch) {
		// A changed host key on an entry we hold a password for is the
		// re-image signature. Drop the stale pin and redial; first-use
		// recording picks up the new key.
		m.logger.Warn("host key changed, replacing the recorded entry",
			"connection", info.Name(), "address", addr)
		if ferr := m.forgetHostKey(addr); ferr != nil {
			return nil, ferr
		}
		sess, err = m.dial(ctx, addr, info.User, ssh.Password(info.Password), m.timeout)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case keyTried:
		// The password still works but the recorded key does not: the
		// device was most likely re-imaged. Re-authorize the key we
		// already hold rather than erroring. This silently re-establishes
		// trust; see the audit note in the command output.
		m.logger.Warn("re-authorizing existing key on device",
			"connection", info.Name())
		if err := m.reauthorizeKey(ctx, sess, info); err != nil {
			sess.Close()
			return nil, err
		}
	case info.AuthMode() == models.AuthModePassword:
		// First password-only success: provision keys on the device and
		// persist the paths so future connections are key-based.
		if err := m.provisionKeys(ctx, sess, info); err != nil {
			sess.Close()
			return nil, err
		}
	}

	return sess, nil
}

// resolveAddress turns the stored host into a dialable address. Numeric
// hosts skip DNS; a lookup failure is terminal.
func (m *Manager) resolveAddress(ctx context.Context, info *models.ConnectionInfo) (string, error) {
	host := info.Host
	if net.ParseIP(host) == nil {
		addrs, err := m.lookupHost(ctx, host)
		if err != nil || len(addrs) == 0 {
			return "", pderr.Wrap(pderr.CodeDNSFailure,
				fmt.Sprintf("cannot resolve host %s", host), err).
				WithContext("host", host)
		}
		host = addrs[0]
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", info.Port)), nil
}

// dialWithKey reads and parses the recorded private key and dials with it.
// A missing or unparsable key file degrades to an auth failure so the
// password fallback can run.
func (m *Manager) dialWithKey(ctx context.Context, addr string, info *models.ConnectionInfo) (Session, error) {
	keyData, err := os.ReadFile(info.PrivateKeyPath)
	if err != nil {
		return nil, pderr.Wrap(pderr.CodeAuthFailure, "failed to read private key", err).
			WithContext("path", info.PrivateKeyPath)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, pderr.Wrap(pderr.CodeAuthFailure, "failed to parse private key", err).
			WithContext("path", info.PrivateKeyPath)
	}
	return m.dial(ctx, addr, info.User, ssh.PublicKeys(signer), m.timeout)
}

// sshDial is the production dialer. It classifies failures into the typed
// connection errors: authentication rejections, timeouts, and everything
// else that keeps a session from opening.
func sshDial(ctx context.Context, addr, user string, auth ssh.AuthMethod, timeout time.Duration) (Session, error) {
	hostKey, err := hostKeyCallback()
	if err != nil {
		return nil, pderr.Wrap(pderr.CodeConnectionFailure, "host key setup failed", err)
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}

	// ssh.Dial has its own timeout for the TCP leg but not the handshake;
	// run it off-thread and race the context like the rest of the codebase.
	type dialResult struct {
		client *ssh.Client
		err    error
	}
	resCh := make(chan dialResult, 1)
	go func() {
		client, err := ssh.Dial("tcp", addr, cfg)
		resCh <- dialResult{client, err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, classifyDialError(addr, res.err)
		}
		host, _, _ := net.SplitHostPort(addr)
		return newSession(res.client, user, host), nil
	case <-ctx.Done():
		go func() {
			if res := <-resCh; res.client != nil {
				res.client.Close()
			}
		}()
		return nil, pderr.Wrap(pderr.CodeTimeout,
			fmt.Sprintf("connection to %s cancelled", addr), ctx.Err())
	}
}

func classifyDialError(addr string, err error) error {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) && len(keyErr.Want) > 0 {
		return pderr.Wrap(pderr.CodeHostKeyMismatch,
			fmt.Sprintf("host key for %s does not match the recorded one", addr), err).
			WithContext("remedy", "reconnect with a stored password to replace the recorded key")
	}
	if strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "no supported methods remain") {
		return pderr.Wrap(pderr.CodeAuthFailure,
			fmt.Sprintf("authentication rejected by %s", addr), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return pderr.Wrap(pderr.CodeTimeout,
			fmt.Sprintf("connection to %s timed out", addr), err)
	}
	return pderr.Wrap(pderr.CodeConnectionFailure,
		fmt.Sprintf("failed to connect to %s", addr), err)
}
