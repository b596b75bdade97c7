// internal/models/connection.go

package models

import (
	"errors"
	"fmt"
	"net"
)

// AuthMode tells which authentication path a connection currently uses.
// Exactly one path is active at a time: a recorded private key wins over a
// stored password.
type AuthMode int

const (
	AuthModePassword AuthMode = iota
	AuthModeKey
)

func (m AuthMode) String() string {
	if m == AuthModeKey {
		return "key"
	}
	return "password"
}

// ConnectionInfo describes one remote device entry in the connection store.
// Name is derived, never stored, so it cannot go stale when Host or User
// change.
type ConnectionInfo struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	PublicKeyPath  string `json:"public_key_path,omitempty"`
	IsDefault      bool   `json:"is_default"`
}

// Name derives the display/store key for this connection.
func (c *ConnectionInfo) Name() string {
	return fmt.Sprintf("%s@%s", c.User, c.Host)
}

// AuthMode reports the active authentication path.
func (c *ConnectionInfo) AuthMode() AuthMode {
	if c.PrivateKeyPath != "" {
		return AuthModeKey
	}
	return AuthModePassword
}

// Address returns the dial target in host:port form.
func (c *ConnectionInfo) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// Validate checks the fields needed before a connection attempt.
func (c *ConnectionInfo) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.User == "" {
		return errors.New("user cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Password == "" && c.PrivateKeyPath == "" {
		return errors.New("either a password or a private key path is required")
	}
	return nil
}

// SetKeyPaths records freshly provisioned key files. Future connections
// become key-based via AuthMode.
func (c *ConnectionInfo) SetKeyPaths(privatePath, publicPath string) {
	c.PrivateKeyPath = privatePath
	c.PublicKeyPath = publicPath
}

// Clone returns a copy of the connection entry.
func (c *ConnectionInfo) Clone() *ConnectionInfo {
	dup := *c
	return &dup
}
