// internal/config/config.go

// Package config owns the locally persisted state: the connection store, the
// per-project deployment settings, and the tool configuration file. The
// connection store and settings are whole-file JSON documents, read and
// written in full on every change.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pideploy/internal/models"
)

const (
	DefaultConfigDir          = ".config/pideploy"
	DefaultConnectionFileName = "connections.json"
	DefaultKeysDir            = "keys"
	DefaultFilePerms          = 0600
)

// GetDefaultConfigPath returns the default connection store path under the
// user's home directory.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConnectionFileName), nil
}

// connectionFile is the on-disk shape of the store.
type connectionFile struct {
	Connections []*models.ConnectionInfo `json:"connections"`
}

// Store manages the persisted connection entries. Every mutation rewrites
// the whole file.
type Store struct {
	path string
	file *connectionFile
}

// NewStore creates a connection store bound to the given path. An empty path
// selects the default location.
func NewStore(path string) *Store {
	if path == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			path = defaultPath
		} else {
			path = DefaultConnectionFileName
		}
	}
	return &Store{
		path: path,
		file: &connectionFile{},
	}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// KeysDir returns the directory where provisioned key files are written,
// creating it when missing.
func (s *Store) KeysDir() (string, error) {
	dir := filepath.Join(filepath.Dir(s.path), DefaultKeysDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create keys directory: %w", err)
	}
	return dir, nil
}

// Load reads the store from disk, creating an empty store file when none
// exists yet.
func (s *Store) Load() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.file = &connectionFile{Connections: make([]*models.ConnectionInfo, 0)}
			return s.Save()
		}
		return fmt.Errorf("failed to read connection store: %w", err)
	}

	if err := json.Unmarshal(data, s.file); err != nil {
		return fmt.Errorf("failed to parse connection store: %w", err)
	}
	return nil
}

// Save writes the store back to disk in full.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.file, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal connection store: %w", err)
	}

	if err := os.WriteFile(s.path, data, DefaultFilePerms); err != nil {
		return fmt.Errorf("failed to write connection store: %w", err)
	}
	return nil
}

// List returns every stored connection.
func (s *Store) List() []*models.ConnectionInfo {
	return s.file.Connections
}

// Get finds a connection by its derived name (user@host).
func (s *Store) Get(name string) (*models.ConnectionInfo, bool) {
	for _, c := range s.file.Connections {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Default returns the connection flagged as default, or the only stored one.
func (s *Store) Default() (*models.ConnectionInfo, bool) {
	for _, c := range s.file.Connections {
		if c.IsDefault {
			return c, true
		}
	}
	if len(s.file.Connections) == 1 {
		return s.file.Connections[0], true
	}
	return nil, false
}

// Add appends a new connection and persists the store. A duplicate derived
// name is rejected.
func (s *Store) Add(info *models.ConnectionInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if _, exists := s.Get(info.Name()); exists {
		return fmt.Errorf("connection %s already exists", info.Name())
	}
	if info.IsDefault {
		s.clearDefault()
	}
	s.file.Connections = append(s.file.Connections, info)
	return s.Save()
}

// Update replaces the stored entry with the same derived name and persists
// the store.
func (s *Store) Update(info *models.ConnectionInfo) error {
	for i, c := range s.file.Connections {
		if c.Name() == info.Name() {
			if info.IsDefault && !c.IsDefault {
				s.clearDefault()
			}
			s.file.Connections[i] = info
			return s.Save()
		}
	}
	return fmt.Errorf("connection %s not found", info.Name())
}

// Remove deletes a connection by name and persists the store.
func (s *Store) Remove(name string) error {
	for i, c := range s.file.Connections {
		if c.Name() == name {
			s.file.Connections = append(s.file.Connections[:i], s.file.Connections[i+1:]...)
			return s.Save()
		}
	}
	return fmt.Errorf("connection %s not found", name)
}

// SetDefault flags one connection as the default target.
func (s *Store) SetDefault(name string) error {
	if _, ok := s.Get(name); !ok {
		return fmt.Errorf("connection %s not found", name)
	}
	s.clearDefault()
	for _, c := range s.file.Connections {
		if c.Name() == name {
			c.IsDefault = true
		}
	}
	return s.Save()
}

func (s *Store) clearDefault() {
	for _, c := range s.file.Connections {
		c.IsDefault = false
	}
}
