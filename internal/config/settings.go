// internal/config/settings.go

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// SettingsDirName is the solution-local state directory. It is not meant
	// to be source-controlled.
	SettingsDirName = ".pideploy"

	settingsFileName = "deployments.json"
)

// DeploySettings holds the per-project deployment preferences, keyed by
// project identity in the settings file.
type DeploySettings struct {
	RemoteDebuggingEnabled bool    `json:"remote_debugging_enabled"`
	TargetConnectionName   *string `json:"target_connection_name"`
	TargetGroup            string  `json:"target_group"`
}

// SettingsStore persists DeploySettings for every project in a solution.
// Like the connection store it is one JSON document read and written whole.
type SettingsStore struct {
	path     string
	settings map[string]DeploySettings
}

// NewSettingsStore creates a settings store rooted at the given solution
// directory.
func NewSettingsStore(solutionDir string) *SettingsStore {
	return &SettingsStore{
		path:     filepath.Join(solutionDir, SettingsDirName, settingsFileName),
		settings: make(map[string]DeploySettings),
	}
}

// Load reads the settings file, treating a missing file as an empty store.
func (st *SettingsStore) Load() error {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			st.settings = make(map[string]DeploySettings)
			return nil
		}
		return fmt.Errorf("failed to read deployment settings: %w", err)
	}
	if err := json.Unmarshal(data, &st.settings); err != nil {
		return fmt.Errorf("failed to parse deployment settings: %w", err)
	}
	return nil
}

// Save writes the settings file back whole.
func (st *SettingsStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(st.settings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployment settings: %w", err)
	}
	if err := os.WriteFile(st.path, data, DefaultFilePerms); err != nil {
		return fmt.Errorf("failed to write deployment settings: %w", err)
	}
	return nil
}

// GetOrCreate returns the stored settings for a project. When the project
// has no entry yet, the zero-value settings (remote debugging disabled, no
// target connection, empty group) are stored, persisted, and returned.
func (st *SettingsStore) GetOrCreate(projectID string) (DeploySettings, error) {
	if s, ok := st.settings[projectID]; ok {
		return s, nil
	}
	created := DeploySettings{}
	st.settings[projectID] = created
	if err := st.Save(); err != nil {
		return DeploySettings{}, err
	}
	return created, nil
}

// Set stores settings for a project and persists the file.
func (st *SettingsStore) Set(projectID string, s DeploySettings) error {
	st.settings[projectID] = s
	return st.Save()
}
