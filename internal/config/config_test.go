package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pideploy/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "connections.json"))
	require.NoError(t, s.Load())
	return s
}

func testConn(host string) *models.ConnectionInfo {
	return &models.ConnectionInfo{Host: host, Port: 22, User: "pi", Password: "raspberry"}
}

func TestStoreRoundTrip(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add(testConn("pi4.local")))
	require.NoError(t, s.Add(testConn("pi5.local")))

	reloaded := NewStore(s.Path())
	require.NoError(t, reloaded.Load())

	assert.Len(t, reloaded.List(), 2)
	got, ok := reloaded.Get("pi@pi4.local")
	require.True(t, ok)
	assert.Equal(t, "pi4.local", got.Host)
	assert.Equal(t, "raspberry", got.Password)
}

func TestStoreRejectsDuplicateName(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add(testConn("pi4.local")))
	assert.Error(t, s.Add(testConn("pi4.local")))
}

func TestStoreDefault(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add(testConn("pi4.local")))

	// A single entry is the implicit default.
	d, ok := s.Default()
	require.True(t, ok)
	assert.Equal(t, "pi@pi4.local", d.Name())

	require.NoError(t, s.Add(testConn("pi5.local")))
	_, ok = s.Default()
	assert.False(t, ok, "two entries and no flag means no default")

	require.NoError(t, s.SetDefault("pi@pi5.local"))
	d, ok = s.Default()
	require.True(t, ok)
	assert.Equal(t, "pi@pi5.local", d.Name())

	// Flagging another entry clears the previous default.
	require.NoError(t, s.SetDefault("pi@pi4.local"))
	prev, _ := s.Get("pi@pi5.local")
	assert.False(t, prev.IsDefault)
}

func TestStoreRemove(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add(testConn("pi4.local")))
	require.NoError(t, s.Remove("pi@pi4.local"))
	assert.Empty(t, s.List())
	assert.Error(t, s.Remove("pi@pi4.local"))
}

func TestStoreFilePermissions(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Add(testConn("pi4.local")))

	// The store holds passwords, so it must not be world-readable.
	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(DefaultFilePerms), info.Mode().Perm())
}

func TestSettingsGetOrCreatePersistsDefaults(t *testing.T) {
	dir := t.TempDir()
	st := NewSettingsStore(dir)
	require.NoError(t, st.Load())

	s, err := st.GetOrCreate("WeatherStation")
	require.NoError(t, err)
	assert.False(t, s.RemoteDebuggingEnabled)
	assert.Nil(t, s.TargetConnectionName)
	assert.Empty(t, s.TargetGroup)

	// The zero-value entry is written through immediately.
	reloaded := NewSettingsStore(dir)
	require.NoError(t, reloaded.Load())
	again, err := reloaded.GetOrCreate("WeatherStation")
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestSettingsSet(t *testing.T) {
	dir := t.TempDir()
	st := NewSettingsStore(dir)
	require.NoError(t, st.Load())

	conn := "pi@pi4.local"
	require.NoError(t, st.Set("WeatherStation", DeploySettings{
		RemoteDebuggingEnabled: true,
		TargetConnectionName:   &conn,
	}))

	reloaded := NewSettingsStore(dir)
	require.NoError(t, reloaded.Load())
	got, err := reloaded.GetOrCreate("WeatherStation")
	require.NoError(t, err)
	assert.True(t, got.RemoteDebuggingEnabled)
	require.NotNil(t, got.TargetConnectionName)
	assert.Equal(t, conn, *got.TargetConnectionName)
}

func TestLoadToolConfigDefaults(t *testing.T) {
	cfg, err := LoadToolConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.LogLevel)
	assert.Positive(t, cfg.ConnectTimeout)
	assert.Positive(t, cfg.DownloadTimeout)
	assert.Positive(t, cfg.RetryDelay)
}
