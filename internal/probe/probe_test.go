package probe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pideploy/internal/install"
	"pideploy/internal/models"
)

// scriptedSession answers remote commands from a prefix-keyed script.
type scriptedSession struct {
	script map[string]string
	fail   map[string]bool
}

func (s *scriptedSession) Name() string { return "pi@testdevice" }

func (s *scriptedSession) Run(ctx context.Context, command string) (string, error) {
	// Longest matching prefix wins, so "ls -1 <root>/vsdbg" never falls
	// through to the "ls -1 <root>" entry.
	best := ""
	for prefix := range s.script {
		if strings.HasPrefix(command, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", nil
	}
	if s.fail[best] {
		return "", errors.New("command failed")
	}
	return s.script[best], nil
}

func (s *scriptedSession) Start(ctx context.Context, command string) error { return nil }

func (s *scriptedSession) UploadFile(ctx context.Context, localPath, remotePath string) error {
	return nil
}

func (s *scriptedSession) UploadDir(ctx context.Context, localDir, remoteDir string) error {
	return nil
}

func (s *scriptedSession) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	return nil, nil
}

func (s *scriptedSession) Close() error { return nil }

func pi4Session() *scriptedSession {
	return &scriptedSession{
		script: map[string]string{
			"uname -m":                      "aarch64",
			"tr -d":                         "Raspberry Pi 4 Model B Rev 1.4",
			"awk":                           "c03111",
			"echo":                          "/usr/local/bin:/usr/bin:/bin",
			"command -v":                    "/usr/bin/found",
			"ls -1 " + install.DebuggerRoot: "vsdbg-17.6.1-arm64",
			"ls -1 " + install.Root:         "sdk-6.0.101-arm64\nvsdbg",
		},
		fail: map[string]bool{},
	}
}

func TestProbeFullDevice(t *testing.T) {
	status, err := NewProber(nil).Probe(context.Background(), pi4Session())
	require.NoError(t, err)

	assert.Equal(t, "aarch64", status.Processor)
	assert.Equal(t, models.Arch64, status.Architecture)
	assert.Equal(t, "Raspberry Pi 4 Model B Rev 1.4", status.BoardModel)
	assert.Equal(t, "c03111", status.BoardRevision)
	assert.True(t, status.Supported)
	assert.True(t, status.HasRequiredTools)
	assert.Empty(t, status.MissingTools)
	assert.True(t, status.HasDebugger)
	assert.True(t, status.HasComponent("sdk-6.0.101"))
	assert.True(t, status.HasComponent("vsdbg-17.6.1"))
}

func TestProbeMissingTools(t *testing.T) {
	sess := pi4Session()
	sess.script["command -v tar"] = ""
	sess.fail["command -v tar"] = true

	status, err := NewProber(nil).Probe(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, status.HasRequiredTools)
	assert.Equal(t, []string{"tar"}, status.MissingTools, "the missing tool is named")
}

func TestProbeUnsupportedBoard(t *testing.T) {
	sess := pi4Session()
	sess.script["tr -d"] = "Orange Pi PC Plus"

	status, err := NewProber(nil).Probe(context.Background(), sess)
	require.NoError(t, err, "an unsupported board still probes successfully")
	assert.False(t, status.Supported)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		processor string
		want      models.Architecture
	}{
		{"aarch64", models.Arch64},
		{"armv8l", models.Arch64},
		{"arm64", models.Arch64},
		{"armv6l", models.Arch32},
		{"armv7l", models.Arch32},
		{"ARMv7 Processor", models.Arch32},
		{"riscv64", models.ArchUnknown},
		{"x86_64", models.ArchUnknown},
		{"", models.ArchUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.processor, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.processor))
		})
	}
}

func TestParseComponentDir(t *testing.T) {
	c, ok := ParseComponentDir("sdk-6.0.101-arm64")
	require.True(t, ok)
	assert.Equal(t, "sdk-6.0.101", c.Name())
	assert.Equal(t, "6.0.101", c.Version())
	assert.Equal(t, models.Arch64, c.Architecture())

	_, ok = ParseComponentDir("randomdir")
	assert.False(t, ok)

	_, ok = ParseComponentDir("sdk-6.0.101-riscv64")
	assert.False(t, ok)
}
