package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchitectureString(t *testing.T) {
	assert.Equal(t, "arm32", Arch32.String())
	assert.Equal(t, "arm64", Arch64.String())
	assert.Equal(t, "unknown", ArchUnknown.String())
}

func TestArchitectureOpposite(t *testing.T) {
	assert.Equal(t, Arch64, Arch32.Opposite())
	assert.Equal(t, Arch32, Arch64.Opposite())
	assert.Equal(t, ArchUnknown, ArchUnknown.Opposite())
}

func TestParseArchitecture(t *testing.T) {
	tests := []struct {
		input   string
		want    Architecture
		wantErr bool
	}{
		{input: "arm32", want: Arch32},
		{input: "arm64", want: Arch64},
		{input: "riscv64", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseArchitecture(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComponentDirName(t *testing.T) {
	c := NewComponent("sdk-6.0.101", "6.0.101", Arch64)
	assert.Equal(t, "sdk-6.0.101-arm64", c.DirName())
}

func TestConnectionInfoName(t *testing.T) {
	info := &ConnectionInfo{Host: "pi4.local", Port: 22, User: "pi", Password: "raspberry"}
	assert.Equal(t, "pi@pi4.local", info.Name())

	// Name is derived, so it follows field changes.
	info.Host = "10.0.0.9"
	assert.Equal(t, "pi@10.0.0.9", info.Name())
}

func TestConnectionInfoAuthMode(t *testing.T) {
	info := &ConnectionInfo{Host: "h", Port: 22, User: "u", Password: "p"}
	assert.Equal(t, AuthModePassword, info.AuthMode())

	// A recorded key wins over the password.
	info.SetKeyPaths("/keys/id", "/keys/id.pub")
	assert.Equal(t, AuthModeKey, info.AuthMode())
}

func TestConnectionInfoValidate(t *testing.T) {
	tests := []struct {
		name    string
		info    ConnectionInfo
		wantErr bool
	}{
		{name: "valid password entry", info: ConnectionInfo{Host: "h", Port: 22, User: "u", Password: "p"}},
		{name: "valid key entry", info: ConnectionInfo{Host: "h", Port: 22, User: "u", PrivateKeyPath: "/k"}},
		{name: "missing host", info: ConnectionInfo{Port: 22, User: "u", Password: "p"}, wantErr: true},
		{name: "missing user", info: ConnectionInfo{Host: "h", Port: 22, Password: "p"}, wantErr: true},
		{name: "bad port", info: ConnectionInfo{Host: "h", Port: 0, User: "u", Password: "p"}, wantErr: true},
		{name: "no credentials", info: ConnectionInfo{Host: "h", Port: 22, User: "u"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusWithComponentSupersedes(t *testing.T) {
	orig := &Status{Architecture: Arch64}
	c := NewComponent("sdk-6.0.103", "6.0.103", Arch64)

	next := orig.WithComponent(c)

	assert.True(t, next.HasComponent("sdk-6.0.103"))
	assert.False(t, orig.HasComponent("sdk-6.0.103"), "original snapshot must stay untouched")
	assert.Empty(t, orig.InstalledComponents)
}

func TestStatusWithDebugger(t *testing.T) {
	orig := &Status{}
	next := orig.WithDebugger()

	assert.True(t, next.HasDebugger)
	assert.False(t, orig.HasDebugger)
}

func TestLookupBoard(t *testing.T) {
	rev, ok := LookupBoard("c03111")
	require.True(t, ok)
	assert.Contains(t, rev.Model, "Raspberry Pi 4")

	_, ok = LookupBoard("ffffff")
	assert.False(t, ok)
}
