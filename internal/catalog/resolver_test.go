package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pideploy/internal/models"
	"pideploy/internal/pderr"
)

func runtimeItem(version string, arch models.Architecture, usable bool) Item {
	return Item{
		Name:         "sdk-" + version,
		Category:     CategoryRuntime,
		Version:      version,
		Architecture: arch,
		Link:         "https://downloads.example.com/sdk-" + version + "-" + arch.String() + ".tar.gz",
		Checksum:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Usable:       usable,
	}
}

func TestResolvePicksHighestUsablePatch(t *testing.T) {
	cat := &Catalog{Items: []Item{
		runtimeItem("6.0.1", models.Arch64, true),
		runtimeItem("6.0.3", models.Arch64, true),
		runtimeItem("6.0.9", models.Arch64, false),
		runtimeItem("7.0.2", models.Arch64, true),
		runtimeItem("6.0.5", models.Arch32, true),
	}}
	r := NewResolver(cat)

	tests := []struct {
		name      string
		requested string
		arch      models.Architecture
		want      string
	}{
		{name: "wildcard picks highest usable patch", requested: "6.0.x", arch: models.Arch64, want: "6.0.3"},
		{name: "bare major.minor works too", requested: "6.0", arch: models.Arch64, want: "6.0.3"},
		{name: "architecture filters candidates", requested: "6.0.x", arch: models.Arch32, want: "6.0.5"},
		{name: "other line is independent", requested: "7.0.x", arch: models.Arch64, want: "7.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := r.Resolve(CategoryRuntime, tt.requested, tt.arch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Version)
		})
	}
}

func TestResolveNoMatch(t *testing.T) {
	cat := &Catalog{Items: []Item{
		runtimeItem("6.0.9", models.Arch64, false),
	}}
	r := NewResolver(cat)

	// The only matching entry is unusable.
	_, err := r.Resolve(CategoryRuntime, "6.0.x", models.Arch64)
	require.Error(t, err)
	assert.True(t, pderr.HasCode(err, pderr.CodeUnsupportedVersion))

	_, err = r.Resolve(CategoryRuntime, "8.0.x", models.Arch64)
	require.Error(t, err)
	assert.True(t, pderr.HasCode(err, pderr.CodeUnsupportedVersion))
}

func TestResolveLatest(t *testing.T) {
	dbg32 := Item{
		Name:         "vsdbg-17.1.0",
		Category:     CategoryDebugger,
		Version:      "17.1.0",
		Architecture: models.Arch32,
		Link:         "https://downloads.example.com/vsdbg-17.1.0-arm32.tar.gz",
		Checksum:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Usable:       true,
	}
	dbg32Higher := dbg32
	dbg32Higher.Name = "vsdbg-17.6.1"
	dbg32Higher.Version = "17.6.1"
	dbg32Higher.Link = "https://downloads.example.com/vsdbg-17.6.1-arm32.tar.gz"

	cat := &Catalog{Items: []Item{dbg32, dbg32Higher}}
	r := NewResolver(cat)

	item, err := r.ResolveLatest(CategoryDebugger, models.Arch32)
	require.NoError(t, err)
	assert.Equal(t, "17.6.1", item.Version)

	_, err = r.ResolveLatest(CategoryDebugger, models.Arch64)
	assert.True(t, pderr.HasCode(err, pderr.CodeUnsupportedVersion))
}

func TestIsVersionSupported(t *testing.T) {
	cat := &Catalog{Items: []Item{
		runtimeItem("6.0.3", models.Arch64, true),
	}}
	r := NewResolver(cat)

	assert.True(t, r.IsVersionSupported("6.0"))
	assert.False(t, r.IsVersionSupported("5.0"))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"6.0.1", "6.0.3", -1},
		{"6.0.3", "6.0.1", 1},
		{"6.0.3", "6.0.3", 0},
		{"7.0.0", "6.9.9", 1},
		{"v6.0.1", "6.0.1", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.v1, tt.v2), "%s vs %s", tt.v1, tt.v2)
	}
}

func TestMatchesMajorMinor(t *testing.T) {
	assert.True(t, MatchesMajorMinor("6.0.101", "6.0.x"))
	assert.True(t, MatchesMajorMinor("6.0.101", "6.0"))
	assert.False(t, MatchesMajorMinor("6.1.0", "6.0.x"))
	assert.False(t, MatchesMajorMinor("6.0.101", "6"))
}

func TestValidateVersion(t *testing.T) {
	assert.NoError(t, ValidateVersion("6.0.101"))
	assert.NoError(t, ValidateVersion("v17.6.1"))
	assert.Error(t, ValidateVersion("6.0"))
	assert.Error(t, ValidateVersion("6.0.abc"))
}
