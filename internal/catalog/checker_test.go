package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pideploy/internal/models"
	"pideploy/internal/pderr"
)

func hasViolation(errs []error, code pderr.Code) bool {
	for _, err := range errs {
		if pderr.HasCode(err, code) {
			return true
		}
	}
	return false
}

func TestCheckCleanCatalog(t *testing.T) {
	cat := &Catalog{Items: []Item{
		runtimeItem("6.0.1", models.Arch64, true),
		runtimeItem("6.0.1", models.Arch32, true),
	}}
	assert.Empty(t, NewChecker().Check(cat))
}

func TestCheckDuplicateLink(t *testing.T) {
	a := runtimeItem("6.0.1", models.Arch64, true)
	b := runtimeItem("6.0.3", models.Arch64, true)
	b.Link = a.Link

	errs := NewChecker().Check(&Catalog{Items: []Item{a, b}})
	assert.True(t, hasViolation(errs, pderr.CodeDuplicateLink))
}

func TestCheckDuplicateComponent(t *testing.T) {
	a := runtimeItem("6.0.1", models.Arch64, true)
	b := a
	b.Link = "https://downloads.example.com/sdk-6.0.1-arm64-mirror.tar.gz"

	errs := NewChecker().Check(&Catalog{Items: []Item{a, b}})
	assert.True(t, hasViolation(errs, pderr.CodeDuplicateComponent))
}

func TestCheckArchLinkMarkers(t *testing.T) {
	missing := runtimeItem("6.0.1", models.Arch64, true)
	missing.Link = "https://downloads.example.com/sdk-6.0.1.tar.gz"

	opposite := runtimeItem("6.0.3", models.Arch64, true)
	opposite.Link = "https://downloads.example.com/sdk-6.0.3-arm32.tar.gz"

	errs := NewChecker().Check(&Catalog{Items: []Item{missing}})
	assert.True(t, hasViolation(errs, pderr.CodeArchLinkMismatch), "missing own marker")

	errs = NewChecker().Check(&Catalog{Items: []Item{opposite}})
	assert.True(t, hasViolation(errs, pderr.CodeArchLinkMismatch), "opposite marker present")
}

func TestCheckStructRules(t *testing.T) {
	bad := runtimeItem("6.0.1", models.Arch64, true)
	bad.Checksum = "notahex"

	errs := NewChecker().Check(&Catalog{Items: []Item{bad}})
	assert.NotEmpty(t, errs)
}

// The shipped catalog must always pass its own integrity rules.
func TestEmbeddedCatalogIsValid(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cat.Items)

	assert.Empty(t, NewChecker().Check(cat))
}
