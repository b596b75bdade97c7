// internal/catalog/resolver.go

package catalog

import (
	"pideploy/internal/models"
	"pideploy/internal/pderr"
)

// Resolver selects the best catalog entry for a requested version range and
// target architecture.
type Resolver struct {
	catalog *Catalog
}

// NewResolver builds a resolver over a loaded catalog.
func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve finds the catalog item in the given category matching the
// requested major.minor version and architecture. Unusable items are
// excluded; among the remaining candidates the highest full semantic
// version wins. Ties are impossible because (name, architecture) pairs are
// unique in a valid catalog.
func (r *Resolver) Resolve(category Category, requestedMajorMinor string, arch models.Architecture) (Item, error) {
	var best *Item
	for idx := range r.catalog.Items {
		item := &r.catalog.Items[idx]
		if !item.Usable || item.Category != category || item.Architecture != arch {
			continue
		}
		if !MatchesMajorMinor(item.Version, requestedMajorMinor) {
			continue
		}
		if best == nil || CompareVersions(item.Version, best.Version) > 0 {
			best = item
		}
	}
	if best == nil {
		return Item{}, pderr.Newf(pderr.CodeUnsupportedVersion,
			"no usable %s entry for version %s on %s", category, requestedMajorMinor, arch).
			WithContext("category", string(category)).
			WithContext("requested", requestedMajorMinor).
			WithContext("architecture", arch.String())
	}
	return *best, nil
}

// ResolveLatest finds the highest usable version in a category for an
// architecture regardless of version range. The debugger component is
// resolved this way: projects pin the runtime, not the debugger.
func (r *Resolver) ResolveLatest(category Category, arch models.Architecture) (Item, error) {
	var best *Item
	for idx := range r.catalog.Items {
		item := &r.catalog.Items[idx]
		if !item.Usable || item.Category != category || item.Architecture != arch {
			continue
		}
		if best == nil || CompareVersions(item.Version, best.Version) > 0 {
			best = item
		}
	}
	if best == nil {
		return Item{}, pderr.Newf(pderr.CodeUnsupportedVersion,
			"no usable %s entry for %s", category, arch).
			WithContext("category", string(category)).
			WithContext("architecture", arch.String())
	}
	return *best, nil
}

// IsVersionSupported reports whether any usable runtime entry matches the
// requested major.minor for either concrete architecture. Project property
// snapshots use this to fill VersionSupported.
func (r *Resolver) IsVersionSupported(requestedMajorMinor string) bool {
	for _, arch := range []models.Architecture{models.Arch32, models.Arch64} {
		if _, err := r.Resolve(CategoryRuntime, requestedMajorMinor, arch); err == nil {
			return true
		}
	}
	return false
}
