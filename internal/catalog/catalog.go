// internal/catalog/catalog.go

// Package catalog holds the static, versioned registry of installable
// components and the resolution logic that selects the best entry for a
// requested version and architecture.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"pideploy/internal/models"
)

// Category groups catalog items by what they install. Runtime components
// unpack into the install root; the debugger gets its own fixed
// subdirectory.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryDebugger Category = "debugger"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Item is one installable entry in the catalog. Names are unique per
// (name, architecture) pair, so an item's name carries its version (for
// example "sdk-6.0.101"). An item can be marked unusable without being
// removed; that keeps the historical record while excluding it from
// resolution.
type Item struct {
	Name         string              `yaml:"name" validate:"required"`
	Category     Category            `yaml:"category" validate:"required,oneof=runtime debugger"`
	Version      string              `yaml:"version" validate:"required"`
	Architecture models.Architecture `yaml:"architecture"`
	Link         string              `yaml:"link" validate:"required,url"`
	Checksum     string              `yaml:"checksum" validate:"required,hexadecimal,len=64"`
	Usable       bool                `yaml:"usable"`
}

// Component converts the item into its immutable component record.
func (i Item) Component() models.Component {
	return models.NewComponent(i.Name, i.Version, i.Architecture)
}

// Catalog is the loaded registry. It is read-only after load.
type Catalog struct {
	Items []Item `yaml:"items"`
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load parses the embedded catalog definition. The catalog is loaded once
// per process and never re-fetched over the network at runtime; integrity is
// validated offline by the checker, not here.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(embeddedCatalog)
	})
	return loaded, loadErr
}

// Parse decodes a catalog definition from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}
