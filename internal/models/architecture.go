// internal/models/architecture.go

package models

import "fmt"

// Architecture identifies the instruction set a component is built for.
type Architecture int

const (
	ArchUnknown Architecture = iota
	Arch32
	Arch64
)

// archNames is the exhaustive mapping between Architecture values and their
// canonical wire strings. Both directions go through this table; there is no
// reflection-based naming anywhere.
var archNames = map[Architecture]string{
	ArchUnknown: "unknown",
	Arch32:      "arm32",
	Arch64:      "arm64",
}

var archValues = map[string]Architecture{
	"unknown": ArchUnknown,
	"arm32":   Arch32,
	"arm64":   Arch64,
}

func (a Architecture) String() string {
	if s, ok := archNames[a]; ok {
		return s
	}
	return archNames[ArchUnknown]
}

// Opposite returns the other concrete architecture. Used by the catalog
// checker to detect links that point at the wrong binary family.
func (a Architecture) Opposite() Architecture {
	switch a {
	case Arch32:
		return Arch64
	case Arch64:
		return Arch32
	default:
		return ArchUnknown
	}
}

// ParseArchitecture maps a canonical wire string back to its Architecture.
func ParseArchitecture(s string) (Architecture, error) {
	if a, ok := archValues[s]; ok {
		return a, nil
	}
	return ArchUnknown, fmt.Errorf("unknown architecture %q", s)
}

// MarshalYAML serializes the architecture as its canonical string.
func (a Architecture) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML parses the canonical string form.
func (a *Architecture) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseArchitecture(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText lets Architecture round-trip through JSON stores.
func (a Architecture) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Architecture) UnmarshalText(text []byte) error {
	parsed, err := ParseArchitecture(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
