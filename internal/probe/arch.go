// internal/probe/arch.go

package probe

import (
	"strings"

	"pideploy/internal/models"
)

// The two prefix families are disjoint by construction; a processor string
// matching neither classifies as unknown, and callers must halt rather than
// guess.
var (
	arch64Prefixes = []string{"aarch64", "arm64", "armv8"}
	arch32Prefixes = []string{"armv6", "armv7", "armhf"}
)

// Classify maps a processor identifier to its architecture family.
func Classify(processor string) models.Architecture {
	processor = strings.ToLower(strings.TrimSpace(processor))
	for _, prefix := range arch64Prefixes {
		if strings.HasPrefix(processor, prefix) {
			return models.Arch64
		}
	}
	for _, prefix := range arch32Prefixes {
		if strings.HasPrefix(processor, prefix) {
			return models.Arch32
		}
	}
	return models.ArchUnknown
}

// ParseComponentDir recovers a component record from its on-device
// directory name (name-arch, where the name itself carries the version,
// e.g. "sdk-6.0.101-arm64").
func ParseComponentDir(dir string) (models.Component, bool) {
	idx := strings.LastIndex(dir, "-")
	if idx <= 0 || idx == len(dir)-1 {
		return models.Component{}, false
	}
	arch, err := models.ParseArchitecture(dir[idx+1:])
	if err != nil {
		return models.Component{}, false
	}
	name := dir[:idx]

	// The trailing name segment is the version when it parses as one.
	version := ""
	if vIdx := strings.LastIndex(name, "-"); vIdx > 0 {
		candidate := name[vIdx+1:]
		if looksLikeVersion(candidate) {
			version = candidate
		}
	}
	return models.NewComponent(name, version, arch), true
}

func looksLikeVersion(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
