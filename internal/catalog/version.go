// internal/catalog/version.go

package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// CompareVersions compares two semantic version strings.
// Returns -1 if v1 < v2, 0 if equal, 1 if v1 > v2. The "v" prefix is
// handled automatically.
func CompareVersions(v1, v2 string) int {
	p1 := parseVersionParts(normalizeVersion(v1))
	p2 := parseVersionParts(normalizeVersion(v2))

	for i := 0; i < 3; i++ {
		if p1[i] < p2[i] {
			return -1
		}
		if p1[i] > p2[i] {
			return 1
		}
	}
	return 0
}

// MatchesMajorMinor reports whether a full version shares the requested
// major.minor prefix. The request may carry a trailing ".x" wildcard
// ("6.0.x") or be a bare major.minor ("6.0").
func MatchesMajorMinor(version, requested string) bool {
	requested = normalizeVersion(strings.TrimSuffix(requested, ".x"))
	parts := strings.Split(requested, ".")
	if len(parts) < 2 {
		return false
	}
	vParts := strings.Split(normalizeVersion(version), ".")
	if len(vParts) != 3 {
		return false
	}
	return vParts[0] == parts[0] && vParts[1] == parts[1]
}

// ValidateVersion checks that a string is a full semantic version
// (major.minor.patch, non-negative components).
func ValidateVersion(version string) error {
	version = normalizeVersion(version)
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return fmt.Errorf("version must be in format major.minor.patch, got %s", version)
	}
	for i, part := range parts {
		val, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("version component %d is not a valid number: %s", i, part)
		}
		if val < 0 {
			return fmt.Errorf("version component %d must be non-negative, got %d", i, val)
		}
	}
	return nil
}

func normalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

func parseVersionParts(version string) [3]int {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return [3]int{}
	}
	var result [3]int
	for i := 0; i < 3; i++ {
		val, err := strconv.Atoi(parts[i])
		if err != nil {
			return [3]int{}
		}
		result[i] = val
	}
	return result
}
