package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersion parses a manifest version string as semver.
// Handles "v" prefix tolerance (strips leading "v" before parsing).
func CheckVersion(version string) error {
	if _, err := parseSemver(version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", version, err)
	}
	return nil
}

// CompareVersions compares two manifest version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
