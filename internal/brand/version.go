package brand

import (
	"fmt"
	"strconv"
	"strings"
)

// majorImpactSections are the document sections whose modification bumps the
// minor version component on update.
var majorImpactSections = map[string]bool{
	"colors":     true,
	"typography": true,
	"assets":     true,
	"compliance": true,
}

// NextVersion computes the version stamped on a brand after an update that
// touched the given top-level sections. Only the minor component is ever
// incremented, and only when a major-impact section changed; major and patch
// are carried through untouched. A current version that does not parse as
// three dot-separated integers resets to "1.1.0" instead of failing.
func NextVersion(current string, changedSections []string) string {
	if !hasMajorImpact(changedSections) {
		return current
	}
	return bumpMinor(current)
}

func hasMajorImpact(sections []string) bool {
	for _, s := range sections {
		if majorImpactSections[s] {
			return true
		}
	}
	return false
}

func bumpMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "1.1.0"
	}
	major, errMajor := strconv.Atoi(parts[0])
	minor, errMinor := strconv.Atoi(parts[1])
	patch, errPatch := strconv.Atoi(parts[2])
	if errMajor != nil || errMinor != nil || errPatch != nil {
		return "1.1.0"
	}
	return fmt.Sprintf("%d.%d.%d", major, minor+1, patch)
}
