package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
)

// ErrNoMatch is returned when no build variant fits the requested
// thread safety and architecture.
var ErrNoMatch = errors.New("no matching build")

// SelectBuild picks the variant whose name contains both the thread safety
// token ("ts"/"nts") and the architecture token ("x86"/"x64").
//
// "ts" is also a substring of "nts", so a variant that starts with the exact
// token wins over one that only contains it. Among equal candidates the
// first in sorted name order is returned; callers should not depend on
// which one that is.
func SelectBuild(r Release, ts config.ThreadSafety, arch platform.Arch) (string, Build, error) {
	tsToken := ts.Token()
	archToken := arch.String()

	var fallback string
	for _, name := range r.Variants() {
		if !strings.Contains(name, tsToken) || !strings.Contains(name, archToken) {
			continue
		}
		if ExactThreadSafety(name, ts) {
			return name, r.Builds[name], nil
		}
		if fallback == "" {
			fallback = name
		}
	}

	if fallback == "" {
		return "", Build{}, fmt.Errorf("%s %s: %w", ts, arch, ErrNoMatch)
	}
	return fallback, r.Builds[fallback], nil
}

// ExactThreadSafety reports whether variant starts with the thread safety
// token, as opposed to only containing it ("nts-vs16-x64" contains "ts").
func ExactThreadSafety(variant string, ts config.ThreadSafety) bool {
	return strings.HasPrefix(variant, ts.Token()+"-")
}
