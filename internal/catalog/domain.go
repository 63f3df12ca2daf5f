// Package catalog models the release manifest published by windows.php.net
// and picks the build variant that fits the host.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

// variantMarker is the substring that identifies a build variant key
// inside a release object ("ts-vs16-x64", "nts-vs17-x86", ...).
const variantMarker = "ts-"

var (
	// ErrMissingField is matched by *MissingFieldError.
	ErrMissingField = errors.New("missing field")
	// ErrNotFound is returned when the catalog has no release for a version.
	ErrNotFound = errors.New("release not found")
)

// MissingFieldError reports a release object without a version or without
// any build variant.
type MissingFieldError struct {
	Release string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("release %q: missing field %q", e.Release, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Download is one downloadable archive.
type Download struct {
	Path   string `json:"path"`
	Size   string `json:"size"`
	SHA256 string `json:"sha256"`
}

// Build is a named variant of a release.
type Build struct {
	MTime     string   `json:"mtime"`
	Zip       Download `json:"zip"`
	DebugPack Download `json:"debug_pack"`
	DevelPack Download `json:"devel_pack"`
}

// Release is the newest patch of one minor version.
type Release struct {
	Version version.Version
	Builds  map[string]Build
}

// Variants returns the build names in sorted order.
func (r Release) Variants() []string {
	names := make([]string, 0, len(r.Builds))
	for name := range r.Builds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Catalog maps a minor version ("8.1") to its release.
type Catalog map[string]Release

// Lookup finds the release for v. Only major and minor are used; a patch
// given by the caller is ignored since the manifest only publishes the
// newest patch of each minor version.
func (c Catalog) Lookup(v version.Version) (Release, error) {
	key := v.MajorMinor().String()
	r, ok := c[key]
	if !ok {
		return Release{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return r, nil
}

// Decode parses releases.json.
func Decode(data []byte) (Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	c := make(Catalog, len(raw))
	for _, key := range keys {
		r, err := decodeRelease(key, raw[key])
		if err != nil {
			return nil, err
		}
		c[key] = r
	}
	return c, nil
}

func decodeRelease(key string, data json.RawMessage) (Release, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Release{}, fmt.Errorf("decode release %q: %w", key, err)
	}

	r := Release{Builds: make(map[string]Build)}
	var versionText string
	for name, value := range fields {
		switch {
		case strings.Contains(name, variantMarker):
			var b Build
			if err := json.Unmarshal(value, &b); err != nil {
				return Release{}, fmt.Errorf("decode release %q build %q: %w", key, name, err)
			}
			r.Builds[name] = b
		case name == "version":
			if err := json.Unmarshal(value, &versionText); err != nil {
				return Release{}, fmt.Errorf("decode release %q version: %w", key, err)
			}
		}
	}

	if versionText == "" {
		return Release{}, &MissingFieldError{Release: key, Field: "version"}
	}
	if len(r.Builds) == 0 {
		return Release{}, &MissingFieldError{Release: key, Field: "builds"}
	}

	v, err := version.Parse(versionText)
	if err != nil {
		return Release{}, fmt.Errorf("decode release %q: %w", key, err)
	}
	r.Version = v
	return r, nil
}
