// Package version models PHP release identifiers of the form major.minor[.patch].
//
// Installed versions are keyed by major.minor only: two identifiers that share
// major and minor are considered equivalent regardless of patch. The patch
// component is informational and is taken from the release catalog at install
// time.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned when parsing a zero-length string.
	ErrEmpty = errors.New("version is empty")
	// ErrBadLength is returned when the input does not have two or three fields.
	ErrBadLength = errors.New("version must have the form major.minor[.patch]")
	// ErrInvalidInteger is returned when a field is not an integer in 0-255.
	ErrInvalidInteger = errors.New("version field is not a valid integer")
)

// ParseError describes why a version string could not be parsed.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse version %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Version identifies a PHP release line, optionally down to the patch level.
type Version struct {
	Major    uint8
	Minor    uint8
	Patch    uint8
	HasPatch bool
}

// New returns a major.minor version without patch.
func New(major, minor uint8) Version {
	return Version{Major: major, Minor: minor}
}

// NewWithPatch returns a fully qualified major.minor.patch version.
func NewWithPatch(major, minor, patch uint8) Version {
	return Version{Major: major, Minor: minor, Patch: patch, HasPatch: true}
}

// Parse parses "M.N" or "M.N.P" where every field fits in a uint8.
func Parse(s string) (Version, error) {
	if len(s) == 0 {
		return Version{}, &ParseError{Input: s, Err: ErrEmpty}
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, &ParseError{Input: s, Err: ErrBadLength}
	}

	fields := make([]uint8, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return Version{}, &ParseError{Input: s, Err: fmt.Errorf("%w: %q", ErrInvalidInteger, part)}
		}
		fields[i] = uint8(n)
	}

	if len(fields) == 2 {
		return New(fields[0], fields[1]), nil
	}
	return NewWithPatch(fields[0], fields[1], fields[2]), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String formats the version as "M.N" or "M.N.P".
func (v Version) String() string {
	if !v.HasPatch {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MatchesMajorMinor reports whether both versions share major and minor.
// Patch is ignored on both sides.
func (v Version) MatchesMajorMinor(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}

// MajorMinor returns v with the patch component dropped.
func (v Version) MajorMinor() Version {
	return New(v.Major, v.Minor)
}

// NewerPatchThan reports whether v is a later patch of the same release line.
// A version without patch is older than any patched version of its line.
func (v Version) NewerPatchThan(other Version) bool {
	if !v.MatchesMajorMinor(other) || !v.HasPatch {
		return false
	}
	if !other.HasPatch {
		return true
	}
	return v.Patch > other.Patch
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
