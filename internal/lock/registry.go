// Package lock records which PHP versions are installed.
//
// The registry is the single source of truth for installed versions. It is
// loaded in full at the start of every operation, mutated in memory and
// written back in full once the operation has succeeded. At most one entry
// exists per major.minor version.
package lock

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

// ErrDuplicate is returned by Add when an equivalent version is already recorded.
var ErrDuplicate = errors.New("version already recorded")

// Entry is one installed PHP build.
type Entry struct {
	Version      version.Version
	ThreadSafety config.ThreadSafety
	Arch         platform.Arch
}

// String returns e.g. "8.1.17 NTS x64".
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s", e.Version, e.ThreadSafety, e.Arch)
}

// Registry is an ordered set of entries, unique by major.minor.
type Registry struct {
	entries []Entry
}

// New returns a registry holding the given entries. Later entries that are
// version-equivalent to an earlier one are dropped.
func New(entries ...Entry) *Registry {
	r := &Registry{}
	for _, e := range entries {
		_ = r.Add(e)
	}
	return r
}

func (r *Registry) index(v version.Version) int {
	return slices.IndexFunc(r.entries, func(e Entry) bool {
		return e.Version.MatchesMajorMinor(v)
	})
}

// Has reports whether an entry equivalent to v is recorded.
func (r *Registry) Has(v version.Version) bool {
	return r.index(v) >= 0
}

// Get returns the entry equivalent to v.
func (r *Registry) Get(v version.Version) (Entry, bool) {
	i := r.index(v)
	if i < 0 {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Add appends e. It fails with ErrDuplicate if an equivalent version exists.
func (r *Registry) Add(e Entry) error {
	if r.Has(e.Version) {
		return fmt.Errorf("%s: %w", e.Version.MajorMinor(), ErrDuplicate)
	}
	r.entries = append(r.entries, e)
	return nil
}

// Remove deletes every entry equivalent to v and returns how many were removed.
func (r *Registry) Remove(v version.Version) int {
	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e Entry) bool {
		return e.Version.MatchesMajorMinor(v)
	})
	return before - len(r.entries)
}

// All yields entries in storage order. The sequence can be ranged over
// more than once.
func (r *Registry) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range r.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in storage order.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
