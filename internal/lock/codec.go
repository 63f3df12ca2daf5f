package lock

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

type lockFile struct {
	Versions []record `toml:"versions"`
}

type record struct {
	ThreadSafety string        `toml:"thread_safety"`
	Arch         string        `toml:"arch"`
	Version      versionRecord `toml:"version"`
}

type versionRecord struct {
	Major uint8  `toml:"major"`
	Minor uint8  `toml:"minor"`
	Patch *uint8 `toml:"patch,omitempty"`
}

// Load reads the registry from s. Nothing persisted yields an empty registry.
func Load(s Storage) (*Registry, error) {
	data, err := s.Load()
	if errors.Is(err, ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lock file: %w", err)
	}
	return Decode(data)
}

// Save encodes r and hands it to s in one write.
func Save(s Storage, r *Registry) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	if err := s.Save(data); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return nil
}

// Decode parses the TOML lock file format.
func Decode(data []byte) (*Registry, error) {
	var f lockFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decode lock file: %w", err)
	}

	r := New()
	for i, rec := range f.Versions {
		e, err := rec.entry()
		if err != nil {
			return nil, fmt.Errorf("decode lock file: versions[%d]: %w", i, err)
		}
		// Files written by older releases could hold duplicates; keep the first.
		_ = r.Add(e)
	}
	return r, nil
}

// Encode renders r in the TOML lock file format.
func Encode(r *Registry) ([]byte, error) {
	f := lockFile{Versions: make([]record, 0, r.Len())}
	for e := range r.All() {
		rec, err := newRecord(e)
		if err != nil {
			return nil, err
		}
		f.Versions = append(f.Versions, rec)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode lock file: %w", err)
	}
	return buf.Bytes(), nil
}

func newRecord(e Entry) (record, error) {
	ts, err := e.ThreadSafety.MarshalText()
	if err != nil {
		return record{}, err
	}
	arch, err := e.Arch.MarshalText()
	if err != nil {
		return record{}, err
	}
	rec := record{
		ThreadSafety: string(ts),
		Arch:         string(arch),
		Version:      versionRecord{Major: e.Version.Major, Minor: e.Version.Minor},
	}
	if e.Version.HasPatch {
		patch := e.Version.Patch
		rec.Version.Patch = &patch
	}
	return rec, nil
}

func (rec record) entry() (Entry, error) {
	var e Entry
	if err := e.ThreadSafety.UnmarshalText([]byte(rec.ThreadSafety)); err != nil {
		return Entry{}, err
	}
	if err := e.Arch.UnmarshalText([]byte(rec.Arch)); err != nil {
		return Entry{}, err
	}
	if rec.Version.Patch != nil {
		e.Version = version.NewWithPatch(rec.Version.Major, rec.Version.Minor, *rec.Version.Patch)
	} else {
		e.Version = version.New(rec.Version.Major, rec.Version.Minor)
	}
	return e, nil
}
