// Package service drives install, remove, update and info for PHP versions.
//
// Every operation loads the lock file and configuration at the start,
// works on the in-memory registry and persists it only as the last step of
// a successful sequence, so a failed operation never records a version
// that is not on disk.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/pwin/internal/binary"
	"github.com/ZebulonRouseFrantzich/pwin/internal/catalog"
	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/lock"
	"github.com/ZebulonRouseFrantzich/pwin/internal/logging"
	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

// tempArchivePrefix marks downloads in progress inside the install base.
const tempArchivePrefix = ".pwin-"

// archiveName returns the file name part of a manifest path for display.
// Both slash kinds count as separators.
func archiveName(p string) string {
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}

// Deps are the collaborators of a Manager.
type Deps struct {
	Storage   lock.Storage
	Config    ConfigSource
	Catalog   CatalogSource
	Fetcher   ArchiveFetcher
	Extractor ArchiveExtractor
	// Arch is the architecture of the running process.
	Arch platform.Arch

	// Optional
	Locker OperationLocker
	Logger logging.Logger
	Clock  Clock
}

// Manager orchestrates installs against the lock file.
type Manager struct {
	deps  Deps
	log   logging.Logger
	clock Clock
}

// NewManager creates a manager with dependency injection.
func NewManager(deps Deps) (*Manager, error) {
	switch {
	case deps.Storage == nil:
		return nil, fmt.Errorf("storage is required")
	case deps.Config == nil:
		return nil, fmt.Errorf("config source is required")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("catalog source is required")
	case deps.Fetcher == nil:
		return nil, fmt.Errorf("archive fetcher is required")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("archive extractor is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Manager{
		deps:  deps,
		log:   logging.OrNop(deps.Logger),
		clock: clock,
	}, nil
}

// Info returns the installed entries in lock file order.
func (m *Manager) Info(ctx context.Context) ([]lock.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}
	reg, err := m.loadRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Entries(), nil
}

// Install downloads and records the newest patch of v's release line.
func (m *Manager) Install(ctx context.Context, v version.Version) (*InstallResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	reg, cfg, err := m.loadState(ctx)
	if err != nil {
		return nil, err
	}

	result, err := m.install(ctx, reg, cfg.InstallPath(), v, cfg.ThreadSafetyMode(), nil)
	if err != nil {
		return nil, err
	}
	if result.Status == StatusInstalled {
		if err := m.saveRegistry(reg); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Remove deletes the installation directory of v and its lock file entry.
func (m *Manager) Remove(ctx context.Context, v version.Version) (*RemoveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	reg, cfg, err := m.loadState(ctx)
	if err != nil {
		return nil, err
	}

	result, err := m.remove(reg, cfg.InstallPath(), v)
	if err != nil {
		return nil, err
	}
	if result.Status == StatusRemoved {
		if err := m.saveRegistry(reg); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// install runs the install sequence against reg without persisting it.
// cat may be nil, in which case the catalog is fetched.
func (m *Manager) install(
	ctx context.Context,
	reg *lock.Registry,
	base string,
	v version.Version,
	ts config.ThreadSafety,
	cat catalog.Catalog,
) (*InstallResult, error) {
	start := m.clock.Now()
	result := &InstallResult{Requested: v}

	// 1. Already recorded: nothing to do, no network
	if existing, ok := reg.Get(v); ok {
		result.Status = StatusAlreadyInstalled
		result.Entry = existing
		result.Dir = filepath.Join(base, existing.Version.String())
		return result, nil
	}

	arch := m.deps.Arch
	m.log.Debug("resolving build", "version", v, "thread_safety", ts, "arch", arch)

	// 2. Resolve release and build
	if cat == nil {
		var err error
		if cat, err = m.fetchCatalog(ctx); err != nil {
			return nil, err
		}
	}

	rel, err := cat.Lookup(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersionNotFound, err)
	}
	if v.HasPatch && v.Patch != rel.Version.Patch {
		m.log.Warn("requested patch is not published, installing the current patch",
			"requested", v, "available", rel.Version)
	}

	variant, build, err := catalog.SelectBuild(rel, ts, arch)
	if errors.Is(err, catalog.ErrNoMatch) {
		m.log.Info("no matching build", "version", rel.Version, "thread_safety", ts, "arch", arch)
		result.Status = StatusNoMatchingBuild
		result.Entry = lock.Entry{Version: rel.Version, ThreadSafety: ts, Arch: arch}
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if !catalog.ExactThreadSafety(variant, ts) {
		m.log.Warn("selected build only contains the thread safety token",
			"variant", variant, "thread_safety", ts)
	}
	result.Variant = variant
	result.Archive = archiveName(build.Zip.Path)
	result.Dir = filepath.Join(base, rel.Version.String())

	// 3. Download, verify and extract
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("create install directory %s: %w", base, err)
	}

	// The manifest path is only used in the URL, never in the local name.
	tmp := filepath.Join(base, tempArchivePrefix+uuid.NewString()+".zip")
	url := m.deps.Catalog.ArchiveURL(build.Zip.Path)
	m.log.Info("downloading", "url", url, "size", build.Zip.Size)

	if err := m.deps.Fetcher.DownloadToFile(ctx, url, tmp); err != nil {
		m.discard(tmp)
		return nil, fmt.Errorf("download %s: %w", result.Archive, err)
	}
	if err := binary.VerifySHA256(tmp, build.Zip.SHA256); err != nil {
		m.discard(tmp)
		return nil, fmt.Errorf("verify %s: %w", result.Archive, err)
	}

	m.log.Debug("extracting", "archive", tmp, "dest", result.Dir)
	if err := m.deps.Extractor.ExtractZip(tmp, result.Dir); err != nil {
		m.discard(tmp)
		return nil, fmt.Errorf("extract %s: %w", result.Archive, err)
	}

	// 4. Clean up; a leftover archive is only worth a warning
	if err := os.Remove(tmp); err != nil {
		m.log.Warn("could not remove downloaded archive", "path", tmp, "error", err)
		result.CleanupErr = err
	}

	// 5. Record
	entry := lock.Entry{Version: rel.Version, ThreadSafety: ts, Arch: arch}
	if err := reg.Add(entry); err != nil {
		return nil, err
	}

	result.Status = StatusInstalled
	result.Entry = entry
	result.Duration = m.clock.Now().Sub(start)
	m.log.Info("installed", "version", entry.Version, "variant", variant, "dir", result.Dir)
	return result, nil
}

// remove deletes the installation of v and drops it from reg without
// persisting. The directory is named after the recorded version.
func (m *Manager) remove(reg *lock.Registry, base string, v version.Version) (*RemoveResult, error) {
	result := &RemoveResult{Requested: v}

	entry, ok := reg.Get(v)
	if !ok {
		result.Status = StatusNotInstalled
		return result, nil
	}
	result.Entry = entry
	result.Dir = filepath.Join(base, entry.Version.String())

	m.log.Debug("removing", "dir", result.Dir)
	if err := os.RemoveAll(result.Dir); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDeleteFailed, result.Dir, err)
	}

	reg.Remove(v)
	result.Status = StatusRemoved
	m.log.Info("removed", "version", entry.Version, "dir", result.Dir)
	return result, nil
}

// discard deletes a temporary archive after a failed step.
func (m *Manager) discard(tmp string) {
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.log.Warn("could not remove downloaded archive", "path", tmp, "error", err)
	}
}

func (m *Manager) fetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	cat, err := m.deps.Catalog.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return cat, nil
}

func (m *Manager) acquire(ctx context.Context) (func(), error) {
	if m.deps.Locker == nil {
		return func() {}, nil
	}
	release, err := m.deps.Locker.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire operation lock: %w", err)
	}
	return func() {
		if err := release(); err != nil {
			m.log.Warn("could not release operation lock", "error", err)
		}
	}, nil
}

func (m *Manager) loadState(ctx context.Context) (*lock.Registry, *config.Config, error) {
	reg, err := m.loadRegistry()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := m.deps.Config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load config: %w", ErrStorage, err)
	}
	return reg, cfg, nil
}

func (m *Manager) loadRegistry() (*lock.Registry, error) {
	reg, err := lock.Load(m.deps.Storage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return reg, nil
}

func (m *Manager) saveRegistry(reg *lock.Registry) error {
	if err := lock.Save(m.deps.Storage, reg); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
