package service

import (
	"context"
	"errors"
	"time"

	"github.com/ZebulonRouseFrantzich/pwin/internal/catalog"
	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/lock"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

var (
	// ErrCatalogUnavailable wraps transport and decode failures of the
	// release manifest.
	ErrCatalogUnavailable = errors.New("release catalog unavailable")
	// ErrVersionNotFound is returned when the catalog has no release for
	// the requested major.minor.
	ErrVersionNotFound = errors.New("version not found")
	// ErrDeleteFailed is returned when an installation directory could not
	// be removed. The lock file is left unchanged.
	ErrDeleteFailed = errors.New("failed to delete installation")
	// ErrNotInstalled is returned by Update for a version that is not installed.
	ErrNotInstalled = errors.New("version not installed")
	// ErrStorage wraps failures reading or writing the lock file or the
	// configuration file.
	ErrStorage = errors.New("state storage failure")
)

// ConfigSource provides the user configuration. *config.Store satisfies it.
type ConfigSource interface {
	Load(ctx context.Context) (*config.Config, error)
}

// CatalogSource provides the release manifest. *catalog.Client satisfies it.
type CatalogSource interface {
	Fetch(ctx context.Context) (catalog.Catalog, error)
	ArchiveURL(path string) string
}

// ArchiveFetcher downloads an archive to a file. *binary.Downloader satisfies it.
type ArchiveFetcher interface {
	DownloadToFile(ctx context.Context, url, destPath string) error
}

// ArchiveExtractor unpacks a zip archive. *binary.Extractor satisfies it.
type ArchiveExtractor interface {
	ExtractZip(archivePath, destDir string) error
}

// OperationLocker serializes mutating operations across processes.
// transaction.DirLocker satisfies it.
type OperationLocker interface {
	Acquire(ctx context.Context) (release func() error, err error)
}

// Status is the outcome of Install or Remove.
type Status int

const (
	// StatusInstalled means the version was downloaded and recorded.
	StatusInstalled Status = iota
	// StatusAlreadyInstalled means an equivalent version was already recorded.
	StatusAlreadyInstalled
	// StatusNoMatchingBuild means the release has no build for the host's
	// thread safety and architecture. Nothing was changed.
	StatusNoMatchingBuild
	// StatusRemoved means the installation directory and record were deleted.
	StatusRemoved
	// StatusNotInstalled means there was nothing to remove.
	StatusNotInstalled
)

func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusAlreadyInstalled:
		return "already installed"
	case StatusNoMatchingBuild:
		return "no matching build"
	case StatusRemoved:
		return "removed"
	case StatusNotInstalled:
		return "not installed"
	default:
		return "unknown"
	}
}

// InstallResult describes the outcome of Install.
type InstallResult struct {
	Requested version.Version
	Status    Status
	// Entry is the recorded entry: the new one for StatusInstalled, the
	// existing one for StatusAlreadyInstalled. For StatusNoMatchingBuild it
	// holds the combination that was looked for.
	Entry lock.Entry
	// Variant is the selected build name, e.g. "nts-vs16-x64".
	Variant string
	Dir     string
	Archive string
	// CleanupErr is set when the downloaded archive could not be deleted.
	CleanupErr error
	Duration   time.Duration
}

// RemoveResult describes the outcome of Remove.
type RemoveResult struct {
	Requested version.Version
	Status    Status
	Entry     lock.Entry
	Dir       string
}

// UpdateRequest selects what Update looks at.
type UpdateRequest struct {
	// Version limits the update to one installed release line. Nil means all.
	Version *version.Version
	DryRun  bool
}

// Action is the planned step for one installed entry.
type Action int

const (
	// ActionUpToDate means the catalog has no newer patch.
	ActionUpToDate Action = iota
	// ActionUpgrade means a newer patch will be (or was) installed.
	ActionUpgrade
	// ActionUnavailable means the release line or a matching build is no
	// longer published.
	ActionUnavailable
)

func (a Action) String() string {
	switch a {
	case ActionUpToDate:
		return "up to date"
	case ActionUpgrade:
		return "upgrade"
	case ActionUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// UpdatePlan is the decision for one installed entry.
type UpdatePlan struct {
	Installed lock.Entry
	Action    Action
	// Available is the catalog's newest patch, when the line is published.
	Available version.Version
	// Variant is the build that would be installed for ActionUpgrade.
	Variant string
	Reason  string
	// Install is set once an upgrade has been applied.
	Install *InstallResult
}

// UpdateResult describes the outcome of Update.
type UpdateResult struct {
	DryRun bool
	Plans  []UpdatePlan
}

// Upgrades returns the number of plans with ActionUpgrade.
func (r *UpdateResult) Upgrades() int {
	n := 0
	for _, p := range r.Plans {
		if p.Action == ActionUpgrade {
			n++
		}
	}
	return n
}
