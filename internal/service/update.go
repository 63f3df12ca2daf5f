package service

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/pwin/internal/catalog"
	"github.com/ZebulonRouseFrantzich/pwin/internal/lock"
)

// Update moves installed release lines to the newest published patch.
//
// The catalog is fetched once. For every targeted entry a plan is made; in
// dry-run mode the plans are returned as is. Otherwise each upgrade removes
// the old installation and installs the new patch with the thread safety
// recorded for the entry. The lock file is saved after each step so it
// always matches what is on disk.
func (m *Manager) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
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

	var targets []lock.Entry
	if req.Version != nil {
		entry, ok := reg.Get(*req.Version)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotInstalled, req.Version)
		}
		targets = []lock.Entry{entry}
	} else {
		targets = reg.Entries()
	}

	result := &UpdateResult{DryRun: req.DryRun}
	if len(targets) == 0 {
		return result, nil
	}

	cat, err := m.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range targets {
		result.Plans = append(result.Plans, m.plan(cat, entry))
	}
	if req.DryRun {
		return result, nil
	}

	base := cfg.InstallPath()
	for i := range result.Plans {
		p := &result.Plans[i]
		if p.Action != ActionUpgrade {
			continue
		}

		m.log.Info("upgrading", "from", p.Installed.Version, "to", p.Available)
		if _, err := m.remove(reg, base, p.Installed.Version); err != nil {
			return result, fmt.Errorf("upgrade %s: %w", p.Installed.Version, err)
		}
		if err := m.saveRegistry(reg); err != nil {
			return result, err
		}

		installed, err := m.install(ctx, reg, base, p.Installed.Version.MajorMinor(), p.Installed.ThreadSafety, cat)
		if err != nil {
			return result, fmt.Errorf("upgrade %s: %w", p.Installed.Version, err)
		}
		p.Install = installed
		if err := m.saveRegistry(reg); err != nil {
			return result, err
		}
	}
	return result, nil
}

// plan decides what to do with one installed entry.
func (m *Manager) plan(cat catalog.Catalog, entry lock.Entry) UpdatePlan {
	p := UpdatePlan{Installed: entry}

	rel, err := cat.Lookup(entry.Version)
	if err != nil {
		p.Action = ActionUnavailable
		p.Reason = "release line no longer published"
		return p
	}
	p.Available = rel.Version

	if !rel.Version.NewerPatchThan(entry.Version) {
		p.Action = ActionUpToDate
		return p
	}

	variant, _, err := catalog.SelectBuild(rel, entry.ThreadSafety, m.deps.Arch)
	if err != nil {
		p.Action = ActionUnavailable
		p.Reason = fmt.Sprintf("no %s %s build for %s", entry.ThreadSafety, m.deps.Arch, rel.Version)
		return p
	}

	p.Action = ActionUpgrade
	p.Variant = variant
	return p
}
