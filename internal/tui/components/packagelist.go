package components

import (
	"time"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
)

// PackageState is where a package is in the install run.
type PackageState string

const (
	PackageInstalling PackageState = "installing"
	PackageInstalled  PackageState = "installed"
	PackageFailed     PackageState = "failed"
)

// PackageEntry is one package line of the install view.
type PackageEntry struct {
	Spec     string
	State    PackageState
	LastLine string
	ExitCode int
	Duration time.Duration
}

// EntryFromResult converts a finished install into a list entry.
func EntryFromResult(result model.InstallResult) PackageEntry {
	entry := PackageEntry{
		Spec:     result.Spec,
		State:    PackageInstalled,
		LastLine: result.LastLine,
		ExitCode: result.ExitCode,
		Duration: result.Duration,
	}
	if result.Status == model.InstallFailed {
		entry.State = PackageFailed
	}
	return entry
}

// PackageList holds packages in the order their installs started.
type PackageList struct {
	entries []PackageEntry
}

// NewPackageList constructs a package list component.
func NewPackageList(order []string, packages map[string]PackageEntry) PackageList {
	entries := make([]PackageEntry, 0, len(order))
	for _, spec := range order {
		entries = append(entries, packages[spec])
	}
	return PackageList{entries: entries}
}

// Entries returns the ordered package entries.
func (l PackageList) Entries() []PackageEntry {
	clone := make([]PackageEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
