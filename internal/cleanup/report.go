package cleanup

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/lapas/keepengine/internal/rules"
)

// EntryKind tells how an entry was removed
type EntryKind string

const (
	// KindFile is a file or symlink removed by unlink.
	KindFile EntryKind = "file"
	// KindDir is a directory removed after its contents were emptied.
	KindDir EntryKind = "dir"
	// KindTree is a directory removed in one piece without inspection.
	KindTree EntryKind = "tree"
)

// Removal is one entry that was (or in a dry run, would be) deleted
type Removal struct {
	Path string    `json:"path"` // relative to the cleanup root
	Kind EntryKind `json:"kind"`
}

// Failure is a recoverable error hit during the walk
type Failure struct {
	Path string `json:"path"` // relative to the cleanup root, "." for the root itself
	Op   string `json:"op"`
	Err  error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a cleanup run
type Report struct {
	Root     string     `json:"root"`
	Mode     rules.Mode `json:"mode"`
	DryRun   bool       `json:"dry_run"`
	Removed  []Removal  `json:"removed"`
	Kept     int        `json:"kept"`
	Failures []Failure  `json:"failures"`
	// RootEmpty reports whether no entry survived below the root.
	RootEmpty bool `json:"root_empty"`
}

// Err aggregates every failure into one error, or returns nil.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}

	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// sort orders removals and failures by path so that reports are stable
// regardless of directory order or fan-out.
func (r *Report) sort() {
	sort.SliceStable(r.Removed, func(i, j int) bool {
		return r.Removed[i].Path < r.Removed[j].Path
	})
	sort.SliceStable(r.Failures, func(i, j int) bool {
		return r.Failures[i].Path < r.Failures[j].Path
	})
}
