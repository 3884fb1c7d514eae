// Package cleanup applies a decision graph to a directory tree.
//
// The walk is depth first and post-order: a directory's entries are settled
// before the directory itself, so a directory whose own rule says delete is
// removed only once nothing inside it survived.
package cleanup

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lapas/keepengine/internal/fsops"
	"github.com/lapas/keepengine/internal/rules"
)

// ErrNotDirectory is returned when the cleanup root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Decider resolves the actions for a path relative to the cleanup root.
type Decider interface {
	GetAction(relPath string) rules.ActionResult
}

// Options configures a cleanup run
type Options struct {
	Mode   rules.Mode
	DryRun bool
	// Workers > 1 processes the root's entries concurrently.
	Workers int
}

// Engine walks a directory and removes what the rules say to remove
type Engine struct {
	rules  Decider
	fs     fsops.FS
	logger *slog.Logger
	opts   Options
}

// NewEngine creates a new cleanup engine. In dry-run mode fs is wrapped so
// that the same walk runs without touching anything.
func NewEngine(decider Decider, fs fsops.FS, logger *slog.Logger, opts Options) *Engine {
	if opts.DryRun {
		fs = fsops.DryRun(fs)
	}
	if opts.Mode == "" {
		opts.Mode = rules.ModeBase
	}
	return &Engine{
		rules:  decider,
		fs:     fs,
		logger: logger,
		opts:   opts,
	}
}

// Run cleans everything below root. The root itself is never removed.
// Filesystem errors on single entries are recorded in the report and do not
// stop the walk; only an unusable root is returned as an error.
func (e *Engine) Run(root string) (*Report, error) {
	e.logger.Info("starting cleanup",
		"root", root,
		"mode", e.opts.Mode,
		"dry_run", e.opts.DryRun)

	info, err := e.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat cleanup root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	w := &walker{Engine: e, root: root}
	w.report = &Report{
		Root:   root,
		Mode:   e.opts.Mode,
		DryRun: e.opts.DryRun,
	}

	if e.opts.Workers > 1 {
		w.report.RootEmpty = w.reduceRootParallel(e.opts.Workers)
	} else {
		w.report.RootEmpty = w.reduce(root, "")
	}
	w.report.sort()

	e.logger.Info("cleanup complete",
		"removed", len(w.report.Removed),
		"kept", w.report.Kept,
		"failures", len(w.report.Failures),
		"dry_run", e.opts.DryRun)

	return w.report, nil
}

// walker holds the state of one run. The report is shared between workers.
type walker struct {
	*Engine
	root string

	mu     sync.Mutex
	report *Report
}

// reduce processes every entry of dir and reports whether none survived.
func (w *walker) reduce(dir, rel string) bool {
	entries, ok := w.list(dir, rel)

	empty := ok
	for _, entry := range entries {
		if !w.reduceEntry(dir, rel, entry) {
			empty = false
		}
	}
	return empty
}

// reduceRootParallel is reduce for the root with one task per entry.
func (w *walker) reduceRootParallel(workers int) bool {
	entries, ok := w.list(w.root, "")

	gone := make([]bool, len(entries))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			gone[i] = w.reduceEntry(w.root, "", entry)
			return nil
		})
	}
	_ = g.Wait()

	empty := ok
	for _, v := range gone {
		if !v {
			empty = false
		}
	}
	return empty
}

// list reads dir sorted by name. ok is false when the listing is incomplete,
// in which case the directory must be treated as non-empty.
func (w *walker) list(dir, rel string) ([]os.DirEntry, bool) {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		w.fail(relOrDot(rel), "read", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, err == nil
}

// reduceEntry applies the decision for one entry and reports whether the
// entry is gone afterwards.
func (w *walker) reduceEntry(dir, dirRel string, entry os.DirEntry) bool {
	abs := filepath.Join(dir, entry.Name())
	rel := path.Join(dirRel, entry.Name())

	decision := w.rules.GetAction(rel)
	action := decision.Actions.Select(w.opts.Mode)

	w.logger.Debug("decision",
		"path", rel,
		"action", action,
		"descend", decision.Descend)

	if !entry.IsDir() {
		if action == rules.Delete {
			return w.remove(rel, KindFile, func() error { return w.fs.RemoveFile(abs) })
		}
		w.keep()
		return false
	}

	if !decision.Descend {
		if action == rules.Delete {
			return w.remove(rel, KindTree, func() error { return w.fs.RemoveAll(abs) })
		}
		w.keep()
		return false
	}

	// Deeper rules exist: settle the contents first. Whatever survived inside
	// keeps this directory alive regardless of its own action.
	if w.reduce(abs, rel) && action == rules.Delete {
		return w.remove(rel, KindDir, func() error { return w.fs.RemoveDir(abs) })
	}
	w.keep()
	return false
}

// remove runs op and records the outcome. A failed removal leaves the entry
// in place as far as the emptiness fold is concerned.
func (w *walker) remove(rel string, kind EntryKind, op func() error) bool {
	if w.opts.DryRun {
		w.logger.Info("[dry-run] would delete", "path", rel, "kind", kind)
	} else {
		w.logger.Debug("deleting", "path", rel, "kind", kind)
	}

	if err := op(); err != nil {
		w.fail(rel, "remove", err)
		return false
	}

	w.mu.Lock()
	w.report.Removed = append(w.report.Removed, Removal{Path: rel, Kind: kind})
	w.mu.Unlock()
	return true
}

func (w *walker) keep() {
	w.mu.Lock()
	w.report.Kept++
	w.mu.Unlock()
}

func (w *walker) fail(rel, op string, err error) {
	if fsops.IsNotEmpty(err) {
		w.logger.Warn("directory not empty, keeping it", "path", rel, "error", err)
	} else {
		w.logger.Warn("cleanup operation failed", "path", rel, "op", op, "error", err)
	}

	w.mu.Lock()
	w.report.Failures = append(w.report.Failures, Failure{Path: rel, Op: op, Err: err})
	w.mu.Unlock()
}

func relOrDot(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
