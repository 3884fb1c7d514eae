// Package fsops is the filesystem surface of the cleanup engine.
//
// Every mutation goes through FS so that a dry run can swap in a mutator
// that records nothing and removes nothing while the traversal stays the same.
package fsops

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// FS provides the operations the cleanup traversal needs.
type FS interface {
	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists a directory without following symlinks for the entries.
	// On failure it returns whatever entries were read before the error.
	ReadDir(path string) ([]os.DirEntry, error)

	// RemoveFile unlinks a file or symlink.
	RemoveFile(path string) error

	// RemoveDir removes an empty directory.
	RemoveDir(path string) error

	// RemoveAll removes a directory and everything below it.
	RemoveAll(path string) error
}

// RealFS implements FS on the host filesystem.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Stat returns file info for path.
func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists the entries of path in directory order.
func (fs *RealFS) ReadDir(path string) ([]os.DirEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return f.ReadDir(-1)
}

// RemoveFile unlinks path. Directories are refused.
func (fs *RealFS) RemoveFile(path string) error {
	if err := unix.Unlink(path); err != nil {
		return &os.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}

// RemoveDir removes path only if it is an empty directory.
func (fs *RealFS) RemoveDir(path string) error {
	if err := unix.Rmdir(path); err != nil {
		return &os.PathError{Op: "rmdir", Path: path, Err: err}
	}
	return nil
}

// RemoveAll removes path and all its contents.
func (fs *RealFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// IsNotEmpty reports whether err says a directory still has entries.
func IsNotEmpty(err error) bool {
	return errors.Is(err, unix.ENOTEMPTY) || errors.Is(err, unix.EEXIST)
}

// DryRun wraps fs so that listing still works but every removal is a no-op
// that reports success.
func DryRun(fs FS) FS {
	return dryRunFS{FS: fs}
}

type dryRunFS struct {
	FS
}

func (dryRunFS) RemoveFile(string) error { return nil }
func (dryRunFS) RemoveDir(string) error  { return nil }
func (dryRunFS) RemoveAll(string) error  { return nil }
