// Package filesys provides the file system seams used by dnsmark.
// The marker writer and the config loader talk to these interfaces instead of
// the os package directly so their failure paths can be exercised in tests.
package filesys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// ReadWriteFS is what the config loader and the marker writer need:
// whole-file reads and writes, plus Stat to keep an existing file's mode.
type ReadWriteFS interface {
	Stat(string) (fs.FileInfo, error)
	ReadFile(string) ([]byte, error)
	WriteFile(string, []byte, os.FileMode) error
}

// FileOps is what AtomicWrite needs.
type FileOps interface {
	Open(string) (*os.File, error)
	CreateTemp(string, string) (*os.File, error)
	Rename(string, string) error
	Remove(string) error
	Chmod(string, os.FileMode) error
}

// OS returns a file system implementation that delegates to the standard library.
func OS() OsFS {
	return OsFS{}
}

// OsFS implements both ReadWriteFS and FileOps against the local disk.
type OsFS struct{}

func (OsFS) Stat(p string) (fs.FileInfo, error)                { return os.Stat(p) }
func (OsFS) Open(p string) (*os.File, error)                   { return os.Open(p) }
func (OsFS) ReadFile(p string) ([]byte, error)                 { return os.ReadFile(p) }
func (OsFS) WriteFile(p string, b []byte, m os.FileMode) error { return os.WriteFile(p, b, m) }
func (OsFS) CreateTemp(dir, pat string) (*os.File, error)      { return os.CreateTemp(dir, pat) }
func (OsFS) Rename(old, newName string) error                  { return os.Rename(old, newName) }
func (OsFS) Remove(p string) error                             { return os.Remove(p) }
func (OsFS) Chmod(p string, m os.FileMode) error               { return os.Chmod(p, m) }

var (
	_ ReadWriteFS = OsFS{}
	_ FileOps     = OsFS{}
)

// AtomicWrite replaces dst with data through a temp file in the same
// directory followed by a rename, so readers never observe a half-written
// target:
//
//  1. temp file in the same dir
//  2. fsync(temp) + close
//  3. chmod(temp, perm)
//  4. rename(temp, dst)
//  5. fsync(dir), best effort
//
// It is opt-in; the default write path rewrites the file in place.
func AtomicWrite(ops FileOps, dst string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(dst)
	tmp, err := ops.CreateTemp(dir, ".dnsmark-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", dst, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			err = multierr.Append(err, ops.Remove(tmpName))
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return fmt.Errorf("writing temp file for %s: %w", dst, err)
	}
	if err = ops.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file for %s: %w", dst, err)
	}
	if err = ops.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}

	if d, derr := ops.Open(dir); derr == nil {
		// directory sync is advisory; the rename already happened
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
