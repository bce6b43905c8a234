// Package bpfs provides the filesystem abstraction the persistent store is
// built on (spec §6's "file primitives open/close/read/write/seek/flush/remove,
// on a seekable byte-addressed namespace").
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os]
//   - [Fake]: in-memory implementation for tests
package bpfs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all standard
// library functions that accept [io.Reader], [io.Writer], [io.Seeker], or
// [io.Closer].
//
// Implementations must be safe for concurrent use by multiple goroutines.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Stat returns file info. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to stable storage. See [os.File.Sync].
	// This is the "flush" primitive spec §4.F calls after a write.
	Sync() error
}

// FS defines the filesystem operations the store needs.
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat]. Returns [os.ErrNotExist] if missing.
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file. See [os.Remove]. Returns [os.ErrNotExist] if missing.
	Remove(path string) error

	// WriteFile atomically-enough writes a whole file, creating or truncating it.
	// Used for the small `.tbl` relinquish tables (spec §6).
	WriteFile(path string, data []byte, perm os.FileMode) error

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the base names of dir's immediate entries. Returns
	// [os.ErrNotExist] if dir is missing. Used by the store's recovery
	// pass to discover which bucket files already exist on open.
	ReadDir(dir string) ([]string, error)
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
