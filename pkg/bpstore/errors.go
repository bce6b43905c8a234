package bpstore

import "errors"

var (
	// ErrOutOfMemory is returned by [Manager.Create] when every store slot
	// is already in use.
	ErrOutOfMemory = errors.New("bpstore: no free store slots")

	// ErrFailedStore is returned when a store operation fails against its
	// backing files (short read/write, unexpected EOF, corrupt header).
	ErrFailedStore = errors.New("bpstore: store operation failed")

	// ErrFailedOS is returned when an underlying OS-level call (creating
	// the store's root directory) fails.
	ErrFailedOS = errors.New("bpstore: os-level operation failed")

	// ErrTimeout is returned by Dequeue when no data becomes available
	// before the caller's timeout elapses.
	ErrTimeout = errors.New("bpstore: timed out waiting for data")

	// ErrInvalidHandle is returned when a call references a handle that
	// was never created, or was already destroyed.
	ErrInvalidHandle = errors.New("bpstore: invalid store handle")

	// ErrInvalidResource is returned by Release when the given SID is not
	// the current occupant of its data cache cell. Relinquish does not
	// return it: relinquishing an already-freed SID is a no-op.
	ErrInvalidResource = errors.New("bpstore: invalid or already-released resource")
)
