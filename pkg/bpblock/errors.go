package bpblock

import "errors"

// ErrOutOfMemory is returned by allocation calls when the pool's free list
// and recycled list are both empty (spec §4.B "Out-of-memory handling").
var ErrOutOfMemory = errors.New("bpblock: pool out of memory")

// ErrWrongTag is returned by a Cast* function when a block's tag does not
// match the requested view (spec §4.C "safe downcast").
var ErrWrongTag = errors.New("bpblock: block has wrong tag for requested view")
