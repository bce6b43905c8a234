package bpstore

// Handle identifies one store slot managed by a [Manager].
type Handle int

// InvalidHandle is returned alongside an error whenever a Manager call
// cannot produce a valid handle.
const InvalidHandle Handle = -1

// SID (storage ID) identifies one enqueued record within a store, returned
// by Enqueue/Dequeue and consumed by Retrieve/Release/Relinquish. SID 0 is
// reserved ("vacant") and never assigned to a real record, so a zero value
// reliably means "no SID".
type SID uint64

// SIDVacant is the reserved zero value of SID.
const SIDVacant SID = 0

// DataCountPerBucket is the number of records grouped into each ".dat"/
// ".tbl" bucket file pair. Fixed at 256 because the on-disk relinquish
// table represents bucket membership with a single byte-indexed array
// (spec §4.F); changing it would break compatibility with any
// already-written store.
const DataCountPerBucket = 256

// dataID returns the zero-based record index a SID refers to.
func dataID(sid SID) uint32 { return uint32(sid) - 1 }

// sidFromDataID is the inverse of dataID.
func sidFromDataID(id uint32) SID { return SID(id) + 1 }

// bucketID returns which bucket file a data ID falls in.
func bucketID(id uint32) uint32 { return id >> 8 }

// bucketOffset returns a data ID's slot within its bucket, 0..255.
func bucketOffset(id uint32) uint8 { return uint8(id & 0xFF) }
