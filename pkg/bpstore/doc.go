// Package bpstore implements the bucketed, append-only file-backed
// persistent store (spec §4.F) and its direct-mapped data cache (§4.G).
//
// Records are grouped into fixed-size buckets of [DataCountPerBucket]
// entries, each bucket backed by one ".dat" file holding size-prefixed
// records and, once entries in the bucket have been relinquished and
// relinquishing has moved on to another bucket, a matching ".tbl" file
// recording which entries are gone. A store is
// identified by a [Handle] obtained from [Manager.Create] and is safe for
// concurrent use by multiple goroutines: every operation on a given handle
// serializes through that store's own lock.
package bpstore
