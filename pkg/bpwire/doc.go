// Package bpwire provides the minimal wire-level primitive the mpool needs
// to exercise its chunk lists in tests and demos: splitting a byte buffer
// into a chain of [bpblock.CBORData] blocks and reassembling one. It is
// deliberately not a BP v7 CBOR codec (out of scope, see SPEC_FULL.md §1);
// real bundle encoding/decoding belongs to a separate package this node
// does not implement.
package bpwire
