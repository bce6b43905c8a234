// Package bpblock implements the BP v7 node's memory pool: a fixed-size
// arena of blocks, an intrusive circular doubly-linked list primitive, a
// tagged block taxonomy with safe downcasts, and light/heavy reference
// counting.
//
// A [Pool] is created once over a caller-sized arena and is single-threaded
// cooperative: callers must serialize all calls to a given Pool from one
// goroutine (normally the forwarder). The persistent store in pkg/bpstore is
// the only parallel-safe subsystem.
package bpblock
