// Package bpflow implements the flow/sub-queue engine: bounded FIFO
// sub-queues for a flow's ingress and egress sides, the active-flow sweep
// that drives forwarding, and the chunked-chain copy helper used when a
// bundle's encoded bytes need to move between two chunk lists.
//
// bpflow operates on a [bpblock.Pool] and is subject to the same
// single-goroutine-cooperative rule as bpblock itself.
package bpflow
