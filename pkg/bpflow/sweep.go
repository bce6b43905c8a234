package bpflow

import "github.com/thnkslprpt/bplib/pkg/bpblock"

// MarkActive links flow onto pool's active-flow list so a subsequent
// ProcessAllFlows sweep will visit it. Safe to call repeatedly; a flow
// already marked active is left alone (spec §4.E).
func MarkActive(p *bpblock.Pool, flow *bpblock.Flow) {
	p.MarkFlowActive((*bpblock.Block)(flow))
}

// ProcessAllFlows sweeps the pool's active-flow list once, calling fn for
// every flow currently marked active. Per spec §4.E, each flow is cleared
// from the active list *before* fn runs, so fn (or anything it triggers,
// including a discard callback fired by a concurrent release elsewhere in
// the same goroutine) is free to call [MarkActive] again on the same flow
// to schedule another pass, without that re-mark being lost or causing
// infinite recursion within this sweep.
func ProcessAllFlows(p *bpblock.Pool, fn func(flow *bpblock.Flow)) {
	head := p.ActiveFlows()

	// Snapshot the list before invoking any callback: fn may call
	// MarkActive on a flow this same sweep already visited, re-linking it
	// onto head. Walking a live head while splicing into it would either
	// revisit that flow in this pass or corrupt the snapshot, so detach
	// the whole batch up front.
	var batch bpblock.Block
	bpblock.InitList(&batch)
	bpblock.ListMerge(&batch, head)

	bpblock.ForEachBlock(&batch, func(b *bpblock.Block) bool {
		bpblock.ListExtract(b)
		f, err := bpblock.CastFlow(b)
		if err != nil {
			// not reachable in practice: only TagFlow blocks are ever
			// linked onto the active-flow list.
			return true
		}
		fn(f)
		return true
	})
}
