package bpblock

// MakeFlowBlock allocates a flow block identifying an external interface
// by handle, with its input and output sub-queues initialized per the
// given depth limits (0 = unbounded). Per spec §4.E a fresh flow block is
// not linked onto the pool's active-flow list until it actually has work;
// see [Pool.MarkFlowActive].
func MakeFlowBlock(p *Pool, handle BPHandle, inputDepthMax, outputDepthMax int) (*Flow, error) {
	b, err := p.Alloc(TagFlow)
	if err != nil {
		return nil, err
	}

	in := &SubQueue{}
	InitSubQueue(in, inputDepthMax)

	out := &SubQueue{}
	InitSubQueue(out, outputDepthMax)

	b.externalID = handle
	b.input = in
	b.output = out

	return (*Flow)(b), nil
}

// ExternalID returns the handle identifying which interface this flow
// belongs to.
func (f *Flow) ExternalID() BPHandle { return f.externalID }

// Input returns the flow's ingress sub-queue.
func (f *Flow) Input() *SubQueue { return f.input }

// Output returns the flow's egress sub-queue.
func (f *Flow) Output() *SubQueue { return f.output }

// Parent returns the flow's parent object, a light reference held for as
// long as the flow block exists, or nil.
func (f *Flow) Parent() *Block { return f.parent }

// SetParent stores a light reference to the flow's parent object. The
// caller is responsible for having already called [DuplicateLightReference]
// (or equivalent) on parent before handing it to SetParent, and for
// releasing the previous parent (if any) itself — SetParent does not touch
// refcounts.
func (f *Flow) SetParent(parent *Block) { f.parent = parent }
