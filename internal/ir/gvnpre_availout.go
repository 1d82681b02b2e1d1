package ir

// Avail_Out Propagator (component E, spec 4.D): a dominator-tree top-down
// walk that completes each block's avail_out with whatever its immediate
// dominator already made available, so the leader used downstream is the
// one from the dominating context rather than a local recomputation.

// propagateAvailOut walks fn's dominator tree in pre-order, skipping only the
// entry block, which keeps whatever 4.B already put there. Every other block,
// including a block with no successors, inherits its immediate dominator's
// avail_out.
func propagateAvailOut(fn *Function, d *domInfo, store *blockInfoStore) {
	for _, b := range d.preorder() {
		idom := b.DominatedBy
		if idom == nil {
			continue // entry block
		}

		info := store.of(b)
		parentInfo := store.of(idom)
		for _, value := range parentInfo.availOut.Values() {
			repr, _ := parentInfo.availOut.Lookup(value)
			info.availOut.Replace(value, repr)
		}
	}
}
