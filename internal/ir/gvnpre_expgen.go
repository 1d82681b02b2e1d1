package ir

// Exp_Gen Builder (component D, spec 4.B): a topological walk over blocks,
// then over each block's instructions in program order, populating
// exp_gen and the initial avail_out for every block.

// buildExpGen walks fn's blocks in reverse-postorder (a topological order
// for the non-back-edge skeleton of the CFG) and, for every instruction,
// remembers its value and records it into exp_gen/avail_out per spec 4.B.
func buildExpGen(fn *Function, order []*BasicBlock, vt *ValueTable, store *blockInfoStore) {
	for _, b := range order {
		info := store.of(b)
		for _, inst := range b.Instructions {
			res := inst.GetResult()
			if res == nil {
				continue // void instructions never become values
			}
			value := vt.identify(res)

			if !niceValue(inst, vt.cfg) {
				continue
			}
			if isConstInst(inst) {
				continue // constants are globally available implicitly
			}

			info.availOut.Insert(value, res)
			if isClean(inst, vt, info.expGen, inst.GetBlock()) {
				info.expGen.Insert(value, res)
			}
		}
	}
}
