package ir

// Antic_In Solver (component F, spec 4.F): a backward fixed-point over
// successors with phi translation. Runs blockwise, up to maxAnticIter
// times, stopping as soon as an iteration grows no block's antic_in --
// antic_in is monotone, so comparing sizes before/after is a sufficient
// convergence check.
func solveAnticIn(order []*BasicBlock, vt *ValueTable, store *blockInfoStore, lf *loopForest, d *domInfo) {
	for iter := 0; iter < maxAnticIter; iter++ {
		changed := false
		for _, b := range order {
			info := store.of(b)
			before := info.anticIn.Size()

			if iter == 0 {
				seedAnticIn(b, info, vt, lf)
			}

			switch len(b.Successors) {
			case 0:
				// End block: antic_in remains empty.
			case 1:
				propagateAnticInThroughSuccessor(b, info, vt, store, lf, d, iter)
			default:
				intersectAnticInAcrossSuccessors(b, info, vt, store)
			}

			if info.anticIn.Size() != before {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// seedAnticIn seeds antic_in(B) with exp_gen(B) on the solver's first
// pass, unless B sits inside a loop the classifier flagged as infinite and
// NO_INF_LOOPS is in effect, in which case seeding is skipped so the set
// starts empty; entries can still arrive later by propagation from
// successors.
func seedAnticIn(b *BasicBlock, info *blockInfo, vt *ValueTable, lf *loopForest) {
	if vt.cfg.NoInfLoops && lf.insideInfiniteLoop(b) {
		return
	}
	for _, value := range info.expGen.Values() {
		repr, _ := info.expGen.Lookup(value)
		info.anticIn.Insert(value, repr)
	}
}

// propagateAnticInThroughSuccessor handles the single-successor case of
// 4.F: every entry of the successor's antic_in is phi-translated into b,
// and kept if it is clean and (per NO_INF_LOOPS2) the edge is not an
// early-iteration infinite-loop back edge.
func propagateAnticInThroughSuccessor(b *BasicBlock, info *blockInfo, vt *ValueTable, store *blockInfoStore, lf *loopForest, d *domInfo, iter int) {
	s := b.Successors[0]
	if vt.cfg.NoInfLoops2 && iter < 2 && lf.isInfiniteBackEdge(b, s, d) {
		return
	}
	sInfo := store.of(s)

	for _, value := range sInfo.anticIn.Values() {
		expr, _ := sInfo.anticIn.Lookup(value)

		translated, _ := phiTranslate(expr, s, b, vt, info.anticIn.Lookup, info.trans)
		transValue := vt.identify(translated)

		representative := expr
		if transValue != value {
			representative = translated
		}

		if isClean(expr.DefInst, vt, info.anticIn, nil) {
			info.anticIn.Insert(transValue, representative)
		}
		info.trans[expr] = representative
	}
}

// intersectAnticInAcrossSuccessors handles the multiple-successor case of
// 4.F: a value survives into antic_in(B) only if every successor
// anticipates it, and the representative chosen is clean in B.
func intersectAnticInAcrossSuccessors(b *BasicBlock, info *blockInfo, vt *ValueTable, store *blockInfoStore) {
	first := store.of(b.Successors[0])
	rest := make([]*blockInfo, 0, len(b.Successors)-1)
	for _, s := range b.Successors[1:] {
		rest = append(rest, store.of(s))
	}

	for _, value := range first.anticIn.Values() {
		expr, _ := first.anticIn.Lookup(value)

		inAll := true
		for _, other := range rest {
			if !other.anticIn.Has(value) {
				inAll = false
				break
			}
		}
		if !inAll {
			continue
		}
		if isClean(expr.DefInst, vt, info.anticIn, nil) {
			info.anticIn.Insert(value, expr)
		}
	}
}
