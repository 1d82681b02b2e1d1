package ir

// Dominator tree construction for a single function's control-flow graph.
//
// This implements the "engineered algorithm" of Cooper, Harvey, and Kennedy,
// "A Simple, Fast Dominance Algorithm" (2001): iterate a reverse-postorder
// walk, intersecting the dominator sets of a block's already-processed
// predecessors, until the idom assignment stops changing.

// domInfo holds the dominance facts for one function, addressed by
// BasicBlock pointer rather than by dense integer id (the CFG here is a
// pointer graph, not an index graph).
type domInfo struct {
	entry    *BasicBlock
	rpo      []*BasicBlock
	rpoNum   map[*BasicBlock]int
	idom     map[*BasicBlock]*BasicBlock // nil for entry
	children map[*BasicBlock][]*BasicBlock
}

// reversePostOrder walks the CFG from entry in reverse postorder. For a
// reducible CFG this is a topological order modulo back edges, which is
// exactly what the Exp_Gen walk (4.B) and the dominance algorithm need.
func reversePostOrder(entry *BasicBlock) []*BasicBlock {
	visited := make(map[*BasicBlock]bool)
	var post []*BasicBlock

	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		post = append(post, b)
	}
	visit(entry)

	rpo := make([]*BasicBlock, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// buildDomTree computes the immediate dominator of every block reachable
// from fn.Entry and records it on BasicBlock.DominatedBy / Dominates, the
// side-table form the rest of the pass (and the collaborator) relies on.
func buildDomTree(fn *Function) *domInfo {
	entry := fn.Entry
	if entry == nil && len(fn.Blocks) > 0 {
		entry = fn.Blocks[0]
	}
	if entry == nil {
		return &domInfo{idom: map[*BasicBlock]*BasicBlock{}, children: map[*BasicBlock][]*BasicBlock{}}
	}

	rpo := reversePostOrder(entry)
	rpoNum := make(map[*BasicBlock]int, len(rpo))
	for i, b := range rpo {
		rpoNum[b] = i
	}

	idom := make(map[*BasicBlock]*BasicBlock, len(rpo))
	idom[entry] = entry // sentinel self-dominance, cleared below

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom *BasicBlock
			for _, p := range b.Predecessors {
				if _, ok := rpoNum[p]; !ok {
					continue // unreachable predecessor (e.g. dead block)
				}
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersectDom(idom, rpoNum, p, newIdom)
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	idom[entry] = nil

	children := make(map[*BasicBlock][]*BasicBlock, len(rpo))
	for _, b := range rpo {
		b.DominatedBy = idom[b]
		b.Dominates = nil
	}
	for _, b := range rpo {
		if p := idom[b]; p != nil {
			children[p] = append(children[p], b)
			p.Dominates = append(p.Dominates, b)
		}
	}

	return &domInfo{entry: entry, rpo: rpo, rpoNum: rpoNum, idom: idom, children: children}
}

func intersectDom(idom map[*BasicBlock]*BasicBlock, rpoNum map[*BasicBlock]int, b1, b2 *BasicBlock) *BasicBlock {
	for b1 != b2 {
		for rpoNum[b1] > rpoNum[b2] {
			b1 = idom[b1]
		}
		for rpoNum[b2] > rpoNum[b1] {
			b2 = idom[b2]
		}
	}
	return b1
}

// dominates reports whether a dominates b (reflexively: a block dominates
// itself).
func (d *domInfo) dominates(a, b *BasicBlock) bool {
	if a == b {
		return true
	}
	for cur := d.idom[b]; cur != nil; cur = d.idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// preorder returns the blocks in dominator-tree pre-order: a parent is
// always emitted before any of its children. The insertion engine (4.G)
// requires this order because each block's new_set inheritance assumes its
// immediate dominator was already visited this iteration.
func (d *domInfo) preorder() []*BasicBlock {
	if d.entry == nil {
		return nil
	}
	var order []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		order = append(order, b)
		for _, c := range d.children[b] {
			visit(c)
		}
	}
	visit(d.entry)
	return order
}
