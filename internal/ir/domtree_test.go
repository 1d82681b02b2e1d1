package ir

import "testing"

// diamond builds entry -> (left, right) -> join, returning the blocks in
// that order.
func diamond() (entry, left, right, join *BasicBlock) {
	entry = &BasicBlock{Label: "entry"}
	left = &BasicBlock{Label: "left"}
	right = &BasicBlock{Label: "right"}
	join = &BasicBlock{Label: "join"}

	entry.Successors = []*BasicBlock{left, right}
	left.Predecessors = []*BasicBlock{entry}
	right.Predecessors = []*BasicBlock{entry}
	left.Successors = []*BasicBlock{join}
	right.Successors = []*BasicBlock{join}
	join.Predecessors = []*BasicBlock{left, right}

	entry.Terminator = &BranchTerminator{Block: entry, TrueBlock: left, FalseBlock: right}
	left.Terminator = &JumpTerminator{Block: left, Target: join}
	right.Terminator = &JumpTerminator{Block: right, Target: join}
	join.Terminator = &ReturnTerminator{Block: join}
	return
}

func TestBuildDomTreeDiamond(t *testing.T) {
	entry, left, right, join := diamond()
	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, left, right, join}}

	d := buildDomTree(fn)

	if d.idom[entry] != nil {
		t.Fatal("entry must have no immediate dominator")
	}
	if d.idom[left] != entry || d.idom[right] != entry {
		t.Fatal("left and right must be immediately dominated by entry")
	}
	if d.idom[join] != entry {
		t.Fatal("join's immediate dominator must be entry (the nearest common dominator of left and right), not left or right")
	}
	if !d.dominates(entry, join) {
		t.Fatal("entry must dominate join")
	}
	if d.dominates(left, join) {
		t.Fatal("left must not dominate join (right reaches join without passing through left)")
	}
}

func TestDomTreePreorderVisitsParentBeforeChildren(t *testing.T) {
	entry, left, right, join := diamond()
	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, left, right, join}}

	d := buildDomTree(fn)
	order := d.preorder()

	pos := make(map[*BasicBlock]int, len(order))
	for i, b := range order {
		pos[b] = i
	}
	if pos[entry] != 0 {
		t.Fatal("entry must be first in dominator-tree preorder")
	}
	if pos[join] <= pos[entry] {
		t.Fatal("join must come after entry")
	}
	_ = left
	_ = right
}

func TestDomTreeLinearChain(t *testing.T) {
	a := &BasicBlock{Label: "a"}
	b := &BasicBlock{Label: "b"}
	c := &BasicBlock{Label: "c"}
	a.Successors = []*BasicBlock{b}
	b.Predecessors = []*BasicBlock{a}
	b.Successors = []*BasicBlock{c}
	c.Predecessors = []*BasicBlock{b}
	a.Terminator = &JumpTerminator{Block: a, Target: b}
	b.Terminator = &JumpTerminator{Block: b, Target: c}
	c.Terminator = &ReturnTerminator{Block: c}

	fn := &Function{Name: "f", Entry: a, Blocks: []*BasicBlock{a, b, c}}
	d := buildDomTree(fn)

	if d.idom[b] != a || d.idom[c] != b {
		t.Fatal("a straight-line chain must dominate strictly in sequence")
	}
	if !d.dominates(a, c) {
		t.Fatal("a must dominate c transitively")
	}
}
