package ir

import "testing"

func param(name string) *Value {
	return &Value{Name: name, Type: u256()}
}

// TestGVNPRESimpleLocalRedundancy covers spec 8's "fully redundant"
// scenario in its simplest form: two structurally identical recomputations
// inside a single block. The second must be rewritten to reuse the first's
// result and then removed.
func TestGVNPRESimpleLocalRedundancy(t *testing.T) {
	a, b := param("a"), param("b")

	x1 := &Value{Name: "x1", Type: u256()}
	i1 := &BinaryInstruction{ID: 1, Result: x1, Op: "+", Left: a, Right: b}
	x1.DefInst = i1

	x2 := &Value{Name: "x2", Type: u256()}
	i2 := &BinaryInstruction{ID: 2, Result: x2, Op: "+", Left: a, Right: b}
	x2.DefInst = i2

	block := &BasicBlock{Label: "entry", Instructions: []Instruction{i1, i2}}
	i1.Block, i2.Block = block, block
	block.Terminator = &ReturnTerminator{Block: block, Value: x2}

	fn := &Function{Name: "f", Entry: block, Blocks: []*BasicBlock{block}}
	program := &Program{Functions: []*Function{fn}}

	pass := NewGVNPREPass()
	if !pass.Apply(program) {
		t.Fatal("pass should report a change when eliminating a local redundancy")
	}

	if len(block.Instructions) != 1 {
		t.Fatalf("expected the redundant recomputation to be removed, got %d instructions", len(block.Instructions))
	}
	if block.Instructions[0] != i1 {
		t.Fatal("the surviving instruction should be the first computation")
	}
	ret, ok := block.Terminator.(*ReturnTerminator)
	if !ok || ret.Value != x1 {
		t.Fatal("the return terminator should now reference the first computation's result")
	}
}

// diamondWithJoinRecompute builds entry -> (left, right) -> join where left
// computes a+b, right computes nothing, and join recomputes a+b and
// returns it -- spec 8's "partially redundant" scenario: available on one
// incoming path, not the other.
func diamondWithJoinRecompute() (fn *Function, entry, left, right, join *BasicBlock, a, b *Value, joinRecompute *BinaryInstruction) {
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

	a, b = param("a"), param("b")

	x1 := &Value{Name: "x1", Type: u256()}
	leftInst := &BinaryInstruction{ID: 1, Result: x1, Block: left, Op: "+", Left: a, Right: b}
	x1.DefInst = leftInst
	left.Instructions = []Instruction{leftInst}

	x2 := &Value{Name: "x2", Type: u256()}
	joinRecompute = &BinaryInstruction{ID: 2, Result: x2, Block: join, Op: "+", Left: a, Right: b}
	x2.DefInst = joinRecompute
	join.Instructions = []Instruction{joinRecompute}

	entry.Terminator = &BranchTerminator{Block: entry, TrueBlock: left, FalseBlock: right}
	left.Terminator = &JumpTerminator{Block: left, Target: join}
	right.Terminator = &JumpTerminator{Block: right, Target: join}
	join.Terminator = &ReturnTerminator{Block: join, Value: x2}

	fn = &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, left, right, join}}
	return
}

// TestGVNPREPartialRedundancyHoistsAcrossBranch covers spec 8's
// "partially redundant" scenario end to end: a copy must be materialized
// on the path that lacked the expression, a phi must merge the two paths
// in the join block, and the join's own recomputation must be subsumed by
// that phi.
func TestGVNPREPartialRedundancyHoistsAcrossBranch(t *testing.T) {
	fn, _, left, right, join, _, _, _ := diamondWithJoinRecompute()
	program := &Program{Functions: []*Function{fn}}

	pass := NewGVNPREPass()
	if !pass.Apply(program) {
		t.Fatal("pass should report a change when hoisting a partially redundant expression")
	}

	if len(right.Instructions) != 1 {
		t.Fatalf("expected a materialized copy on the path that lacked the expression, got %d instructions", len(right.Instructions))
	}
	rightCopy, ok := right.Instructions[0].(*BinaryInstruction)
	if !ok || rightCopy.Op != "+" {
		t.Fatalf("materialized copy should be a '+' binary instruction, got %#v", right.Instructions[0])
	}

	if len(join.Instructions) != 1 {
		t.Fatalf("expected the join's own recomputation to be subsumed, leaving only the merging phi, got %d instructions", len(join.Instructions))
	}
	phi, ok := join.Instructions[0].(*PhiInstruction)
	if !ok {
		t.Fatalf("join's surviving instruction should be a phi, got %T", join.Instructions[0])
	}
	if len(phi.Inputs) != 2 {
		t.Fatalf("phi should merge both predecessors, got %d inputs", len(phi.Inputs))
	}
	if phi.Inputs[left] == nil || phi.Inputs[left].DefInst == nil {
		t.Fatal("phi's left input should be left block's own computation")
	}
	if phi.Inputs[right] != rightCopy.Result {
		t.Fatal("phi's right input should be the materialized copy's result")
	}

	ret, ok := join.Terminator.(*ReturnTerminator)
	if !ok || ret.Value != phi.Result {
		t.Fatal("the return terminator should now reference the merging phi's result")
	}
}

// TestGVNPREBlockedByGreedNoInsertion covers spec 8's "blocked by greed"
// scenario: the expression is already available on every incoming path, so
// there is nothing to hoist and no phi should be manufactured.
func TestGVNPREBlockedByGreedNoInsertion(t *testing.T) {
	entry := &BasicBlock{Label: "entry"}
	left := &BasicBlock{Label: "left"}
	right := &BasicBlock{Label: "right"}
	join := &BasicBlock{Label: "join"}

	entry.Successors = []*BasicBlock{left, right}
	left.Predecessors = []*BasicBlock{entry}
	right.Predecessors = []*BasicBlock{entry}
	left.Successors = []*BasicBlock{join}
	right.Successors = []*BasicBlock{join}
	join.Predecessors = []*BasicBlock{left, right}

	a, b := param("a"), param("b")

	xLeft := &Value{Name: "xLeft", Type: u256()}
	leftInst := &BinaryInstruction{ID: 1, Result: xLeft, Block: left, Op: "+", Left: a, Right: b}
	xLeft.DefInst = leftInst
	left.Instructions = []Instruction{leftInst}

	xRight := &Value{Name: "xRight", Type: u256()}
	rightInst := &BinaryInstruction{ID: 2, Result: xRight, Block: right, Op: "+", Left: a, Right: b}
	xRight.DefInst = rightInst
	right.Instructions = []Instruction{rightInst}

	xJoin := &Value{Name: "xJoin", Type: u256()}
	joinInst := &BinaryInstruction{ID: 3, Result: xJoin, Block: join, Op: "+", Left: a, Right: b}
	xJoin.DefInst = joinInst
	join.Instructions = []Instruction{joinInst}

	entry.Terminator = &BranchTerminator{Block: entry, TrueBlock: left, FalseBlock: right}
	left.Terminator = &JumpTerminator{Block: left, Target: join}
	right.Terminator = &JumpTerminator{Block: right, Target: join}
	join.Terminator = &ReturnTerminator{Block: join, Value: xJoin}

	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, left, right, join}}
	program := &Program{Functions: []*Function{fn}}

	pass := NewGVNPREPass()
	pass.Apply(program)

	if len(left.Instructions) != 1 || len(right.Instructions) != 1 {
		t.Fatal("left and right's own computations must be untouched")
	}
	if len(join.Instructions) != 1 {
		t.Fatalf("no phi should be inserted when every predecessor already computes the value, got %d instructions", len(join.Instructions))
	}
	if _, ok := join.Instructions[0].(*BinaryInstruction); !ok {
		t.Fatal("join's own recomputation must remain a binary instruction, not be replaced by a phi")
	}
}

// TestGVNPRESmallConstantClamp covers spec 8/9's small-constant carve-out:
// a translated constant within range is treated as implicitly available
// (no copy materialized), while one outside the range is not.
func TestGVNPRESmallConstantClamp(t *testing.T) {
	e := &insertionEngine{}

	small := &Value{Name: "small", Type: u256()}
	small.DefInst = &ConstantInstruction{ID: 1, Result: small, Value: 42, Type: u256()}
	if !e.isSmallConstant(small) {
		t.Fatal("a constant within [-127, 127] must be treated as a small constant")
	}

	large := &Value{Name: "large", Type: u256()}
	large.DefInst = &ConstantInstruction{ID: 2, Result: large, Value: 1000, Type: u256()}
	if e.isSmallConstant(large) {
		t.Fatal("a constant outside the small range must not be clamped as implicitly available")
	}

	nonInt := &Value{Name: "nonInt", Type: u256()}
	nonInt.DefInst = &ConstantInstruction{ID: 3, Result: nonInt, Value: "0xdead", Type: u256()}
	if e.isSmallConstant(nonInt) {
		t.Fatal("a constant payload that is not a decimal integer must never be treated as a small constant")
	}
}

func TestGVNPREEmptyFunctionNoOp(t *testing.T) {
	fn := &Function{Name: "empty"}
	program := &Program{Functions: []*Function{fn}}

	pass := NewGVNPREPass()
	if pass.Apply(program) {
		t.Fatal("a function with no blocks must never be reported as changed")
	}
}
