package ir

import "testing"

// TestVisitBlockSkipsLocalPhiCandidates reproduces spec 4.G's "skip ...
// if expr is a phi" requirement. join has its own local phi merging two
// structurally-identical (hence same value-numbered) recomputations: one
// available locally in left, the other defined only outside right. Before
// the phi guard, isHoistingGreedy saw haveSome (from left) && missSome
// (from right) and proceeded to materialize a copy into right and splice
// a second, redundant phi into join merging the same value the original
// phi already merges. With the guard, a block's own phi is never treated
// as a partial-redundancy candidate at all, so neither mutation happens.
func TestVisitBlockSkipsLocalPhiCandidates(t *testing.T) {
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

	entry.Terminator = &BranchTerminator{Block: entry, TrueBlock: left, FalseBlock: right}
	left.Terminator = &JumpTerminator{Block: left, Target: join}
	right.Terminator = &JumpTerminator{Block: right, Target: join}

	a, b := param("a"), param("b")

	v1 := &Value{Name: "v1", Type: u256()}
	leftInst := &BinaryInstruction{ID: 1, Result: v1, Block: left, Op: "+", Left: a, Right: b}
	v1.DefInst = leftInst
	left.Instructions = []Instruction{leftInst}

	// v2 is structurally identical to v1 (same op, same operands) so the
	// value table folds it to v1's value number, but it is never placed in
	// any block's instruction list, so right's avail_out never carries it
	// -- exactly the "available on one path, not the other" shape
	// isHoistingGreedy looks for.
	v2 := &Value{Name: "v2", Type: u256()}
	v2.DefInst = &BinaryInstruction{ID: 2, Result: v2, Block: right, Op: "+", Left: a, Right: b}

	phiResult := &Value{Name: "joined", Type: u256()}
	phi := &PhiInstruction{
		ID:     3,
		Result: phiResult,
		Block:  join,
		Inputs: map[*BasicBlock]*Value{left: v1, right: v2},
	}
	phiResult.DefInst = phi
	join.Instructions = []Instruction{phi}
	join.Terminator = &ReturnTerminator{Block: join, Value: phiResult}

	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, left, right, join}}
	program := &Program{Functions: []*Function{fn}}

	pass := NewGVNPREPass()
	pass.Apply(program)

	if len(join.Instructions) != 1 {
		t.Fatalf("the block's own phi must survive as join's only instruction, got %d", len(join.Instructions))
	}
	if _, ok := join.Instructions[0].(*PhiInstruction); !ok {
		t.Fatal("join's sole instruction must remain the original phi")
	}
	if len(left.Instructions) != 1 {
		t.Fatalf("left must be untouched, got %d instructions", len(left.Instructions))
	}
	if len(right.Instructions) != 0 {
		t.Fatalf("no copy should be materialized into right for a local phi candidate, got %d instructions", len(right.Instructions))
	}
}
