package ir

import "testing"

// terminatingLoop builds entry -> header -> body -> header (back edge),
// header -> exit once a condition trips, exit has no successors.
func terminatingLoop() (entry, header, body, exit *BasicBlock) {
	entry = &BasicBlock{Label: "entry"}
	header = &BasicBlock{Label: "header"}
	body = &BasicBlock{Label: "body"}
	exit = &BasicBlock{Label: "exit"}

	entry.Successors = []*BasicBlock{header}
	header.Predecessors = []*BasicBlock{entry, body}
	header.Successors = []*BasicBlock{body, exit}
	body.Predecessors = []*BasicBlock{header}
	body.Successors = []*BasicBlock{header}
	exit.Predecessors = []*BasicBlock{header}

	entry.Terminator = &JumpTerminator{Block: entry, Target: header}
	header.Terminator = &BranchTerminator{Block: header, TrueBlock: body, FalseBlock: exit}
	body.Terminator = &JumpTerminator{Block: body, Target: header}
	exit.Terminator = &ReturnTerminator{Block: exit}
	return
}

func TestNaturalLoopDetection(t *testing.T) {
	entry, header, body, exit := terminatingLoop()
	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, header, body, exit}}

	d := buildDomTree(fn)
	lf := buildLoopForest(fn, d)

	if lf.loopOf(header) == nil {
		t.Fatal("loop header must belong to its own natural loop")
	}
	if lf.loopOf(body) == nil {
		t.Fatal("loop body must belong to the natural loop")
	}
	if lf.loopOf(exit) != nil {
		t.Fatal("exit block must not be considered part of the loop")
	}
}

func TestTerminatingLoopIsNotClassifiedInfinite(t *testing.T) {
	entry, header, body, exit := terminatingLoop()
	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, header, body, exit}}

	d := buildDomTree(fn)
	lf := buildLoopForest(fn, d)
	classifyInfiniteLoops(fn, lf)

	if lf.insideInfiniteLoop(header) || lf.insideInfiniteLoop(body) {
		t.Fatal("a loop with a live path to an exit block must not be classified infinite")
	}
}

// selfLoop builds entry -> header -> header (unconditional back edge, no
// exit at all): an endless loop.
func selfLoop() (entry, header *BasicBlock) {
	entry = &BasicBlock{Label: "entry"}
	header = &BasicBlock{Label: "header"}

	entry.Successors = []*BasicBlock{header}
	header.Predecessors = []*BasicBlock{entry, header}
	header.Successors = []*BasicBlock{header}

	entry.Terminator = &JumpTerminator{Block: entry, Target: header}
	header.Terminator = &JumpTerminator{Block: header, Target: header}
	return
}

func TestInfiniteLoopClassification(t *testing.T) {
	entry, header := selfLoop()
	fn := &Function{Name: "f", Entry: entry, Blocks: []*BasicBlock{entry, header}}

	d := buildDomTree(fn)
	lf := buildLoopForest(fn, d)
	classifyInfiniteLoops(fn, lf)

	if !lf.insideInfiniteLoop(header) {
		t.Fatal("a loop with no path to any function exit must be classified infinite")
	}
	if !lf.isInfiniteBackEdge(header, header, d) {
		t.Fatal("the loop's own back edge must be reported as an infinite back edge")
	}
}
