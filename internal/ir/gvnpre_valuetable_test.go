package ir

import "testing"

func u256() Type { return &IntType{Bits: 256} }

func TestValueTableStructuralEquality(t *testing.T) {
	a := &Value{Name: "a", Type: u256()}
	b := &Value{Name: "b", Type: u256()}

	x1 := &Value{Name: "x1", Type: u256()}
	i1 := &BinaryInstruction{ID: 1, Result: x1, Op: "+", Left: a, Right: b}
	x1.DefInst = i1

	x2 := &Value{Name: "x2", Type: u256()}
	i2 := &BinaryInstruction{ID: 2, Result: x2, Op: "+", Left: a, Right: b}
	x2.DefInst = i2

	vt := NewValueTable(DefaultGVNPREConfig())
	v1 := vt.identify(x1)
	v2 := vt.identify(x2)

	if v1 != v2 {
		t.Fatalf("structurally identical binary ops should share a value number, got %d and %d", v1, v2)
	}
	leader, ok := vt.Leader(v1)
	if !ok || leader != x1 {
		t.Fatalf("leader should be the first-seen value, got %v", leader)
	}
}

func TestValueTableDistinguishesOperator(t *testing.T) {
	a := &Value{Name: "a", Type: u256()}
	b := &Value{Name: "b", Type: u256()}

	xAdd := &Value{Name: "xAdd", Type: u256()}
	xAdd.DefInst = &BinaryInstruction{ID: 1, Result: xAdd, Op: "+", Left: a, Right: b}

	xSub := &Value{Name: "xSub", Type: u256()}
	xSub.DefInst = &BinaryInstruction{ID: 2, Result: xSub, Op: "-", Left: a, Right: b}

	vt := NewValueTable(DefaultGVNPREConfig())
	if vt.identify(xAdd) == vt.identify(xSub) {
		t.Fatal("different operators must not share a value number")
	}
}

func TestValueTableMemoryOpsAlwaysFresh(t *testing.T) {
	slot := &Value{Name: "slot", Type: u256()}

	r1 := &Value{Name: "r1", Type: u256()}
	r1.DefInst = &StorageLoadInstruction{ID: 1, Result: r1, Slot: slot, SlotNum: 3}

	r2 := &Value{Name: "r2", Type: u256()}
	r2.DefInst = &StorageLoadInstruction{ID: 2, Result: r2, Slot: slot, SlotNum: 3}

	vt := NewValueTable(DefaultGVNPREConfig())
	if vt.identify(r1) == vt.identify(r2) {
		t.Fatal("two structurally identical storage loads must still get distinct value numbers (no alias model)")
	}
}

func TestValueTablePhisAlwaysFresh(t *testing.T) {
	blockA := &BasicBlock{Label: "a"}
	blockB := &BasicBlock{Label: "b"}

	in := &Value{Name: "in", Type: u256()}

	p1Result := &Value{Name: "p1", Type: u256()}
	p1 := &PhiInstruction{ID: 1, Result: p1Result, Block: blockA, Inputs: map[*BasicBlock]*Value{blockA: in}}
	p1Result.DefInst = p1

	p2Result := &Value{Name: "p2", Type: u256()}
	p2 := &PhiInstruction{ID: 2, Result: p2Result, Block: blockB, Inputs: map[*BasicBlock]*Value{blockB: in}}
	p2Result.DefInst = p2

	vt := NewValueTable(DefaultGVNPREConfig())
	if vt.identify(p1Result) == vt.identify(p2Result) {
		t.Fatal("two distinct phis must never collapse to the same value number")
	}
}

func TestValueTableIsStableAcrossRepeatedIdentify(t *testing.T) {
	a := &Value{Name: "a", Type: u256()}
	b := &Value{Name: "b", Type: u256()}
	x := &Value{Name: "x", Type: u256()}
	x.DefInst = &BinaryInstruction{ID: 1, Result: x, Op: "*", Left: a, Right: b}

	vt := NewValueTable(DefaultGVNPREConfig())
	first := vt.identify(x)
	for i := 0; i < 5; i++ {
		if got := vt.identify(x); got != first {
			t.Fatalf("identify(x) must be stable, got %d want %d", got, first)
		}
	}
}
