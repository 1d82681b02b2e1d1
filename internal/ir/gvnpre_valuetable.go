package ir

import (
	"fmt"
	"strings"
)

// ValueNumber identifies an equivalence class of expressions (spec 3,
// "Value"). The zero value is never assigned, so it doubles as "no value".
type ValueNumber uint32

// ValueTable is the global hash-consing set from spec 4.A: it assigns a
// canonical ValueNumber to every SSA value it is asked about, normalizing
// each value's producing instruction's operands to their own value
// numbers before comparing structure. Phis and memory-effectful
// instructions always mint a fresh value number and are never folded
// together with anything else, which is what breaks phi-induced cycles
// and keeps effectful operations from false-CSEing.
type ValueTable struct {
	cfg *GVNPREConfig

	nextID ValueNumber

	// byFingerprint canonicalizes "nice", pure, non-phi instructions: two
	// structurally-identical instructions (same concrete kind, same
	// operand value numbers, same opcode-specific attributes) share a
	// fingerprint and therefore a ValueNumber.
	byFingerprint map[string]ValueNumber

	// leader records, for each ValueNumber, the *Value first inserted
	// under it -- the representative the rest of the pass calls the
	// "leader" of the value.
	leader map[ValueNumber]*Value

	// valueOf memoizes the ValueNumber already computed for an SSA
	// value, so identify(n) is stable for the remainder of the pass as
	// required by the invariants in spec 3.
	valueOf map[*Value]ValueNumber
}

// NewValueTable creates an empty value table for one pass invocation. Per
// spec 3's Lifecycle note, the table is rebuilt on every run.
func NewValueTable(cfg *GVNPREConfig) *ValueTable {
	return &ValueTable{
		cfg:           cfg,
		byFingerprint: make(map[string]ValueNumber),
		leader:        make(map[ValueNumber]*Value),
		valueOf:       make(map[*Value]ValueNumber),
	}
}

func (t *ValueTable) allocate() ValueNumber {
	t.nextID++
	return t.nextID
}

// Leader returns the representative SSA value for value, if one has been
// recorded.
func (t *ValueTable) Leader(value ValueNumber) (*Value, bool) {
	v, ok := t.leader[value]
	return v, ok
}

// identify returns the existing value number for v if one has been
// remembered; otherwise it computes and remembers one. Phi inputs are
// never passed to identify directly by callers reasoning at the
// instruction level -- they call identify on the phi's own result, which
// is what mints the phi's fresh, self-contained value number.
func (t *ValueTable) identify(v *Value) ValueNumber {
	if id, ok := t.valueOf[v]; ok {
		return id
	}
	return t.remember(v)
}

// identifyInst is a convenience for callers holding an Instruction rather
// than its result value (e.g. while walking a block).
func (t *ValueTable) identifyInst(inst Instruction) ValueNumber {
	if res := inst.GetResult(); res != nil {
		return t.identify(res)
	}
	// Void instructions (stores, terminators) never participate in value
	// numbering; give each a private, never-reused number.
	return t.allocate()
}

// remember computes v's value number. If v has no defining instruction
// (a function parameter, or any value flowing in from outside the part of
// the graph this pass walks), it is its own value, identified by pointer.
// Otherwise phis and memory-effectful instructions always mint a fresh
// value number; everything else is normalized to a structural fingerprint
// over its operands' own value numbers, and an existing instruction with
// the same fingerprint becomes this value's leader instead of v.
func (t *ValueTable) remember(v *Value) ValueNumber {
	def := v.DefInst
	if def == nil {
		id := t.allocate()
		t.valueOf[v] = id
		t.leader[id] = v
		return id
	}

	if isPhiInst(def) || isMemoryOp(def) {
		id := t.allocate()
		t.valueOf[v] = id
		t.leader[id] = v
		return id
	}

	fp := t.fingerprint(def)
	if id, ok := t.byFingerprint[fp]; ok {
		t.valueOf[v] = id
		return id
	}

	id := t.allocate()
	t.byFingerprint[fp] = id
	t.leader[id] = v
	t.valueOf[v] = id
	return id
}

// fingerprint builds the structural hash key described in spec 9: opcode
// (here, the instruction's concrete Go type, which is the IR's stand-in
// for an opcode tag), mode (result type), arity, operand value numbers in
// order, and any opcode-specific attribute.
func (t *ValueTable) fingerprint(def Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%T", def)

	if res := def.GetResult(); res != nil && res.Type != nil {
		b.WriteByte('|')
		b.WriteString(res.Type.String())
	}

	for _, op := range def.GetOperands() {
		b.WriteByte(',')
		fmt.Fprintf(&b, "%d", t.identify(op))
	}

	b.WriteByte('|')
	b.WriteString(attributeFingerprint(def))
	return b.String()
}

// attributeFingerprint renders the opcode-specific payload of def that
// isn't captured by its operand list, so that e.g. BinaryInstruction{Op:
// "+"} and BinaryInstruction{Op: "-"} never collide.
func attributeFingerprint(def Instruction) string {
	switch i := def.(type) {
	case *BinaryInstruction:
		return "op=" + i.Op
	case *CallInstruction:
		return "fn=" + i.Module + "::" + i.Function
	case *ConstantInstruction:
		return fmt.Sprintf("const=%v", i.Value)
	case *StorageLoadInstruction:
		return fmt.Sprintf("slot=%d", i.SlotNum)
	case *KeyedStorageLoadInstruction:
		return fmt.Sprintf("base=%d|key=%s", i.BaseSlot, i.KeyType)
	case *StorageAddrInstruction:
		return fmt.Sprintf("base=%d", i.BaseSlot)
	case *CheckedArithInstruction:
		return "op=" + i.Op
	case *TopicAddrInstruction:
		return "topic"
	case *EventSignatureInstruction:
		return "event=" + i.Signature
	case *SenderInstruction:
		return "sender"
	case *LoadInstruction:
		return "load"
	default:
		return ""
	}
}
