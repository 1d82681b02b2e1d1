package ir

// Opcode classifiers consumed throughout the pass (spec 6: is_phi, is_const,
// is_proj, is_load, is_div, is_mod, is_memop). The IR here has no tuple-mode
// projections or explicit div/mod opcode, those predicates degrade to
// "never" and exist only so the rest of the algorithm can be written
// against the same vocabulary the spec uses.

func isPhiInst(inst Instruction) bool {
	_, ok := inst.(*PhiInstruction)
	return ok
}

func isConstInst(inst Instruction) bool {
	_, ok := inst.(*ConstantInstruction)
	return ok
}

// isDivOrMod reports whether inst is an arithmetic division/modulo. Binary
// ops carry their operator as a string; CheckedArithInstruction carries it
// as an opcode tag.
func isDivOrMod(inst Instruction) bool {
	switch i := inst.(type) {
	case *BinaryInstruction:
		return i.Op == "/" || i.Op == "%"
	case *CheckedArithInstruction:
		return i.Op == "DIV_CHK" || i.Op == "MOD_CHK"
	}
	return false
}

// isMemoryOp reports whether inst has any non-pure effect: storage or EVM
// memory reads/writes, logging, or an opaque call. Per spec 3, memory-side
// effectful operations compare unequal by default, so they never
// participate in value-number collapsing.
func isMemoryOp(inst Instruction) bool {
	for _, eff := range inst.GetEffects() {
		if _, pure := eff.(*PureEffect); !pure {
			return true
		}
	}
	return false
}

// isTupleMode reports whether inst produces a secondary result GetResult
// does not expose (spec 6 "is_proj" family). CheckedArithInstruction's
// overflow flag is one such companion: hoisting or copying the primary
// result alone would leave that flag's definition behind, orphaned.
func isTupleMode(inst Instruction) bool {
	_, ok := inst.(*CheckedArithInstruction)
	return ok
}

// isPinned reports whether inst must stay where it is and can never be
// hoisted or treated as a PRE candidate. Terminators, side-effecting
// instructions, and requires/asserts are pinned; everything else floats.
func isPinned(inst Instruction) bool {
	if inst.IsTerminator() {
		return true
	}
	switch inst.(type) {
	case *RequireInstruction, *AssumeInstruction, *RevertInstruction, *EmitInstruction, *LogInstruction:
		return true
	}
	return isMemoryOp(inst)
}

// niceValue reports whether inst is a PRE candidate (spec 4.B "Nice
// value"). Phis are nice (their value identity still participates in
// antic/avail sets, even though it is never collapsed with anything).
// Division and modulo are nice only when DivMods is on, and memory
// operations only when Loads is on (both off by default). Otherwise pinned
// and non-data-producing instructions are not nice.
func niceValue(inst Instruction, cfg *GVNPREConfig) bool {
	if isPhiInst(inst) {
		return true
	}
	if isDivOrMod(inst) {
		return cfg.DivMods
	}
	if isMemoryOp(inst) {
		return cfg.Loads
	}
	if isPinned(inst) {
		return false
	}
	return inst.GetResult() != nil
}
