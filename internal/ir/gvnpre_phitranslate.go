package ir

// Phi translation (spec 4.E): restates an expression that lives "above" a
// phi, for one specific predecessor of the phi's block, as the expression
// that predecessor would have computed instead. The translated value is
// never spliced into the IR; it exists only so identify() can assign it a
// ValueNumber and the rest of the pass can reason about availability.

// phiTranslate translates expr (an SSA value produced in or above succ)
// into pred, a predecessor of succ, using trans as the translation cache
// for pred and leaders to resolve an operand's value to its chosen
// representative before checking the cache. It returns the translated
// value (expr itself if nothing needed to change) and whether any input
// actually changed (the spec's "needed" flag).
func phiTranslate(expr *Value, succ, pred *BasicBlock, vt *ValueTable, leaders func(ValueNumber) (*Value, bool), trans map[*Value]*Value) (*Value, bool) {
	if expr == nil {
		return nil, false
	}

	if cached, ok := trans[expr]; ok {
		return cached, cached != expr
	}

	def := expr.DefInst
	if def == nil {
		return expr, false
	}

	if phi, ok := def.(*PhiInstruction); ok {
		if phi.Block == succ {
			in, ok := phi.Inputs[pred]
			if !ok {
				return expr, false
			}
			trans[expr] = in
			return in, in != expr
		}
		// A phi that merges somewhere else is opaque to this translation.
		return expr, false
	}

	operands := def.GetOperands()
	newOperands := make([]*Value, len(operands))
	changed := false
	for i, operand := range operands {
		vnum := vt.identify(operand)
		lead := operand
		if l, ok := leaders(vnum); ok {
			lead = l
		}
		translated, ok := trans[lead]
		if !ok {
			translated = operand
		}
		if translated != operand {
			changed = true
		}
		newOperands[i] = translated
	}

	if !changed {
		trans[expr] = expr
		return expr, false
	}

	shadow := cloneAsShadow(def, pred, newOperands)
	result := shadow.GetResult()
	trans[expr] = result
	return result, true
}

// cloneAsShadow builds a value representative with the same opcode, mode,
// and attributes as def, but with operands replaced by newOperands and
// nominally placed in block. Per spec 4.E, the block a shadow carries is
// not semantically meaningful -- it is never linked into block's
// instruction list -- it only lets the insertion engine materialize a
// real copy later by re-cloning with the same helper into the real block.
func cloneAsShadow(def Instruction, block *BasicBlock, newOperands []*Value) Instruction {
	shadow := cloneAsShadowRaw(def, block, newOperands)
	if res := shadow.GetResult(); res != nil {
		res.DefInst = shadow
	}
	return shadow
}

func cloneAsShadowRaw(def Instruction, block *BasicBlock, newOperands []*Value) Instruction {
	switch i := def.(type) {
	case *BinaryInstruction:
		return &BinaryInstruction{
			ID:     i.ID,
			Result: shadowValue(i.Result, block),
			Block:  block,
			Op:     i.Op,
			Left:   newOperands[0],
			Right:  newOperands[1],
		}
	case *CheckedArithInstruction:
		return &CheckedArithInstruction{
			ID:        i.ID,
			ResultVal: shadowValue(i.ResultVal, block),
			ResultOk:  i.ResultOk,
			Block:     block,
			Op:        i.Op,
			Left:      newOperands[0],
			Right:     newOperands[1],
		}
	case *StorageLoadInstruction:
		return &StorageLoadInstruction{
			ID:      i.ID,
			Result:  shadowValue(i.Result, block),
			Block:   block,
			Slot:    newOperands[0],
			SlotNum: i.SlotNum,
		}
	case *KeyedStorageLoadInstruction:
		return &KeyedStorageLoadInstruction{
			ID:       i.ID,
			Result:   shadowValue(i.Result, block),
			Block:    block,
			Key:      newOperands[0],
			BaseSlot: i.BaseSlot,
			KeyType:  i.KeyType,
		}
	case *StorageAddrInstruction:
		return &StorageAddrInstruction{
			ID:       i.ID,
			Result:   shadowValue(i.Result, block),
			Block:    block,
			BaseSlot: i.BaseSlot,
			Keys:     newOperands,
		}
	case *LoadInstruction:
		return &LoadInstruction{
			ID:      i.ID,
			Result:  shadowValue(i.Result, block),
			Block:   block,
			Address: newOperands[0],
		}
	case *TopicAddrInstruction:
		return &TopicAddrInstruction{
			ID:      i.ID,
			Result:  shadowValue(i.Result, block),
			Block:   block,
			Address: newOperands[0],
		}
	case *CallInstruction:
		return &CallInstruction{
			ID:       i.ID,
			Result:   shadowValue(i.Result, block),
			Block:    block,
			Function: i.Function,
			Module:   i.Module,
			Args:     newOperands,
		}
	default:
		// Nothing else in this IR is "nice" (niceValue rejects it), so
		// translation never needs to clone it.
		return def
	}
}

// shadowValue creates a fresh *Value describing the same result as
// original but not yet bound to any real instruction list, for use as a
// phi-translated or hoisted expression's result.
func shadowValue(original *Value, block *BasicBlock) *Value {
	return &Value{
		Name:     original.Name,
		Type:     original.Type,
		DefBlock: block,
	}
}
