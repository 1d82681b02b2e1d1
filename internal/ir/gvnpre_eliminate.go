package ir

// Eliminator (component H, spec 4.H): walks every instruction, looks up its
// leader in avail_out, and replaces each redundant instruction's uses with
// its leader. Replacements discovered by the insertion engine are merged in
// first since those already carry a precomputed reason; anything else found
// during this walk is a plain full redundancy.

// eliminate drains the insertion engine's deferred elim pairs and then
// scans every block's instructions for further full redundancies (an
// instruction whose value's leader, per avail_out, is a different node),
// rewriting uses in place. It returns the number of instructions removed.
func eliminate(fn *Function, order []*BasicBlock, vt *ValueTable, store *blockInfoStore, fromInsertion []elimPair) int {
	pairs := append([]elimPair{}, fromInsertion...)

	for _, b := range order {
		info := store.of(b)
		for _, inst := range b.Instructions {
			if isPhiInst(inst) {
				continue
			}
			res := inst.GetResult()
			if res == nil {
				continue
			}
			value := vt.identify(res)
			leader, ok := info.availOut.Lookup(value)
			if !ok || leader == res {
				continue
			}
			leaderDef := leader.DefInst
			if leaderDef == nil || leaderDef == inst {
				continue
			}
			pairs = append(pairs, elimPair{old: inst, repl: leaderDef, reason: elimReasonFully})
		}
	}

	removed := 0
	seen := make(map[Instruction]bool, len(pairs))
	for _, pair := range pairs {
		if seen[pair.old] {
			continue
		}
		seen[pair.old] = true
		if replaceInstruction(fn, pair.old, pair.repl) {
			removed++
		}
	}

	collapseDegeneratePhis(fn, order)
	return removed
}

// replaceInstruction rewrites every use of old's result to repl's result
// and deletes old from its block, unless old has no result (already a
// terminator or void instruction, which the eliminator never queues) or
// repl has no result to redirect to.
func replaceInstruction(fn *Function, old, repl Instruction) bool {
	oldRes := old.GetResult()
	replRes := repl.GetResult()
	if oldRes == nil || replRes == nil || oldRes == replRes {
		return false
	}

	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			rewriteOperands(inst, oldRes, replRes)
		}
		if b.Terminator != nil {
			rewriteOperands(b.Terminator, oldRes, replRes)
		}
	}

	return removeFromBlock(old)
}

// rewriteOperands patches every operand slot of inst that currently points
// at oldVal to point at newVal instead. Operands are exposed read-only via
// GetOperands, so each instruction kind is patched through its own fields.
func rewriteOperands(inst Instruction, oldVal, newVal *Value) {
	switch i := inst.(type) {
	case *PhiInstruction:
		for pred, v := range i.Inputs {
			if v == oldVal {
				i.Inputs[pred] = newVal
			}
		}
	case *BinaryInstruction:
		if i.Left == oldVal {
			i.Left = newVal
		}
		if i.Right == oldVal {
			i.Right = newVal
		}
	case *CheckedArithInstruction:
		if i.Left == oldVal {
			i.Left = newVal
		}
		if i.Right == oldVal {
			i.Right = newVal
		}
	case *StoreInstruction:
		if i.Address == oldVal {
			i.Address = newVal
		}
		if i.Value == oldVal {
			i.Value = newVal
		}
	case *LoadInstruction:
		if i.Address == oldVal {
			i.Address = newVal
		}
	case *StorageLoadInstruction:
		if i.Slot == oldVal {
			i.Slot = newVal
		}
	case *StorageStoreInstruction:
		if i.Slot == oldVal {
			i.Slot = newVal
		}
		if i.Value == oldVal {
			i.Value = newVal
		}
	case *KeyedStorageLoadInstruction:
		if i.Key == oldVal {
			i.Key = newVal
		}
	case *KeyedStorageStoreInstruction:
		if i.Key == oldVal {
			i.Key = newVal
		}
		if i.Value == oldVal {
			i.Value = newVal
		}
	case *StorageAddrInstruction:
		for idx, k := range i.Keys {
			if k == oldVal {
				i.Keys[idx] = newVal
			}
		}
	case *TopicAddrInstruction:
		if i.Address == oldVal {
			i.Address = newVal
		}
	case *CallInstruction:
		for idx, a := range i.Args {
			if a == oldVal {
				i.Args[idx] = newVal
			}
		}
	case *AssumeInstruction:
		if i.Predicate == oldVal {
			i.Predicate = newVal
		}
	case *EmitInstruction:
		for idx, a := range i.Args {
			if a == oldVal {
				i.Args[idx] = newVal
			}
		}
	case *RequireInstruction:
		if i.Condition == oldVal {
			i.Condition = newVal
		}
		if i.Error == oldVal {
			i.Error = newVal
		}
	case *LogInstruction:
		if i.Signature == oldVal {
			i.Signature = newVal
		}
		for idx, a := range i.TopicArgs {
			if a == oldVal {
				i.TopicArgs[idx] = newVal
			}
		}
		if i.DataPtr == oldVal {
			i.DataPtr = newVal
		}
		if i.DataLen == oldVal {
			i.DataLen = newVal
		}
	case *ABIEncU256Instruction:
		if i.Value == oldVal {
			i.Value = newVal
		}
	}

	if term, ok := inst.(Terminator); ok {
		rewriteTerminatorOperands(term, oldVal, newVal)
	}
}

// rewriteTerminatorOperands patches the operand slots terminators carry
// that GetOperands does not expose uniformly.
func rewriteTerminatorOperands(term Terminator, oldVal, newVal *Value) {
	switch t := term.(type) {
	case *ReturnTerminator:
		if t.Value == oldVal {
			t.Value = newVal
		}
	case *BranchTerminator:
		if t.Condition == oldVal {
			t.Condition = newVal
		}
	}
}

// removeFromBlock deletes old from its owning block's instruction list.
func removeFromBlock(old Instruction) bool {
	b := old.GetBlock()
	if b == nil {
		return false
	}
	for i, inst := range b.Instructions {
		if inst == old {
			b.Instructions = append(b.Instructions[:i], b.Instructions[i+1:]...)
			return true
		}
	}
	return false
}

// collapseDegeneratePhis removes any phi whose inputs, after elimination,
// are all the same value (or the phi itself), replacing its uses with that
// common value. Elimination can manufacture these: a phi inserted by the
// insertion engine whose predecessors all turned out to carry the same
// leader once copies were propagated.
func collapseDegeneratePhis(fn *Function, order []*BasicBlock) {
	for _, b := range order {
		// Walk a copy: replaceInstruction removes the phi from b.Instructions
		// in place, which would shift the elements still to be visited.
		insts := append([]Instruction(nil), b.Instructions...)
		kept := make([]Instruction, 0, len(insts))
		for _, inst := range insts {
			phi, ok := inst.(*PhiInstruction)
			if !ok {
				kept = append(kept, inst)
				continue
			}
			common, degenerate := degenerateValue(phi)
			if !degenerate {
				kept = append(kept, inst)
				continue
			}
			if common != nil && common != phi.Result {
				replaceInstruction(fn, phi, commonDef(common))
			}
		}
		b.Instructions = kept
	}
}

func degenerateValue(phi *PhiInstruction) (*Value, bool) {
	var common *Value
	for _, v := range phi.Inputs {
		if v == phi.Result {
			continue
		}
		if common == nil {
			common = v
			continue
		}
		if common != v {
			return nil, false
		}
	}
	return common, true
}

// commonDef wraps a bare *Value (which may have no DefInst, e.g. a
// parameter) behind a synthetic Instruction so replaceInstruction's
// uniform repl-has-a-result contract holds even for degenerate phis that
// collapse to an external value.
func commonDef(v *Value) Instruction {
	if v.DefInst != nil {
		return v.DefInst
	}
	return &valueOnlyInstruction{value: v}
}

// valueOnlyInstruction adapts a *Value with no producing Instruction (a
// parameter, or any value flowing in from outside the function) into the
// Instruction interface just enough for replaceInstruction's GetResult
// check; every other method is unreachable because such an instruction is
// never itself walked or eliminated.
type valueOnlyInstruction struct{ value *Value }

func (v *valueOnlyInstruction) GetID() int            { return -1 }
func (v *valueOnlyInstruction) GetResult() *Value     { return v.value }
func (v *valueOnlyInstruction) GetOperands() []*Value { return nil }
func (v *valueOnlyInstruction) GetBlock() *BasicBlock { return v.value.DefBlock }
func (v *valueOnlyInstruction) IsTerminator() bool    { return false }
func (v *valueOnlyInstruction) String() string        { return "<value>" }
func (v *valueOnlyInstruction) GetEffects() []Effect  { return []Effect{&PureEffect{}} }
