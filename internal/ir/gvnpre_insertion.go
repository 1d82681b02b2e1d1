package ir

import "strconv"

// Insertion Engine (component G, spec 4.G): for each candidate anticipated
// expression, decide whether it is fully redundant (already available from
// the immediate dominator), partially redundant (available on some but not
// all predecessor paths, and worth hoisting), or neither, and materialize
// copies/phis accordingly. Runs to a fixed point (up to maxInsertIter)
// because inserting a phi in one block can make an expression newly
// available to a dominance successor on a later pass.
type insertionEngine struct {
	vt       *ValueTable
	store    *blockInfoStore
	d        *domInfo
	instID   int
	inserted []elimPair
}

func newInsertionEngine(vt *ValueTable, store *blockInfoStore, d *domInfo, startID int) *insertionEngine {
	return &insertionEngine{vt: vt, store: store, d: d, instID: startID}
}

func (e *insertionEngine) nextInstID() int {
	id := e.instID
	e.instID++
	return id
}

// runInsertion drives the fixed point described in 4.G, stopping once a
// pass changes no block's new_set or after maxInsertIter passes. It returns
// the next unused instruction ID and the elimination pairs for the
// recomputations the inserted phis subsume (each with reason
// elimReasonPartially).
func runInsertion(order []*BasicBlock, vt *ValueTable, store *blockInfoStore, d *domInfo, startID int) (int, []elimPair) {
	e := newInsertionEngine(vt, store, d, startID)
	for iter := 0; iter < maxInsertIter; iter++ {
		changed := false
		for _, b := range order {
			if b == d.entry {
				store.of(b).newSet = NewValueSet()
				continue
			}
			if e.visitBlock(b) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return e.instID, e.inserted
}

// visitBlock implements one dominator-tree-preorder pass over a single
// block: new_set starts as the immediate dominator's new_set, entries
// already available from the dominator are dropped, and every remaining
// antic_in entry with more than one predecessor is checked for partial
// redundancy.
func (e *insertionEngine) visitBlock(b *BasicBlock) bool {
	info := e.store.of(b)
	idomInfo := e.store.of(b.DominatedBy)

	before := info.newSet.Size()
	info.newSet = idomInfo.newSet.Clone()

	if len(b.Predecessors) < 2 {
		return info.newSet.Size() != before
	}

	for _, value := range info.anticIn.Values() {
		expr, _ := info.anticIn.Lookup(value)

		if isPhiInst(expr.DefInst) {
			continue // 4.G: phis are never themselves PRE candidates
		}
		if idomInfo.availOut.Has(value) {
			continue // fully available from the dominator; nothing to insert
		}
		if isTupleMode(expr.DefInst) {
			continue // the companion result (e.g. an overflow flag) isn't value-numbered
		}
		if !isClean(expr.DefInst, e.vt, idomInfo.availOut, nil) {
			continue
		}
		if !e.isHoistingGreedy(b, value, expr) {
			continue
		}

		e.tryInsertPartiallyRedundant(b, info, value, expr)
	}

	return info.newSet.Size() != before
}

// isHoistingGreedy implements the conservative greediness check from 4.G:
// hoist only when at least one predecessor does not already compute the
// value (otherwise every path already pays the cost and hoisting only adds
// a phi for no savings), and at least one predecessor does (otherwise there
// is nothing to save a copy of).
func (e *insertionEngine) isHoistingGreedy(b *BasicBlock, value ValueNumber, expr *Value) bool {
	haveSome, missSome := false, false
	for _, p := range b.Predecessors {
		pInfo := e.store.of(p)
		translated, _ := phiTranslate(expr, b, p, e.vt, pInfo.anticIn.Lookup, pInfo.trans)
		if pInfo.availOut.Has(e.vt.identify(translated)) {
			haveSome = true
		} else {
			missSome = true
		}
	}
	return haveSome && missSome
}

// tryInsertPartiallyRedundant computes, for every predecessor, whether the
// translated expression is already available there (synthesizing a copy if
// not), and -- if at least one predecessor truly lacked it -- creates the
// merging phi, records the new leader in new_set/avail_out, and queues the
// superseded recomputations for the eliminator.
func (e *insertionEngine) tryInsertPartiallyRedundant(b *BasicBlock, info *blockInfo, value ValueNumber, expr *Value) {
	inputs := make(map[*BasicBlock]*Value, len(b.Predecessors))
	var toEliminate []Instruction
	anyInserted := false

	for _, p := range b.Predecessors {
		pInfo := e.store.of(p)
		translated, _ := phiTranslate(expr, b, p, e.vt, pInfo.anticIn.Lookup, pInfo.trans)
		tValue := e.vt.identify(translated)

		if leader, ok := pInfo.availOut.Lookup(tValue); ok {
			inputs[p] = leader
			continue
		}
		if e.isSmallConstant(translated) {
			inputs[p] = translated
			continue
		}

		copyInst := e.materializeCopy(translated, p)
		if copyInst == nil {
			return // this predecessor's expression can't be materialized; bail
		}
		res := copyInst.GetResult()
		pInfo.availOut.Replace(tValue, res)
		pInfo.newSet.Replace(tValue, res)
		inputs[p] = res
		anyInserted = true
	}

	if !anyInserted {
		return
	}

	phiResult := shadowValue(expr, b)
	phi := &PhiInstruction{
		ID:     e.nextInstID(),
		Result: phiResult,
		Block:  b,
		Inputs: inputs,
	}
	phiResult.DefInst = phi
	b.Instructions = append([]Instruction{phi}, b.Instructions...)

	info.availOut.Replace(value, phiResult)
	info.newSet.Replace(value, phiResult)

	if old := e.findRedundantRecompute(b, value); old != nil {
		toEliminate = append(toEliminate, old)
	}
	for _, old := range toEliminate {
		e.inserted = append(e.inserted, elimPair{old: old, repl: phi, reason: elimReasonPartially})
	}
}

// findRedundantRecompute looks for an instruction already in b computing
// the same value as the freshly-inserted phi, which the phi now subsumes.
func (e *insertionEngine) findRedundantRecompute(b *BasicBlock, value ValueNumber) Instruction {
	for _, inst := range b.Instructions {
		res := inst.GetResult()
		if res == nil || isPhiInst(inst) {
			continue
		}
		if e.vt.identify(res) == value {
			return inst
		}
	}
	return nil
}

// materializeCopy clones the shadow representative translated actually
// holds into a real instruction appended to predecessor block p, just
// before its terminator.
func (e *insertionEngine) materializeCopy(translated *Value, p *BasicBlock) Instruction {
	def := translated.DefInst
	if def == nil {
		return nil // an external value with nothing to synthesize
	}
	operands := def.GetOperands()
	real := cloneAsShadowRaw(def, p, operands)
	if real == def {
		return nil // not a clonable "nice" kind
	}
	setInstructionID(real, e.nextInstID())
	if res := real.GetResult(); res != nil {
		res.DefInst = real
	}
	p.Instructions = append(p.Instructions, real)
	return real
}

// isSmallConstant implements the constant-range carve-out from 4.G: a
// phi-translated constant within [-smallConstantRange, smallConstantRange]
// is treated as implicitly available on every path, since materializing a
// copy of it would cost more than the redundancy it removes.
func (e *insertionEngine) isSmallConstant(v *Value) bool {
	c, ok := v.DefInst.(*ConstantInstruction)
	if !ok {
		return false
	}
	var n int
	switch payload := c.Value.(type) {
	case int:
		n = payload
	case string:
		// The builder keeps numeric literals as their source text (e.g. "42").
		parsed, err := strconv.Atoi(payload)
		if err != nil {
			return false
		}
		n = parsed
	default:
		return false
	}
	return n >= -smallConstantRange && n <= smallConstantRange
}

// setInstructionID patches the ID field of a freshly cloned instruction so
// it doesn't collide with IDs already in use.
func setInstructionID(inst Instruction, id int) {
	switch i := inst.(type) {
	case *BinaryInstruction:
		i.ID = id
	case *CheckedArithInstruction:
		i.ID = id
	case *StorageLoadInstruction:
		i.ID = id
	case *KeyedStorageLoadInstruction:
		i.ID = id
	case *StorageAddrInstruction:
		i.ID = id
	case *LoadInstruction:
		i.ID = id
	case *TopicAddrInstruction:
		i.ID = id
	case *CallInstruction:
		i.ID = id
	}
}
