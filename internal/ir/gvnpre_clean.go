package ir

// isClean implements the "Clean expression" notion from the glossary: def
// is clean with respect to known if def is itself nice, and every
// non-phi operand it reads either has no local producing instruction (a
// parameter or otherwise externally-supplied value, always assumed
// available) or is already present, by value, in known. When
// restrictBlock is non-nil, only operands actually defined in that block
// are checked; operands from elsewhere are assumed already resolved by
// avail_out's dominator inheritance.
func isClean(def Instruction, vt *ValueTable, known *ValueSet, restrictBlock *BasicBlock) bool {
	if def == nil {
		return true
	}
	if isPhiInst(def) {
		return true
	}
	if !niceValue(def, vt.cfg) {
		return false
	}
	for _, operand := range def.GetOperands() {
		if operand == nil {
			continue
		}
		odef := operand.DefInst
		if odef == nil {
			continue
		}
		if restrictBlock != nil && odef.GetBlock() != restrictBlock {
			continue
		}
		if isPhiInst(odef) {
			continue
		}
		if !niceValue(odef, vt.cfg) {
			return false
		}
		if !known.Has(vt.identify(operand)) {
			return false
		}
	}
	return true
}
