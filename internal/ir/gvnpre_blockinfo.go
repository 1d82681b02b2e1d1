package ir

// GVNPREConfig carries the pass's feature flags (spec 9). All default to
// off, matching the Non-goals in spec 1: no memory-dependent PRE, no
// division/modulo PRE, no speculative high-hoisting, unless explicitly
// turned on by an embedder that has verified its IR (and, for Loads, its
// alias model) supports them.
type GVNPREConfig struct {
	// Loads enables phi-translation and availability tracking for
	// memory-effectful instructions (loads, storage reads). Requires the
	// collaborator to supply a sound alias model; left off otherwise.
	Loads bool
	// DivMods treats division/modulo as nice, PRE-eligible expressions.
	// Off by default because div/mod can fault (divide-by-zero) and PRE
	// must not speculatively introduce a fault on a previously
	// fault-free path.
	DivMods bool
	// OldDivMods names the legacy (pre-DIVMODS-rework) projection
	// handling for checked arithmetic. The pass never reads it, so setting
	// it changes nothing. Mutually exclusive in spirit with
	// DivMods; kept as a distinct bit because the source keeps them
	// distinct compile-time switches.
	OldDivMods bool
	// HoistHigh is the switch for a post-hoist pass that pushes a newly
	// inserted expression further up the dominator tree while all its
	// operands still die there (a register-pressure optimization, not
	// required for correctness). No such pass exists in this package and
	// the field is never read, so setting it changes nothing.
	HoistHigh bool
	// CommonDom names a predecessor choice that prefers a common dominator
	// destination over per-predecessor copies. Unused placeholder bit,
	// mirrors the source's compile-time switch: the insertion engine never
	// reads it and always makes per-predecessor copies.
	CommonDom bool
	// MinCut names a min-cut based insertion strategy as an alternative to
	// the greedy one in 4.G. Unused placeholder bit, mirrors the source:
	// the insertion engine never reads it.
	MinCut bool
	// BetterGreed would relax the greediness check in is_hoisting_greedy.
	// Left unimplemented per spec 9: the source marks this pathway
	// "NIY / unfinished", and no design for it survived distillation.
	BetterGreed bool
	// NoInfLoops skips antic_in seeding inside a loop the classifier (4.C)
	// flagged as infinite, so antic sets over an endless loop never grow
	// without bound.
	NoInfLoops bool
	// NoInfLoops2 additionally skips antic propagation across the back
	// edges of an infinite loop during the first two solver iterations.
	NoInfLoops2 bool
}

// DefaultGVNPREConfig returns the all-off configuration the driver uses
// unless the caller opts into a feature.
func DefaultGVNPREConfig() *GVNPREConfig {
	return &GVNPREConfig{}
}

// MAX_ANTIC_ITER / MAX_INSERT_ITER bound the fixed-point loops in 4.F / 4.G.
const (
	maxAnticIter  = 10
	maxInsertIter = 3
)

// smallConstantRange bounds the "constant within a small range" carve-out
// in is_partially_redundant (4.G): a translated constant outside
// [-smallConstantRange, smallConstantRange] is never treated as implicitly
// available.
const smallConstantRange = 127

// elimReason records why an elimination pair was queued, purely for
// diagnostics (debug-print infrastructure is out of this pass's scope, but
// the reason is cheap to keep around for tests and tooling).
type elimReason string

const (
	elimReasonFully     elimReason = "fully"
	elimReasonPartially elimReason = "partially"
)

// elimPair is a deferred replacement, spec 3 "Elim Pair". Replacements are
// deferred because performing them eagerly would change the hash identity
// of nodes the eliminator walk hasn't inspected yet.
type elimPair struct {
	old    Instruction
	repl   Instruction
	reason elimReason
}

// blockInfo is the per-block state of spec 3 "Block Info".
type blockInfo struct {
	block *BasicBlock

	expGen   *ValueSet
	availOut *ValueSet
	anticIn  *ValueSet
	newSet   *ValueSet

	// trans caches phi-translation results keyed by the original
	// (untranslated) value, scoped to this block acting as a predecessor
	// of its single successor.
	trans map[*Value]*Value

	// avail/found are the scratch fields spec 3 describes: for the
	// predecessor this blockInfo belongs to, the candidate expression
	// (and whether it was already available) for the value currently
	// being decided by the insertion engine. Reset at the start of each
	// partial-redundancy decision.
	avail *Value
	found bool
}

func newBlockInfo(b *BasicBlock) *blockInfo {
	return &blockInfo{
		block:    b,
		expGen:   NewValueSet(),
		availOut: NewValueSet(),
		anticIn:  NewValueSet(),
		newSet:   NewValueSet(),
		trans:    make(map[*Value]*Value),
	}
}

// blockInfoStore owns every blockInfo for one pass invocation (spec 3
// Lifecycle: "Block infos are allocated once on entry, freed at end").
type blockInfoStore struct {
	byBlock map[*BasicBlock]*blockInfo
}

func newBlockInfoStore(blocks []*BasicBlock) *blockInfoStore {
	s := &blockInfoStore{byBlock: make(map[*BasicBlock]*blockInfo, len(blocks))}
	for _, b := range blocks {
		s.byBlock[b] = newBlockInfo(b)
	}
	return s
}

func (s *blockInfoStore) of(b *BasicBlock) *blockInfo {
	info, ok := s.byBlock[b]
	if !ok {
		info = newBlockInfo(b)
		s.byBlock[b] = info
	}
	return info
}
