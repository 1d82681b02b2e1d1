package ir

// Driver (component I, spec 4.I): orchestrates the whole GVN-PRE pipeline
// for a single function -- dominance, loop classification, exp_gen/avail_out
// construction, the antic_in fixed point, the insertion fixed point, and
// finally elimination -- and exposes the result as an OptimizationPass so it
// slots into the existing pipeline the same way ConstantFolding and
// DeadCodeElimination do.
type GVNPREPass struct {
	Config *GVNPREConfig
}

// NewGVNPREPass builds the pass with the all-features-off config spec 9
// calls the conservative default.
func NewGVNPREPass() *GVNPREPass {
	return &GVNPREPass{Config: DefaultGVNPREConfig()}
}

func (p *GVNPREPass) Name() string {
	return "Global Value Numbering + Partial Redundancy Elimination"
}

func (p *GVNPREPass) Description() string {
	return "Hoists and eliminates redundant recomputations across basic blocks via value numbering and antic/avail fixed points"
}

// Apply runs the pass over every function in program, per spec 5's
// single-threaded, strictly-sequential scheduling model: one function
// at a time, no shared mutable state between functions.
func (p *GVNPREPass) Apply(program *Program) bool {
	changed := false
	for _, fn := range program.Functions {
		if p.run(fn) {
			changed = true
		}
	}
	return changed
}

// run executes the full pipeline against one function's graph (spec 6's
// run(graph) entry point, specialized to a per-function CFG since this IR
// has no single whole-program graph to walk).
func (p *GVNPREPass) run(fn *Function) bool {
	if len(fn.Blocks) == 0 {
		return false
	}

	d := buildDomTree(fn)
	if d.entry == nil {
		return false
	}
	lf := buildLoopForest(fn, d)
	classifyInfiniteLoops(fn, lf)

	vt := NewValueTable(p.Config)
	store := newBlockInfoStore(fn.Blocks)

	buildExpGen(fn, d.rpo, vt, store)
	propagateAvailOut(fn, d, store)
	solveAnticIn(d.rpo, vt, store, lf, d)

	nextID := maxInstID(fn) + 1
	_, pairs := runInsertion(d.preorder(), vt, store, d, nextID)

	removed := eliminate(fn, d.rpo, vt, store, pairs)
	return removed > 0 || len(pairs) > 0
}

// maxInstID scans fn for the highest instruction ID already assigned, so
// the insertion engine's scratch allocator never collides with an existing
// one. The pass never has access to the builder that originally minted
// these IDs, so it rebuilds a safe starting point by inspection instead.
func maxInstID(fn *Function) int {
	max := 0
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if id := inst.GetID(); id > max {
				max = id
			}
		}
		if b.Terminator != nil {
			if id := b.Terminator.GetID(); id > max {
				max = id
			}
		}
	}
	return max
}
