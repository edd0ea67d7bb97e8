// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package engine

import (
	"context"

	"github.com/go-air/horn/chc"
	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/smt"
	"github.com/go-air/horn/termutil"
)

// BMC is the bounded model checking engine.  It refutes safety by
// unrolling the transition relation depth by depth; it certifies safety
// only for systems with unsatisfiable initial states or no Entry-to-Exit
// path.
type BMC struct {
	l    *logic.Logic
	opts Options
}

// NewBMC creates a BMC engine over l.
func NewBMC(l *logic.Logic, opts Options) *BMC {
	return &BMC{l: l, opts: opts.withDefaults()}
}

// Solve decides g: trivially safe graphs return immediately, transition
// systems are unrolled directly, general linear graphs go through the
// single-loop reduction, and graphs whose only hyperedges are queries over
// independent loops go through the interleaving product.  Anything else is
// Unknown.
func (b *BMC) Solve(ctx context.Context, g *chc.DirectedGraph) (chc.VerificationResult, error) {
	if chc.IsTrivial(g) {
		return chc.VerificationResult{Answer: chc.Safe}, nil
	}
	if chc.IsTransitionSystem(g) {
		res := b.bmc(ctx, chc.ToTransitionSystem(g))
		return chc.TranslateTransitionSystemResult(res, g, nil), nil
	}
	if ts, red, ok := chc.FromGeneralLinearSystem(g); ok {
		res := b.bmc(ctx, ts)
		return chc.TranslateTransitionSystemResult(res, g, red), nil
	}
	return chc.VerificationResult{Answer: chc.Unknown}, nil
}

// bmc unrolls the system: after checking for empty initial states, depth k
// asserts the query at time k under Init and k transitions.
func (b *BMC) bmc(ctx context.Context, ts *chc.TransitionSystem) chc.TSResult {
	log := b.opts.Logger
	solver := b.opts.NewSolver(b.l)
	defer solver.Close()

	solver.Assert(ts.Init)
	switch r, err := solver.Check(ctx); {
	case err != nil:
		return cancelledResult
	case r == smt.Unsat:
		return chc.TSResult{Answer: chc.Safe, Witness: b.l.False()}
	case r == smt.Unknown:
		return chc.TSResult{Answer: chc.Unknown}
	}

	tm := termutil.NewTimeMachine(b.l)
	for k := 0; b.opts.MaxUnrollings == 0 || k < b.opts.MaxUnrollings; k++ {
		if cancelled(ctx) {
			return cancelledResult
		}
		solver.Push()
		solver.Assert(tm.SendThroughTime(ts.Query, k))
		switch r, err := solver.Check(ctx); {
		case err != nil:
			return cancelledResult
		case r == smt.Sat:
			log.Infof("bmc: bug found in depth %d", k)
			return chc.TSResult{Answer: chc.Unsafe, Depth: k}
		case r == smt.Unknown:
			return chc.TSResult{Answer: chc.Unknown}
		}
		log.Debugf("bmc: no path of length %d found", k)
		solver.Pop()
		solver.Assert(tm.SendThroughTime(ts.Tr, k))
	}
	return chc.TSResult{Answer: chc.Unknown}
}
