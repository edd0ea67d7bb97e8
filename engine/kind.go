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

// KInd is the k-induction engine.  It runs the BMC base case and, in
// lockstep, a step solver checking whether the negated query is
// k-inductive; the first side to conclude wins.  Unlike BMC it can
// certify safety of unbounded systems.
type KInd struct {
	l    *logic.Logic
	opts Options
}

// NewKInd creates a k-induction engine over l.
func NewKInd(l *logic.Logic, opts Options) *KInd {
	return &KInd{l: l, opts: opts.withDefaults()}
}

// Solve decides g with the same graph dispatch as BMC.
func (e *KInd) Solve(ctx context.Context, g *chc.DirectedGraph) (chc.VerificationResult, error) {
	if chc.IsTrivial(g) {
		return chc.VerificationResult{Answer: chc.Safe}, nil
	}
	if chc.IsTransitionSystem(g) {
		res := e.kind(ctx, chc.ToTransitionSystem(g))
		return chc.TranslateTransitionSystemResult(res, g, nil), nil
	}
	if ts, red, ok := chc.FromGeneralLinearSystem(g); ok {
		res := e.kind(ctx, ts)
		return chc.TranslateTransitionSystemResult(res, g, red), nil
	}
	return chc.VerificationResult{Answer: chc.Unknown}, nil
}

func (e *KInd) kind(ctx context.Context, ts *chc.TransitionSystem) chc.TSResult {
	l := e.l
	log := e.opts.Logger
	base := e.opts.NewSolver(l)
	defer base.Close()
	step := e.opts.NewSolver(l)
	defer step.Close()

	base.Assert(ts.Init)
	switch r, err := base.Check(ctx); {
	case err != nil:
		return cancelledResult
	case r == smt.Unsat:
		return chc.TSResult{Answer: chc.Safe, Witness: l.False()}
	case r == smt.Unknown:
		return chc.TSResult{Answer: chc.Unknown}
	}

	tm := termutil.NewTimeMachine(l)
	step.Assert(l.MkNot(ts.Query))
	for k := 0; e.opts.MaxUnrollings == 0 || k < e.opts.MaxUnrollings; k++ {
		if cancelled(ctx) {
			return cancelledResult
		}
		// base: a bug of depth k refutes safety outright
		base.Push()
		base.Assert(tm.SendThroughTime(ts.Query, k))
		switch r, err := base.Check(ctx); {
		case err != nil:
			return cancelledResult
		case r == smt.Sat:
			log.Infof("kind: bug found in depth %d", k)
			return chc.TSResult{Answer: chc.Unsafe, Depth: k}
		case r == smt.Unknown:
			return chc.TSResult{Answer: chc.Unknown}
		}
		base.Pop()
		base.Assert(tm.SendThroughTime(ts.Tr, k))

		// step: with the query excluded at times 0..k, can it still
		// fire at k+1?  Unsat proves the negated query (k+1)-inductive,
		// and the base runs have covered depths 0..k.
		step.Push()
		step.Assert(tm.SendThroughTime(ts.Tr, k))
		step.Assert(tm.SendThroughTime(ts.Query, k+1))
		switch r, err := step.Check(ctx); {
		case err != nil:
			return cancelledResult
		case r == smt.Unsat:
			log.Infof("kind: %d-induction proof found", k+1)
			return chc.TSResult{Answer: chc.Safe, Witness: l.MkNot(ts.Query)}
		case r == smt.Unknown:
			return chc.TSResult{Answer: chc.Unknown}
		}
		log.Debugf("kind: no %d-induction proof", k+1)
		step.Pop()
		step.Assert(tm.SendThroughTime(ts.Tr, k))
		step.Assert(l.MkNot(tm.SendThroughTime(ts.Query, k+1)))
	}
	return chc.TSResult{Answer: chc.Unknown}
}
