// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package chc

import (
	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

// TransitionSystem is the single-loop form the engines unroll: Init over
// the version-0 state variables, Tr over state and next-state, Query over
// state.  The system is safe iff Init and k transitions never reach Query
// for any k.
type TransitionSystem struct {
	L         *logic.Logic
	StateVars []logic.PTRef
	NextVars  []logic.PTRef
	Init      logic.PTRef
	Tr        logic.PTRef
	Query     logic.PTRef
}

// ReductionKind says how a general graph was folded into one loop.
type ReductionKind int

const (
	// ReductionNone marks a graph that already was a transition system.
	ReductionNone ReductionKind = iota
	// ReductionSingleLoop is the program-counter product of a linear
	// multi-predicate graph.
	ReductionSingleLoop
	// ReductionProduct is the interleaving product of independent
	// single-loop components joined only by queries.
	ReductionProduct
)

// Reduction records how to map verdicts on the reduced system back to the
// original graph.
type Reduction struct {
	Kind ReductionKind
	// Locs maps program-counter values to predicates (single-loop case).
	Locs []logic.SymRef
}

// IsTrivial reports whether no derivation can reach Exit: hyperedges fire
// only once all their sources are derivable, so reachability is a fixpoint
// from Entry.
func IsTrivial(g *DirectedGraph) bool {
	reached := map[logic.SymRef]bool{g.entry: true}
	for changed := true; changed; {
		changed = false
		for _, e := range g.edges {
			if reached[e.To] {
				continue
			}
			all := true
			for _, f := range e.From {
				if !reached[f] {
					all = false
					break
				}
			}
			if all {
				reached[e.To] = true
				changed = true
			}
		}
	}
	return !reached[g.exit]
}

// activePredicates returns the predicates occurring on some edge.
func (g *DirectedGraph) activePredicates() []logic.SymRef {
	seen := make(map[logic.SymRef]bool)
	var out []logic.SymRef
	add := func(s logic.SymRef) {
		if s == g.entry || s == g.exit || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, e := range g.edges {
		for _, f := range e.From {
			add(f)
		}
		add(e.To)
	}
	return out
}

// IsTransitionSystem reports whether g is a single predicate p with
// Entry->p, exactly one p->p, and p->Exit edges, all linear.
func IsTransitionSystem(g *DirectedGraph) bool {
	preds := g.activePredicates()
	if len(preds) != 1 {
		return false
	}
	p := preds[0]
	loops, entries, exits := 0, 0, 0
	for _, e := range g.edges {
		if e.IsHyper() {
			return false
		}
		switch {
		case e.From[0] == g.entry && e.To == p:
			entries++
		case e.From[0] == p && e.To == p:
			loops++
		case e.From[0] == p && e.To == g.exit:
			exits++
		case e.From[0] == g.entry && e.To == g.exit:
			// a predicate-free query; tolerated
		default:
			return false
		}
	}
	return entries >= 1 && loops == 1 && exits >= 1
}

// ToTransitionSystem folds a graph satisfying IsTransitionSystem: the
// Entry edges disjoin into Init, the loop edge becomes Tr, the Exit edges
// disjoin into Query.
func ToTransitionSystem(g *DirectedGraph) *TransitionSystem {
	if !IsTransitionSystem(g) {
		panic("chc: graph is not a transition system")
	}
	l := g.l
	p := g.activePredicates()[0]
	var init, query, tr []logic.PTRef
	for _, e := range g.edges {
		switch {
		case e.From[0] == g.entry && e.To == p:
			init = append(init, e.Fla)
		case e.From[0] == p && e.To == p:
			tr = append(tr, e.Fla)
		default: // some edge into Exit
			query = append(query, e.Fla)
		}
	}
	return &TransitionSystem{
		L:         l,
		StateVars: g.repr.StateVars(p),
		NextVars:  g.repr.NextVars(p),
		Init:      l.MkOr(init...),
		Tr:        l.MkOr(tr...),
		Query:     l.MkOr(query...),
	}
}

// FromGeneralLinearSystem attempts to reduce a graph with several
// predicates or loops to a single-loop transition system.  A linear graph
// becomes a program-counter product; a graph whose only hyperedges are
// queries over independent single-loop components becomes an interleaving
// product.  The third result is false when neither construction applies.
func FromGeneralLinearSystem(g *DirectedGraph) (*TransitionSystem, *Reduction, bool) {
	hyper := false
	for _, e := range g.edges {
		if e.IsHyper() {
			hyper = true
			break
		}
	}
	if !hyper {
		ts, red := singleLoopProduct(g)
		return ts, red, true
	}
	if ts, ok := independentProduct(g); ok {
		return ts, &Reduction{Kind: ReductionProduct}, true
	}
	return nil, nil, false
}

// singleLoopProduct builds the program-counter product of a linear graph:
// one location per predicate, a case split on the active location, and
// the union of all canonical state variables.
func singleLoopProduct(g *DirectedGraph) (*TransitionSystem, *Reduction) {
	l := g.l
	tm := termutil.NewTimeMachine(l)
	preds := g.activePredicates()
	loc := make(map[logic.SymRef]int, len(preds))
	for i, p := range preds {
		loc[p] = i
	}
	pc0 := tm.VarVersionZero(l.MkVar("pc!", l.IntSort()))
	pc1 := tm.SendVarThroughTime(pc0, 1)
	at := func(pc logic.PTRef, p logic.SymRef) logic.PTRef {
		return l.MkEq(pc, l.MkIntConst(int64(loc[p])))
	}
	var init, tr, query []logic.PTRef
	for _, e := range g.edges {
		from, to := e.From[0], e.To
		switch {
		case from == g.entry && to == g.exit:
			query = append(query, e.Fla)
		case from == g.entry:
			init = append(init, l.MkAnd(at(pc0, to), e.Fla))
		case to == g.exit:
			query = append(query, l.MkAnd(at(pc0, from), e.Fla))
		default:
			tr = append(tr, l.MkAnd(at(pc0, from), at(pc1, to), e.Fla))
		}
	}
	state := []logic.PTRef{pc0}
	next := []logic.PTRef{pc1}
	for _, p := range preds {
		state = append(state, g.repr.StateVars(p)...)
		next = append(next, g.repr.NextVars(p)...)
	}
	initFla := l.MkOr(init...)
	if len(preds) == 0 {
		// only predicate-free queries: the empty state is reachable
		initFla = l.True()
	}
	ts := &TransitionSystem{
		L:         l,
		StateVars: state,
		NextVars:  next,
		Init:      initFla,
		Tr:        l.MkOr(tr...),
		Query:     l.MkOr(query...),
	}
	return ts, &Reduction{Kind: ReductionSingleLoop, Locs: preds}
}

// independentProduct handles graphs whose predicates never feed each
// other: every non-hyper edge is Entry->p, a linear self-loop p->p, or
// p->Exit, and every hyperedge targets Exit.  The components advance by
// interleaving: each transition steps one component and freezes the
// canonical variables of the others.
func independentProduct(g *DirectedGraph) (*TransitionSystem, bool) {
	l := g.l
	preds := g.activePredicates()
	for _, e := range g.edges {
		if e.IsHyper() {
			if e.To != g.exit {
				return nil, false
			}
			continue
		}
		from, to := e.From[0], e.To
		ok := (from == g.entry) || (to == g.exit) || from == to
		if !ok {
			return nil, false
		}
	}
	frame := func(except logic.SymRef) []logic.PTRef {
		var eqs []logic.PTRef
		for _, q := range preds {
			if q == except {
				continue
			}
			sv, nv := g.repr.StateVars(q), g.repr.NextVars(q)
			for i := range sv {
				eqs = append(eqs, l.MkEq(nv[i], sv[i]))
			}
		}
		return eqs
	}
	var init, tr, query []logic.PTRef
	for _, p := range preds {
		var pInit []logic.PTRef
		for _, e := range g.edgesBetween(g.entry, p) {
			pInit = append(pInit, e.Fla)
		}
		init = append(init, l.MkOr(pInit...))
		var pLoop []logic.PTRef
		for _, e := range g.edgesBetween(p, p) {
			pLoop = append(pLoop, e.Fla)
		}
		if len(pLoop) > 0 {
			tr = append(tr, l.MkAnd(append(frame(p), l.MkOr(pLoop...))...))
		}
	}
	for _, e := range g.edgesInto(g.exit) {
		query = append(query, e.Fla)
	}
	var state, next []logic.PTRef
	for _, p := range preds {
		state = append(state, g.repr.StateVars(p)...)
		next = append(next, g.repr.NextVars(p)...)
	}
	return &TransitionSystem{
		L:         l,
		StateVars: state,
		NextVars:  next,
		Init:      l.MkAnd(init...),
		Tr:        l.MkOr(tr...),
		Query:     l.MkOr(query...),
	}, true
}
