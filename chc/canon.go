// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package chc

import (
	"strconv"

	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

// CanonicalPredicateRepresentation keeps, for every predicate symbol, the
// two canonical applications gluing clauses together: the state version
// over version-0 variables and the next-state version over version-1
// variables.  It is read-only after graph construction.
type CanonicalPredicateRepresentation struct {
	l     *logic.Logic
	state map[logic.SymRef]logic.PTRef
	next  map[logic.SymRef]logic.PTRef
}

func newCanonicalRepresentation(l *logic.Logic) *CanonicalPredicateRepresentation {
	return &CanonicalPredicateRepresentation{
		l:     l,
		state: make(map[logic.SymRef]logic.PTRef),
		next:  make(map[logic.SymRef]logic.PTRef),
	}
}

// add builds and records the canonical applications of sym.  The i'th
// argument of predicate p has base name "p#i".
func (r *CanonicalPredicateRepresentation) add(sym logic.SymRef) {
	if _, ok := r.state[sym]; ok {
		return
	}
	l := r.l
	tm := termutil.NewTimeMachine(l)
	argSorts := l.SymArgSorts(sym)
	sv := make([]logic.PTRef, len(argSorts))
	nv := make([]logic.PTRef, len(argSorts))
	for i, srt := range argSorts {
		base := l.MkVar(l.SymName(sym)+"#"+strconv.Itoa(i), srt)
		sv[i] = tm.VarVersionZero(base)
		nv[i] = tm.SendVarThroughTime(sv[i], 1)
	}
	state, err := l.MkApp(sym, sv...)
	if err != nil {
		panic("chc: canonical representation: " + err.Error())
	}
	next, err := l.MkApp(sym, nv...)
	if err != nil {
		panic("chc: canonical representation: " + err.Error())
	}
	r.state[sym] = state
	r.next[sym] = next
}

// State returns the state-version canonical application of sym.
func (r *CanonicalPredicateRepresentation) State(sym logic.SymRef) logic.PTRef {
	t, ok := r.state[sym]
	if !ok {
		panic("chc: no canonical representation for " + r.l.SymName(sym))
	}
	return t
}

// Next returns the next-state canonical application of sym.
func (r *CanonicalPredicateRepresentation) Next(sym logic.SymRef) logic.PTRef {
	t, ok := r.next[sym]
	if !ok {
		panic("chc: no canonical representation for " + r.l.SymName(sym))
	}
	return t
}

// StateVars returns the version-0 canonical variables of sym in order.
func (r *CanonicalPredicateRepresentation) StateVars(sym logic.SymRef) []logic.PTRef {
	return termutil.VarsFromPredicate(r.l, r.State(sym))
}

// NextVars returns the version-1 canonical variables of sym in order.
func (r *CanonicalPredicateRepresentation) NextVars(sym logic.SymRef) []logic.PTRef {
	return termutil.VarsFromPredicate(r.l, r.Next(sym))
}
