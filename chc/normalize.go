// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package chc

import (
	"strconv"

	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
	"github.com/pkg/errors"
)

// NormalizedSystem is the output of Normalize: every clause head and body
// predicate is a canonical representation, and all remaining variables are
// unique to their clause.
type NormalizedSystem struct {
	l    *logic.Logic
	cls  []Clause
	repr *CanonicalPredicateRepresentation
	prds []logic.SymRef
}

// Repr returns the canonical representation table.
func (ns *NormalizedSystem) Repr() *CanonicalPredicateRepresentation { return ns.repr }

// Clauses returns the normalized clauses.
func (ns *NormalizedSystem) Clauses() []Clause { return ns.cls }

// Normalize rewrites sys so that body predicate instances are the
// state-version canonical applications and head instances the next-state
// version (facts, having no body state, bind their head at version 0).
// The original argument terms are tied to the canonical variables with
// fresh equalities, clause-local variables are renamed to clause-unique
// auxiliaries, and trivial quantifier elimination discharges the
// auxiliaries it can.  Clauses with a true head are dropped.
func Normalize(sys *System) (*NormalizedSystem, error) {
	l := sys.Logic()
	tm := termutil.NewTimeMachine(l)
	repr := newCanonicalRepresentation(l)
	for _, p := range sys.Predicates() {
		repr.add(p)
	}
	ns := &NormalizedSystem{l: l, repr: repr, prds: sys.Predicates()}
	for ci, cl := range sys.Clauses() {
		if l.IsTrue(cl.Head) {
			continue
		}
		norm, err := normalizeClause(l, tm, repr, ci, cl)
		if err != nil {
			return nil, err
		}
		ns.cls = append(ns.cls, norm)
	}
	return ns, nil
}

func normalizeClause(l *logic.Logic, tm *termutil.TimeMachine, repr *CanonicalPredicateRepresentation, ci int, cl Clause) (Clause, error) {
	// rename every original clause variable to a clause-unique auxiliary
	rename := make(map[logic.PTRef]logic.PTRef)
	aux := make([]logic.PTRef, 0, 8)
	freshen := func(t logic.PTRef) {
		for _, v := range termutil.Vars(l, t) {
			if _, ok := rename[v]; ok {
				continue
			}
			base := l.MkVar("aux#"+strconv.Itoa(ci)+"#"+strconv.Itoa(len(rename)), l.SortOf(v))
			a := tm.VarVersionZero(base)
			rename[v] = a
			aux = append(aux, a)
		}
	}
	freshen(cl.Constraint)
	for _, b := range cl.BodyPreds {
		freshen(b)
	}
	freshen(cl.Head)

	juncts := []logic.PTRef{termutil.VarSubstitute(l, cl.Constraint, rename)}

	seen := make(map[logic.SymRef]bool)
	bodyPreds := make([]logic.PTRef, 0, len(cl.BodyPreds))
	for _, b := range cl.BodyPreds {
		sym := l.Sym(b)
		if seen[sym] {
			return Clause{}, errors.Errorf("chc: predicate %s occurs twice in one clause body", l.SymName(sym))
		}
		seen[sym] = true
		canon := repr.State(sym)
		vars := repr.StateVars(sym)
		for i, arg := range l.Kids(b) {
			juncts = append(juncts, l.MkEq(vars[i], termutil.VarSubstitute(l, arg, rename)))
		}
		bodyPreds = append(bodyPreds, canon)
	}

	head := cl.Head
	if !l.IsBoolConst(head) {
		sym := l.Sym(head)
		var canon logic.PTRef
		var vars []logic.PTRef
		if len(cl.BodyPreds) == 0 {
			canon, vars = repr.State(sym), repr.StateVars(sym)
		} else {
			canon, vars = repr.Next(sym), repr.NextVars(sym)
		}
		for i, arg := range l.Kids(head) {
			juncts = append(juncts, l.MkEq(vars[i], termutil.VarSubstitute(l, arg, rename)))
		}
		head = canon
	}

	fla := l.MkAnd(juncts...)
	fla, err := termutil.EliminateVars(l, aux, fla)
	if err != nil {
		return Clause{}, err
	}
	fla = termutil.SimplifyConjunction(l, fla)
	return Clause{Head: head, BodyPreds: bodyPreds, Constraint: fla}, nil
}
