// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package termutil provides the term toolkit used by the CHC engines:
// variable collection, top-level junct extraction, variable versioning (the
// time machine), trivial quantifier elimination, and linear-arithmetic
// helpers.
package termutil

import "github.com/go-air/horn/logic"

// Vars returns the free variables of t in discovery order, each once.
func Vars(l *logic.Logic, t logic.PTRef) []logic.PTRef {
	var out []logic.PTRef
	seen := make(map[logic.PTRef]bool)
	var walk func(t logic.PTRef)
	walk = func(t logic.PTRef) {
		if seen[t] {
			return
		}
		seen[t] = true
		if l.IsVar(t) {
			out = append(out, t)
			return
		}
		for _, k := range l.Kids(t) {
			walk(k)
		}
	}
	walk(t)
	return out
}

// ContainsVar reports whether v occurs in t.
func ContainsVar(l *logic.Logic, t, v logic.PTRef) bool {
	if t == v {
		return true
	}
	for _, k := range l.Kids(t) {
		if ContainsVar(l, k, v) {
			return true
		}
	}
	return false
}

// IsUPOrConstant reports whether t is an uninterpreted predicate
// application or a zero-arity Bool term (true, false or a Bool variable).
func IsUPOrConstant(l *logic.Logic, t logic.PTRef) bool {
	return l.IsUP(t) || (l.HasSortBool(t) && l.Arity(t) == 0)
}

// VarsFromPredicate returns the arguments of a predicate application in
// order.  After normalization every argument is a variable; anything else
// is a programming error and panics.
func VarsFromPredicate(l *logic.Logic, pred logic.PTRef) []logic.PTRef {
	if !IsUPOrConstant(l, pred) {
		panic("termutil: not a predicate: " + l.Print(pred))
	}
	kids := l.Kids(pred)
	vars := make([]logic.PTRef, len(kids))
	for i, k := range kids {
		if !l.IsVar(k) {
			panic("termutil: predicate argument is not a variable: " + l.Print(pred))
		}
		vars[i] = k
	}
	return vars
}

// VarSubstitute applies the substitution map to t in a single simultaneous
// step.
func VarSubstitute(l *logic.Logic, t logic.PTRef, sub map[logic.PTRef]logic.PTRef) logic.PTRef {
	if len(sub) == 0 {
		return t
	}
	return logic.NewSubstitutor(l, sub).Rewrite(t)
}

// InsertVarPairsFromPredicates extends sub with the positionwise variable
// pairing of two applications of the same predicate.
func InsertVarPairsFromPredicates(l *logic.Logic, domain, codomain logic.PTRef, sub map[logic.PTRef]logic.PTRef) {
	dv := VarsFromPredicate(l, domain)
	cv := VarsFromPredicate(l, codomain)
	if len(dv) != len(cv) {
		panic("termutil: predicate arity mismatch between " + l.Print(domain) + " and " + l.Print(codomain))
	}
	for i := range dv {
		sub[dv[i]] = cv[i]
	}
}

// JunctKind selects which connective TopLevelJuncts splits on.
type JunctKind int

const (
	Conjunction JunctKind = iota
	Disjunction
)

type signedTerm struct {
	t   logic.PTRef
	pos bool
}

// purify strips negations off t, returning the unsigned term and the
// resulting polarity relative to pos.
func purify(l *logic.Logic, t logic.PTRef, pos bool) signedTerm {
	for l.IsNot(t) {
		t = l.Kid(t, 0)
		pos = !pos
	}
	return signedTerm{t: t, pos: pos}
}

// TopLevelJuncts returns the top-level juncts of root of the requested
// kind, keeping only those accepted by filter.  For Conjunction, positive
// conjunctions are expanded, negative disjunctions are expanded with the
// polarity flipped, and everything else is a leaf; Disjunction swaps the
// connective roles.  Leaves of negative polarity are emitted negated.
// Emission order is discovery order, duplicates are dropped.
func TopLevelJuncts(l *logic.Logic, root logic.PTRef, kind JunctKind, filter func(logic.PTRef) bool) []logic.PTRef {
	var res []logic.PTRef
	seen := make(map[signedTerm]bool)
	queue := []signedTerm{purify(l, root, true)}
	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]
		if seen[st] {
			continue
		}
		seen[st] = true
		expand := false
		switch kind {
		case Conjunction:
			expand = (l.IsAnd(st.t) && st.pos) || (l.IsOr(st.t) && !st.pos)
		case Disjunction:
			expand = (l.IsOr(st.t) && st.pos) || (l.IsAnd(st.t) && !st.pos)
		}
		if expand {
			for _, k := range l.Kids(st.t) {
				queue = append(queue, purify(l, k, st.pos))
			}
			continue
		}
		term := st.t
		if !st.pos {
			term = l.MkNot(term)
		}
		if filter == nil || filter(term) {
			res = append(res, term)
		}
	}
	return res
}

// TopLevelConjuncts returns the top-level conjuncts of root.
func TopLevelConjuncts(l *logic.Logic, root logic.PTRef) []logic.PTRef {
	return TopLevelJuncts(l, root, Conjunction, nil)
}

// TopLevelConjunctsFiltered returns the top-level conjuncts accepted by
// filter.
func TopLevelConjunctsFiltered(l *logic.Logic, root logic.PTRef, filter func(logic.PTRef) bool) []logic.PTRef {
	return TopLevelJuncts(l, root, Conjunction, filter)
}

// TopLevelDisjuncts returns the top-level disjuncts of root.
func TopLevelDisjuncts(l *logic.Logic, root logic.PTRef) []logic.PTRef {
	return TopLevelJuncts(l, root, Disjunction, nil)
}
