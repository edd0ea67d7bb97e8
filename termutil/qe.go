// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package termutil

import (
	"github.com/go-air/horn/logic"
	"github.com/pkg/errors"
)

// ErrNotVar is returned when quantifier elimination is asked to eliminate
// something other than a variable.
var ErrNotVar = errors.New("quantifier elimination: not a variable")

// EliminateVars eliminates the given variables from fla one at a time,
// where possible.  The result is equivalent to fla under existential
// closure over vars; variables the heuristics cannot discharge remain.
func EliminateVars(l *logic.Logic, vars []logic.PTRef, fla logic.PTRef) (logic.PTRef, error) {
	cur := fla
	for _, v := range vars {
		res, _, err := EliminateVar(l, v, cur)
		if err != nil {
			return logic.PTRefUndef, err
		}
		cur = res
	}
	return cur, nil
}

// EliminateVar eliminates v from fla through its top-level equalities: a
// direct definition 'v = t' (or 't = v') is substituted as is; otherwise
// the first equality containing v is solved for v when linear arithmetic
// permits.  The boolean result reports whether an elimination happened;
// when it is false the formula is returned unchanged, which is sound but
// incomplete.
func EliminateVar(l *logic.Logic, v, fla logic.PTRef) (logic.PTRef, bool, error) {
	if !l.IsVar(v) {
		return logic.PTRefUndef, false, errors.Wrap(ErrNotVar, l.Print(v))
	}
	eqs := TopLevelConjunctsFiltered(l, fla, l.IsEq)
	for _, eq := range eqs {
		lhs, rhs := l.Kid(eq, 0), l.Kid(eq, 1)
		var def logic.PTRef
		switch {
		case lhs == v:
			def = rhs
		case rhs == v:
			def = lhs
		default:
			continue
		}
		if ContainsVar(l, def, v) {
			continue
		}
		sub := map[logic.PTRef]logic.PTRef{v: def}
		return VarSubstitute(l, fla, sub), true, nil
	}
	for _, eq := range eqs {
		if !AtomContainsVar(l, eq, v) {
			continue
		}
		if def, ok := solveEqualityFor(l, eq, v); ok {
			sub := map[logic.PTRef]logic.PTRef{v: def}
			return VarSubstitute(l, fla, sub), true, nil
		}
		break
	}
	return fla, false, nil
}

// solveEqualityFor isolates v in 'lhs = rhs' when both sides are numeric
// and v occurs linearly.
func solveEqualityFor(l *logic.Logic, eq, v logic.PTRef) (logic.PTRef, bool) {
	lhs, rhs := l.Kid(eq, 0), l.Kid(eq, 1)
	if !l.IsNumericSort(l.SortOf(lhs)) {
		return logic.PTRefUndef, false
	}
	return ExpressZeroTermFor(l, l.MkMinus(lhs, rhs), v)
}
