// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic

// ToNNF returns a formula equivalent to f with all negations pushed down
// to atoms.  De Morgan and double negation are applied, negated boolean
// equalities are expanded, and if-then-else over Bool is rewritten into
// its disjunctive form.  Calling ToNNF on a non-Bool term is a programming
// error and panics.
func (l *Logic) ToNNF(f PTRef) PTRef {
	if !l.HasSortBool(f) {
		panic("logic: ToNNF of non-Bool term " + l.Print(f))
	}
	return l.nnf(f, true)
}

func (l *Logic) nnf(t PTRef, pos bool) PTRef {
	switch l.KindOf(t) {
	case KNot:
		return l.nnf(l.Kid(t, 0), !pos)
	case KAnd:
		kids := l.nnfKids(t, pos)
		if pos {
			return l.MkAnd(kids...)
		}
		return l.MkOr(kids...)
	case KOr:
		kids := l.nnfKids(t, pos)
		if pos {
			return l.MkOr(kids...)
		}
		return l.MkAnd(kids...)
	case KEq:
		a, b := l.Kid(t, 0), l.Kid(t, 1)
		if !l.HasSortBool(a) {
			break
		}
		// (= a b) becomes (a and b) or (not a and not b); under negation
		// the right disjunct keeps one operand positive.
		if pos {
			return l.MkOr(
				l.MkAnd(l.nnf(a, true), l.nnf(b, true)),
				l.MkAnd(l.nnf(a, false), l.nnf(b, false)))
		}
		return l.MkOr(
			l.MkAnd(l.nnf(a, true), l.nnf(b, false)),
			l.MkAnd(l.nnf(a, false), l.nnf(b, true)))
	case KIte:
		if !l.HasSortBool(t) {
			break
		}
		c, th, el := l.Kid(t, 0), l.Kid(t, 1), l.Kid(t, 2)
		return l.MkOr(
			l.MkAnd(l.nnf(c, true), l.nnf(th, pos)),
			l.MkAnd(l.nnf(c, false), l.nnf(el, pos)))
	}
	if pos {
		return t
	}
	return l.MkNot(t)
}

func (l *Logic) nnfKids(t PTRef, pos bool) []PTRef {
	kids := l.Kids(t)
	out := make([]PTRef, len(kids))
	for i, k := range kids {
		out[i] = l.nnf(k, pos)
	}
	return out
}
