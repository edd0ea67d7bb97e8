// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic

import "math/big"

// Constructors for interpreted terms.  Each performs the local
// simplifications that keep the arena canonical: constant folding on
// structured rationals, unit and complement absorption, duplicate removal,
// and a fixed operand order for commutative symbols.  Sort violations are
// programming errors and panic.

func (l *Logic) checkBool(ms ...PTRef) {
	for _, m := range ms {
		if !l.HasSortBool(m) {
			panic("logic: boolean connective over non-Bool term " + l.Print(m))
		}
	}
}

func (l *Logic) checkNumPair(a, b PTRef) SRef {
	sa, sb := l.SortOf(a), l.SortOf(b)
	if !l.IsNumericSort(sa) || sa != sb {
		panic("logic: arithmetic over sorts " + l.SortName(sa) + ", " + l.SortName(sb))
	}
	return sa
}

// MkAnd builds the conjunction of ms.  True operands are dropped, a false
// operand or a complementary pair collapses to false, duplicates are
// removed.  The empty conjunction is true.
func (l *Logic) MkAnd(ms ...PTRef) PTRef {
	l.checkBool(ms...)
	seen := make(map[PTRef]bool, len(ms))
	out := make([]PTRef, 0, len(ms))
	for _, m := range ms {
		if m == l.ptTrue || seen[m] {
			continue
		}
		if m == l.ptFalse || seen[l.MkNot(m)] {
			return l.ptFalse
		}
		seen[m] = true
		out = append(out, m)
	}
	switch len(out) {
	case 0:
		return l.ptTrue
	case 1:
		return out[0]
	}
	return l.app(l.symAnd, out)
}

// MkOr builds the disjunction of ms.  Dual simplifications to MkAnd; the
// empty disjunction is false.
func (l *Logic) MkOr(ms ...PTRef) PTRef {
	l.checkBool(ms...)
	seen := make(map[PTRef]bool, len(ms))
	out := make([]PTRef, 0, len(ms))
	for _, m := range ms {
		if m == l.ptFalse || seen[m] {
			continue
		}
		if m == l.ptTrue || seen[l.MkNot(m)] {
			return l.ptTrue
		}
		seen[m] = true
		out = append(out, m)
	}
	switch len(out) {
	case 0:
		return l.ptFalse
	case 1:
		return out[0]
	}
	return l.app(l.symOr, out)
}

// MkNot negates m, collapsing double negation and constant operands.
func (l *Logic) MkNot(m PTRef) PTRef {
	l.checkBool(m)
	switch {
	case m == l.ptTrue:
		return l.ptFalse
	case m == l.ptFalse:
		return l.ptTrue
	case l.IsNot(m):
		return l.Kid(m, 0)
	}
	return l.app(l.symNot, []PTRef{m})
}

// MkImplies builds (a implies b) as a disjunction.
func (l *Logic) MkImplies(a, b PTRef) PTRef {
	return l.MkOr(l.MkNot(a), b)
}

// MkEq builds the equality of a and b.  Operands are ordered by handle;
// identical or constant operands fold.
func (l *Logic) MkEq(a, b PTRef) PTRef {
	if l.SortOf(a) != l.SortOf(b) {
		panic("logic: equality over sorts " + l.SortName(l.SortOf(a)) + ", " + l.SortName(l.SortOf(b)))
	}
	if a == b {
		return l.ptTrue
	}
	if l.IsNumConst(a) && l.IsNumConst(b) {
		// distinct interned constants are distinct values
		return l.ptFalse
	}
	if l.IsBoolConst(a) && l.IsBoolConst(b) {
		return l.ptFalse
	}
	if a > b {
		a, b = b, a
	}
	return l.app(l.symEq, []PTRef{a, b})
}

// MkIte builds (ite c t e); t and e must agree on sort.
func (l *Logic) MkIte(c, t, e PTRef) PTRef {
	l.checkBool(c)
	if l.SortOf(t) != l.SortOf(e) {
		panic("logic: ite branches of sorts " + l.SortName(l.SortOf(t)) + ", " + l.SortName(l.SortOf(e)))
	}
	switch {
	case c == l.ptTrue:
		return t
	case c == l.ptFalse:
		return e
	case t == e:
		return t
	}
	return l.app(l.symIte, []PTRef{c, t, e})
}

// MkLeq builds (a <= b), folding constant operands.
func (l *Logic) MkLeq(a, b PTRef) PTRef {
	l.checkNumPair(a, b)
	if a == b {
		return l.ptTrue
	}
	if l.IsNumConst(a) && l.IsNumConst(b) {
		if l.NumValue(a).Cmp(l.NumValue(b)) <= 0 {
			return l.ptTrue
		}
		return l.ptFalse
	}
	return l.app(l.symLeq, []PTRef{a, b})
}

// MkLt builds (a < b), folding constant operands.
func (l *Logic) MkLt(a, b PTRef) PTRef {
	l.checkNumPair(a, b)
	if a == b {
		return l.ptFalse
	}
	if l.IsNumConst(a) && l.IsNumConst(b) {
		if l.NumValue(a).Cmp(l.NumValue(b)) < 0 {
			return l.ptTrue
		}
		return l.ptFalse
	}
	return l.app(l.symLt, []PTRef{a, b})
}

// MkGeq builds (a >= b) as (b <= a).
func (l *Logic) MkGeq(a, b PTRef) PTRef { return l.MkLeq(b, a) }

// MkGt builds (a > b) as (b < a).
func (l *Logic) MkGt(a, b PTRef) PTRef { return l.MkLt(b, a) }

// MkPlus builds the sum of ms.  Nested sums are flattened and constants
// are folded into a single leading constant.
func (l *Logic) MkPlus(ms ...PTRef) PTRef {
	if len(ms) == 0 {
		panic("logic: empty sum")
	}
	sort := l.SortOf(ms[0])
	if !l.IsNumericSort(sort) {
		panic("logic: sum over sort " + l.SortName(sort))
	}
	c := new(big.Rat)
	out := make([]PTRef, 0, len(ms)+1)
	var add func(m PTRef)
	add = func(m PTRef) {
		if l.SortOf(m) != sort {
			l.checkNumPair(ms[0], m)
		}
		switch {
		case l.IsPlus(m):
			for _, k := range l.Kids(m) {
				add(k)
			}
		case l.IsNumConst(m):
			c.Add(c, l.NumValue(m))
		default:
			out = append(out, m)
		}
	}
	for _, m := range ms {
		add(m)
	}
	if len(out) == 0 {
		return l.MkNumConst(sort, c)
	}
	if c.Sign() != 0 {
		out = append([]PTRef{l.MkNumConst(sort, c)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return l.app(l.symPlus, out)
}

// MkTimes builds the product of a and b, folding constants and absorbing
// the units 0 and 1.  A constant operand is kept first.
func (l *Logic) MkTimes(a, b PTRef) PTRef {
	sort := l.checkNumPair(a, b)
	if l.IsNumConst(b) {
		a, b = b, a
	}
	if l.IsNumConst(a) {
		v := l.NumValue(a)
		switch {
		case l.IsNumConst(b):
			return l.MkNumConst(sort, v.Mul(v, l.NumValue(b)))
		case v.Sign() == 0:
			return l.Zero(sort)
		case v.Cmp(big.NewRat(1, 1)) == 0:
			return b
		}
	}
	return l.app(l.symTimes, []PTRef{a, b})
}

// MkNeg builds the additive inverse of a.
func (l *Logic) MkNeg(a PTRef) PTRef {
	sort := l.SortOf(a)
	if !l.IsNumericSort(sort) {
		panic("logic: negation of sort " + l.SortName(sort))
	}
	return l.MkTimes(l.MkNumConst(sort, big.NewRat(-1, 1)), a)
}

// MkMinus builds (a - b) as a sum.
func (l *Logic) MkMinus(a, b PTRef) PTRef {
	return l.MkPlus(a, l.MkNeg(b))
}
