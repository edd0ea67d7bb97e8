// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package termutil

import (
	"math/big"
	"sort"
	"strings"

	"github.com/go-air/horn/logic"
)

// LinTerm is the linear decomposition of a numeric term: a rational
// constant plus rational coefficients over leaves.  A leaf is a variable
// or any other non-arithmetic subterm (a non-linear product stays opaque).
type LinTerm struct {
	Const *big.Rat
	Coef  map[logic.PTRef]*big.Rat
}

// LinearTerm decomposes t.  Sums and constant-scaled products are opened
// up; everything else becomes a leaf with its accumulated coefficient.
func LinearTerm(l *logic.Logic, t logic.PTRef) LinTerm {
	lt := LinTerm{Const: new(big.Rat), Coef: make(map[logic.PTRef]*big.Rat)}
	lt.accumulate(l, t, big.NewRat(1, 1))
	return lt
}

func (lt LinTerm) accumulate(l *logic.Logic, t logic.PTRef, scale *big.Rat) {
	switch {
	case l.IsNumConst(t):
		lt.Const.Add(lt.Const, new(big.Rat).Mul(scale, l.NumValue(t)))
	case l.IsPlus(t):
		for _, k := range l.Kids(t) {
			lt.accumulate(l, k, scale)
		}
	case l.IsTimes(t) && l.IsNumConst(l.Kid(t, 0)):
		lt.accumulate(l, l.Kid(t, 1), new(big.Rat).Mul(scale, l.NumValue(l.Kid(t, 0))))
	default:
		c := lt.Coef[t]
		if c == nil {
			c = new(big.Rat)
			lt.Coef[t] = c
		}
		c.Add(c, scale)
		if c.Sign() == 0 {
			delete(lt.Coef, t)
		}
	}
}

// Term rebuilds the decomposition as a term of the given sort.
func (lt LinTerm) Term(l *logic.Logic, srt logic.SRef) logic.PTRef {
	leaves := make([]logic.PTRef, 0, len(lt.Coef))
	for leaf := range lt.Coef {
		leaves = append(leaves, leaf)
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	terms := make([]logic.PTRef, 0, len(leaves)+1)
	if lt.Const.Sign() != 0 || len(leaves) == 0 {
		terms = append(terms, l.MkNumConst(srt, lt.Const))
	}
	for _, leaf := range leaves {
		terms = append(terms, l.MkTimes(l.MkNumConst(srt, lt.Coef[leaf]), leaf))
	}
	return l.MkPlus(terms...)
}

// ExpressZeroTermFor solves 'zeroTerm = 0' for v: it returns s such that
// 'v = s' is equivalent, provided v occurs linearly with nonzero
// coefficient (and, over Int, the divided coefficients stay integral).
// The second result reports success.
func ExpressZeroTermFor(l *logic.Logic, zeroTerm, v logic.PTRef) (logic.PTRef, bool) {
	if !l.IsVar(v) {
		panic("termutil: ExpressZeroTermFor of non-variable " + l.Print(v))
	}
	srt := l.SortOf(zeroTerm)
	lt := LinearTerm(l, zeroTerm)
	c := lt.Coef[v]
	if c == nil || c.Sign() == 0 {
		return logic.PTRefUndef, false
	}
	for leaf := range lt.Coef {
		if leaf != v && ContainsVar(l, leaf, v) {
			return logic.PTRefUndef, false
		}
	}
	// s = -(zeroTerm - c*v)/c
	scale := new(big.Rat).Inv(c)
	scale.Neg(scale)
	res := LinTerm{Const: new(big.Rat).Mul(lt.Const, scale), Coef: make(map[logic.PTRef]*big.Rat)}
	for leaf, k := range lt.Coef {
		if leaf == v {
			continue
		}
		res.Coef[leaf] = new(big.Rat).Mul(k, scale)
	}
	if srt == l.IntSort() {
		if !res.Const.IsInt() {
			return logic.PTRefUndef, false
		}
		for _, k := range res.Coef {
			if !k.IsInt() {
				return logic.PTRefUndef, false
			}
		}
	}
	return res.Term(l, srt), true
}

// TermContainsVar reports whether v occurs in t.
func TermContainsVar(l *logic.Logic, t, v logic.PTRef) bool {
	return ContainsVar(l, t, v)
}

// AtomContainsVar reports whether v occurs in the atom.
func AtomContainsVar(l *logic.Logic, atom, v logic.PTRef) bool {
	return ContainsVar(l, atom, v)
}

// bound is an inequality normalized to 'poly + d <= 0' (or < 0), with the
// non-constant part scaled so the leading leaf has unit magnitude.  Two
// bounds with the same key constrain the same halfspace family.
type bound struct {
	key    string
	d      *big.Rat
	strict bool
}

// normalizeIneq views t as an inequality if possible.
func normalizeIneq(l *logic.Logic, t logic.PTRef) (bound, bool) {
	pos := true
	for l.IsNot(t) {
		t = l.Kid(t, 0)
		pos = !pos
	}
	var a, b logic.PTRef
	var strict bool
	switch {
	case l.IsLeq(t):
		a, b, strict = l.Kid(t, 0), l.Kid(t, 1), false
	case l.IsLt(t):
		a, b, strict = l.Kid(t, 0), l.Kid(t, 1), true
	default:
		return bound{}, false
	}
	if !pos {
		// not (a <= b) is b < a, not (a < b) is b <= a
		a, b, strict = b, a, !strict
	}
	lt := LinearTerm(l, l.MkMinus(a, b))
	if len(lt.Coef) == 0 {
		return bound{}, false
	}
	leaves := make([]logic.PTRef, 0, len(lt.Coef))
	for leaf := range lt.Coef {
		leaves = append(leaves, leaf)
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	scale := new(big.Rat).Abs(lt.Coef[leaves[0]])
	scale.Inv(scale)
	var key strings.Builder
	for _, leaf := range leaves {
		k := new(big.Rat).Mul(lt.Coef[leaf], scale)
		key.WriteString(l.Print(leaf))
		key.WriteByte(':')
		key.WriteString(k.RatString())
		key.WriteByte(';')
	}
	return bound{key: key.String(), d: new(big.Rat).Mul(lt.Const, scale), strict: strict}, true
}

// SimplifyConjunction removes duplicate conjuncts and inequality conjuncts
// subsumed by a stronger bound over the same linear part.
func SimplifyConjunction(l *logic.Logic, fla logic.PTRef) logic.PTRef {
	if !l.IsAnd(fla) {
		return fla
	}
	return simplifyJuncts(l, fla, true)
}

// SimplifyDisjunction removes duplicate disjuncts and inequality disjuncts
// subsuming a weaker bound over the same linear part.
func SimplifyDisjunction(l *logic.Logic, fla logic.PTRef) logic.PTRef {
	if !l.IsOr(fla) {
		return fla
	}
	return simplifyJuncts(l, fla, false)
}

func simplifyJuncts(l *logic.Logic, fla logic.PTRef, conj bool) logic.PTRef {
	kids := l.Kids(fla)
	best := make(map[string]int) // bound key -> index into kept
	kept := make([]logic.PTRef, 0, len(kids))
	keptBounds := make([]bound, len(kids))
	for _, k := range kids {
		bd, ok := normalizeIneq(l, k)
		if !ok {
			kept = append(kept, k)
			continue
		}
		i, dup := best[bd.key]
		if !dup {
			best[bd.key] = len(kept)
			keptBounds[len(kept)] = bd
			kept = append(kept, k)
			continue
		}
		prev := keptBounds[i]
		// For a conjunction 'poly + d <= 0', larger d is stronger; a
		// disjunction keeps the weaker side.
		cmp := bd.d.Cmp(prev.d)
		stronger := cmp > 0 || (cmp == 0 && bd.strict && !prev.strict)
		if stronger == conj {
			kept[i] = k
			keptBounds[i] = bd
		}
	}
	if conj {
		return l.MkAnd(kept...)
	}
	return l.MkOr(kept...)
}
