// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/horn/logic"
)

func TestSubstitutorBasics(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	f := l.MkLeq(l.MkPlus(x, l.MkIntConst(1)), y)

	sub := logic.NewSubstitutor(l, map[logic.PTRef]logic.PTRef{x: y})
	got := sub.Rewrite(f)
	assert.Equal(t, l.MkLeq(l.MkPlus(y, l.MkIntConst(1)), y), got)

	// absent entries are untouched
	assert.Equal(t, f, logic.NewSubstitutor(l, map[logic.PTRef]logic.PTRef{}).Rewrite(f))
}

func TestSubstitutorIdempotent(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	def := l.MkPlus(y, l.MkIntConst(2))
	f := l.MkEq(l.MkPlus(x, y), l.MkIntConst(0))

	sub := logic.NewSubstitutor(l, map[logic.PTRef]logic.PTRef{x: def})
	once := sub.Rewrite(f)
	twice := sub.Rewrite(once)
	require.Equal(t, once, twice)
}

func TestSubstitutorSimultaneous(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	f := l.MkLeq(x, y)
	swap := logic.NewSubstitutor(l, map[logic.PTRef]logic.PTRef{x: y, y: x})
	assert.Equal(t, l.MkLeq(y, x), swap.Rewrite(f))
}

func TestSubstitutorRejectsNonVarKeys(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	assert.Panics(t, func() {
		logic.NewSubstitutor(l, map[logic.PTRef]logic.PTRef{l.MkIntConst(1): x})
	})
}

// atomsOnly checks every negation in f sits directly on an atom.
func atomsOnly(l *logic.Logic, f logic.PTRef) bool {
	if l.IsNot(f) {
		k := l.Kid(f, 0)
		if l.IsAnd(k) || l.IsOr(k) || l.IsNot(k) || l.IsIte(k) {
			return false
		}
		if l.IsEq(k) && l.HasSortBool(l.Kid(k, 0)) {
			return false
		}
		return true
	}
	for _, k := range l.Kids(f) {
		if l.HasSortBool(k) && !atomsOnly(l, k) {
			return false
		}
	}
	return true
}

func TestToNNF(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	p := l.MkBoolVar("p")
	q := l.MkBoolVar("q")
	le := l.MkLeq(x, l.MkIntConst(0))
	eq := l.MkEq(x, l.MkIntConst(2))

	f := l.MkNot(l.MkAnd(l.MkOr(p, le), l.MkNot(l.MkAnd(q, eq))))
	nnf := l.ToNNF(f)
	require.True(t, atomsOnly(l, nnf))
	assert.Equal(t, l.MkOr(l.MkAnd(l.MkNot(p), l.MkNot(le)), l.MkAnd(q, eq)), nnf)

	// idempotent
	assert.Equal(t, nnf, l.ToNNF(nnf))
}

func TestToNNFBoolEqAndIte(t *testing.T) {
	l := logic.New()
	p := l.MkBoolVar("p")
	q := l.MkBoolVar("q")
	r := l.MkBoolVar("r")

	iff := l.ToNNF(l.MkNot(l.MkEq(p, q)))
	require.True(t, atomsOnly(l, iff))
	assert.Equal(t, l.MkOr(l.MkAnd(p, l.MkNot(q)), l.MkAnd(l.MkNot(p), q)), iff)

	ite := l.ToNNF(l.MkIte(p, q, r))
	require.True(t, atomsOnly(l, ite))
	assert.Equal(t, l.MkOr(l.MkAnd(p, q), l.MkAnd(l.MkNot(p), r)), ite)
}

func TestToNNFPanicsOnNonBool(t *testing.T) {
	l := logic.New()
	assert.Panics(t, func() { l.ToNNF(l.MkIntConst(3)) })
}
