// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/horn/logic"
)

func TestHashConsing(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("x", l.IntSort())
	require.Equal(t, x, y)

	a := l.MkLeq(x, l.MkIntConst(5))
	b := l.MkLeq(l.MkVar("x", l.IntSort()), l.MkIntConst(5))
	require.Equal(t, a, b)

	f := l.MkAnd(a, l.MkEq(x, l.MkIntConst(0)))
	g := l.MkAnd(b, l.MkEq(y, l.MkIntConst(0)))
	require.Equal(t, f, g)
	require.NotEqual(t, f, a)
}

func TestNumeralsAreCanonical(t *testing.T) {
	l := logic.New()
	a := l.MkNumConst(l.RealSort(), big.NewRat(2, 4))
	b := l.MkNumConst(l.RealSort(), big.NewRat(1, 2))
	require.Equal(t, a, b)
	require.Equal(t, "1/2", l.NumValue(a).RatString())

	// same value, different sort, different term
	i := l.MkIntConst(1)
	r := l.MkNumConst(l.RealSort(), big.NewRat(1, 1))
	require.NotEqual(t, i, r)
}

func TestBoolConstructors(t *testing.T) {
	l := logic.New()
	p := l.MkBoolVar("p")
	q := l.MkBoolVar("q")

	assert.Equal(t, p, l.MkAnd(p, l.True()))
	assert.Equal(t, l.False(), l.MkAnd(p, l.False()))
	assert.Equal(t, p, l.MkAnd(p, p))
	assert.Equal(t, l.False(), l.MkAnd(p, l.MkNot(p)))
	assert.Equal(t, l.True(), l.MkAnd())

	assert.Equal(t, p, l.MkOr(p, l.False()))
	assert.Equal(t, l.True(), l.MkOr(p, l.MkNot(p)))
	assert.Equal(t, l.False(), l.MkOr())

	assert.Equal(t, p, l.MkNot(l.MkNot(p)))
	assert.Equal(t, l.False(), l.MkNot(l.True()))

	assert.Equal(t, l.True(), l.MkEq(p, p))
	assert.Equal(t, l.MkEq(p, q), l.MkEq(q, p))

	assert.Equal(t, q, l.MkIte(l.True(), q, p))
	assert.Equal(t, p, l.MkIte(l.False(), q, p))
	assert.Equal(t, p, l.MkIte(q, p, p))
}

func TestArithConstructors(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())

	assert.Equal(t, l.MkIntConst(5), l.MkPlus(l.MkIntConst(2), l.MkIntConst(3)))
	assert.Equal(t, x, l.MkPlus(x, l.MkIntConst(0)))
	sum := l.MkPlus(l.MkIntConst(1), x, l.MkIntConst(2))
	require.True(t, l.IsPlus(sum))
	assert.Equal(t, l.MkIntConst(3), l.Kid(sum, 0))

	assert.Equal(t, l.MkIntConst(6), l.MkTimes(l.MkIntConst(2), l.MkIntConst(3)))
	assert.Equal(t, x, l.MkTimes(l.MkIntConst(1), x))
	assert.Equal(t, l.MkIntConst(0), l.MkTimes(x, l.MkIntConst(0)))

	assert.Equal(t, l.True(), l.MkLeq(l.MkIntConst(3), l.MkIntConst(3)))
	assert.Equal(t, l.False(), l.MkLt(l.MkIntConst(3), l.MkIntConst(3)))
	assert.Equal(t, l.MkLeq(x, l.MkIntConst(1)), l.MkGeq(l.MkIntConst(1), x))
	assert.Equal(t, l.False(), l.MkEq(l.MkIntConst(1), l.MkIntConst(2)))
}

func TestSortViolationsPanic(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	p := l.MkBoolVar("p")
	assert.Panics(t, func() { l.MkAnd(x) })
	assert.Panics(t, func() { l.MkPlus(p, p) })
	assert.Panics(t, func() { l.MkEq(x, p) })
	assert.Panics(t, func() { l.MkVar("x", l.RealSort()) })
	assert.Panics(t, func() { l.MkNumConst(l.IntSort(), big.NewRat(1, 2)) })
}

func TestDeclareFun(t *testing.T) {
	l := logic.New()
	inv, err := l.DeclareFun("Inv", []logic.SRef{l.IntSort()}, l.BoolSort())
	require.NoError(t, err)
	again, err := l.DeclareFun("Inv", []logic.SRef{l.IntSort()}, l.BoolSort())
	require.NoError(t, err)
	require.Equal(t, inv, again)
	_, err = l.DeclareFun("Inv", []logic.SRef{l.RealSort()}, l.BoolSort())
	require.Error(t, err)

	x := l.MkVar("x", l.IntSort())
	app, err := l.MkApp(inv, x)
	require.NoError(t, err)
	require.True(t, l.IsUP(app))
	require.Equal(t, 1, l.Arity(app))

	_, err = l.MkApp(inv)
	require.Error(t, err)
	_, err = l.MkApp(inv, l.MkBoolVar("p"))
	require.Error(t, err)
}

func TestPrint(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	f := l.MkAnd(l.MkLeq(l.MkIntConst(0), x), l.MkNot(l.MkEq(x, l.MkIntConst(-2))))
	assert.Equal(t, "(and (<= 0 x) (not (= x (- 2))))", l.Print(f))

	half := l.MkNumConst(l.RealSort(), big.NewRat(-1, 2))
	assert.Equal(t, "(- (/ 1 2))", l.Print(half))
}

func TestPrintWithLets(t *testing.T) {
	l := logic.New()
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	shared := l.MkPlus(x, y)
	f := l.MkAnd(l.MkLeq(shared, l.MkIntConst(1)), l.MkLeq(l.MkIntConst(0), shared))
	out := l.PrintWithLets(f)
	assert.Equal(t, "(let ((?def0 (+ x y))) (and (<= ?def0 1) (<= 0 ?def0)))", out)

	// no sharing, no lets
	assert.Equal(t, l.Print(x), l.PrintWithLets(x))
}
