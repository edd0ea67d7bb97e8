// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package termutil_test

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

func TestEliminateVarByDefinition(t *testing.T) {
	l := logic.New()
	v := l.MkVar("v", l.IntSort())
	x := l.MkVar("x", l.IntSort())
	def := l.MkPlus(x, l.MkIntConst(1))
	f := l.MkAnd(l.MkEq(v, def), l.MkLeq(v, l.MkIntConst(10)))

	res, ok, err := termutil.EliminateVar(l, v, f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, termutil.ContainsVar(l, res, v))
	assert.Equal(t, l.MkLeq(def, l.MkIntConst(10)), res)

	// the mirrored equality works the same
	g := l.MkAnd(l.MkEq(def, v), l.MkLeq(v, l.MkIntConst(10)))
	res2, ok, err := termutil.EliminateVar(l, v, g)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, res2)
}

func TestEliminateVarBySolving(t *testing.T) {
	l := logic.New()
	v := l.MkVar("v", l.RealSort())
	x := l.MkVar("x", l.RealSort())
	two := l.MkNumConst(l.RealSort(), big.NewRat(2, 1))
	// 2v + x = 0 pins v to -x/2
	f := l.MkAnd(l.MkEq(l.MkPlus(l.MkTimes(two, v), x), l.Zero(l.RealSort())), l.MkLt(v, x))

	res, ok, err := termutil.EliminateVar(l, v, f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, termutil.ContainsVar(l, res, v))
}

func TestEliminateVarIncomplete(t *testing.T) {
	l := logic.New()
	v := l.MkVar("v", l.IntSort())
	x := l.MkVar("x", l.IntSort())
	two := l.MkIntConst(2)

	// no top-level equality mentions v
	f := l.MkAnd(l.MkLeq(v, x), l.MkEq(x, two))
	res, ok, err := termutil.EliminateVar(l, v, f)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, f, res)

	// over Int, an even coefficient cannot be divided out
	g := l.MkEq(l.MkPlus(l.MkTimes(two, v), x), l.MkIntConst(0))
	res, ok, err = termutil.EliminateVar(l, v, g)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, g, res)
}

func TestEliminateVarRejectsNonVar(t *testing.T) {
	l := logic.New()
	_, _, err := termutil.EliminateVar(l, l.MkIntConst(1), l.True())
	require.Error(t, err)
	assert.True(t, errors.Is(err, termutil.ErrNotVar))

	_, err = termutil.EliminateVars(l, []logic.PTRef{l.MkIntConst(1)}, l.True())
	require.Error(t, err)
}

func TestEliminateVars(t *testing.T) {
	l := logic.New()
	u := l.MkVar("u", l.IntSort())
	v := l.MkVar("v", l.IntSort())
	x := l.MkVar("x", l.IntSort())
	f := l.MkAnd(
		l.MkEq(u, l.MkPlus(x, l.MkIntConst(1))),
		l.MkEq(v, u),
		l.MkLt(v, l.MkIntConst(5)),
	)
	res, err := termutil.EliminateVars(l, []logic.PTRef{u, v}, f)
	require.NoError(t, err)
	assert.False(t, termutil.ContainsVar(l, res, u))
	assert.False(t, termutil.ContainsVar(l, res, v))
	assert.True(t, termutil.ContainsVar(l, res, x))
}
