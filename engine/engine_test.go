// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package engine_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/horn/chc"
	"github.com/go-air/horn/engine"
	"github.com/go-air/horn/logic"
)

func declarePred(t *testing.T, l *logic.Logic, sys *chc.System, name string, n int) logic.SymRef {
	t.Helper()
	sorts := make([]logic.SRef, n)
	for i := range sorts {
		sorts[i] = l.IntSort()
	}
	sym, err := l.DeclareFun(name, sorts, l.BoolSort())
	require.NoError(t, err)
	require.NoError(t, sys.AddPredicate(sym))
	return sym
}

func app(t *testing.T, l *logic.Logic, sym logic.SymRef, args ...logic.PTRef) logic.PTRef {
	t.Helper()
	a, err := l.MkApp(sym, args...)
	require.NoError(t, err)
	return a
}

func graphOf(t *testing.T, sys *chc.System) *chc.DirectedGraph {
	t.Helper()
	ns, err := chc.Normalize(sys)
	require.NoError(t, err)
	return chc.BuildGraph(ns)
}

func quietOptions(max int) engine.Options {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return engine.Options{MaxUnrollings: max, Logger: log}
}

// counterGraph: Inv(0); Inv(x) and x'=x+1 implies Inv(x');
// Inv(x) and x < 0 implies false.
func counterGraph(t *testing.T, l *logic.Logic) *chc.DirectedGraph {
	sys := chc.NewSystem(l)
	inv := declarePred(t, l, sys, "Inv", 1)
	x := l.MkVar("x", l.IntSort())
	xn := l.MkVar("xn", l.IntSort())
	require.NoError(t, sys.AddClause(app(t, l, inv, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, inv, xn),
		l.MkEq(xn, l.MkPlus(x, l.MkIntConst(1))), app(t, l, inv, x)))
	require.NoError(t, sys.AddClause(l.False(), l.MkLt(x, l.MkIntConst(0)), app(t, l, inv, x)))
	return graphOf(t, sys)
}

// twoHopGraph: Inv1 feeds Inv2; safety needs location-aware invariants.
func twoHopGraph(t *testing.T, l *logic.Logic) *chc.DirectedGraph {
	sys := chc.NewSystem(l)
	inv1 := declarePred(t, l, sys, "Inv1", 2)
	inv2 := declarePred(t, l, sys, "Inv2", 2)
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	xn := l.MkVar("xn", l.IntSort())
	yn := l.MkVar("yn", l.IntSort())
	zero := l.MkIntConst(0)
	one := l.MkIntConst(1)
	require.NoError(t, sys.AddClause(app(t, l, inv1, zero, zero), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, inv1, xn, y),
		l.MkEq(xn, l.MkPlus(x, one)), app(t, l, inv1, x, y)))
	require.NoError(t, sys.AddClause(app(t, l, inv2, x, y), l.True(), app(t, l, inv1, x, y)))
	require.NoError(t, sys.AddClause(app(t, l, inv2, x, yn),
		l.MkEq(yn, l.MkPlus(y, one)), app(t, l, inv2, x, y)))
	require.NoError(t, sys.AddClause(l.False(),
		l.MkLt(l.MkPlus(x, y), zero), app(t, l, inv2, x, y)))
	return graphOf(t, sys)
}

// independentGraph: two counters from 0, joined only by the query over
// x + y.
func independentGraph(t *testing.T, l *logic.Logic, query func(x, y logic.PTRef) logic.PTRef) *chc.DirectedGraph {
	sys := chc.NewSystem(l)
	invx := declarePred(t, l, sys, "Invx", 1)
	invy := declarePred(t, l, sys, "Invy", 1)
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	xn := l.MkVar("xn", l.IntSort())
	yn := l.MkVar("yn", l.IntSort())
	one := l.MkIntConst(1)
	require.NoError(t, sys.AddClause(app(t, l, invx, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, invx, xn),
		l.MkEq(xn, l.MkPlus(x, one)), app(t, l, invx, x)))
	require.NoError(t, sys.AddClause(app(t, l, invy, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, invy, yn),
		l.MkEq(yn, l.MkPlus(y, one)), app(t, l, invy, y)))
	require.NoError(t, sys.AddClause(l.False(), query(x, y),
		app(t, l, invx, x), app(t, l, invy, y)))
	return graphOf(t, sys)
}

func TestBMCTrivialGraphIsSafe(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	inv := declarePred(t, l, sys, "Inv", 1)
	x := l.MkVar("x", l.IntSort())
	require.NoError(t, sys.AddClause(app(t, l, inv, x), l.MkEq(x, l.MkIntConst(0))))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Safe, res.Answer)
}

func TestBMCEmptyInit(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	inv := declarePred(t, l, sys, "Inv", 1)
	x := l.MkVar("x", l.IntSort())
	// x = 0 and x /= 0 never holds, so Inv is empty
	require.NoError(t, sys.AddClause(app(t, l, inv, x),
		l.MkAnd(l.MkEq(x, l.MkIntConst(0)), l.MkNot(l.MkEq(x, l.MkIntConst(0))))))
	require.NoError(t, sys.AddClause(l.False(), l.True(), app(t, l, inv, x)))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Safe, res.Answer)
	assert.Equal(t, l.False(), res.Witness)
}

func TestBMCTriviallyUnsafe(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	inv := declarePred(t, l, sys, "Inv", 1)
	x := l.MkVar("x", l.IntSort())
	require.NoError(t, sys.AddClause(app(t, l, inv, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(l.False(), l.True(), app(t, l, inv, x)))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unsafe, res.Answer)
	assert.Equal(t, 0, res.CexDepth)
}

func TestBMCCounterexamplePath(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	inv := declarePred(t, l, sys, "Inv", 1)
	x := l.MkVar("x", l.IntSort())
	xn := l.MkVar("xn", l.IntSort())
	require.NoError(t, sys.AddClause(app(t, l, inv, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, inv, xn),
		l.MkEq(xn, l.MkPlus(x, l.MkIntConst(1))), app(t, l, inv, x)))
	require.NoError(t, sys.AddClause(l.False(),
		l.MkEq(x, l.MkIntConst(2)), app(t, l, inv, x)))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, chc.Unsafe, res.Answer)
	assert.Equal(t, 2, res.CexDepth)
	// Entry, Inv at depths 0..2, Exit
	require.Len(t, res.CexPath, 5)
	assert.Equal(t, g.Entry(), res.CexPath[0])
	assert.Equal(t, g.Exit(), res.CexPath[4])
	assert.Equal(t, inv, res.CexPath[1])
}

func TestBMCBoundedCounterIsUnknown(t *testing.T) {
	l := logic.New()
	g := counterGraph(t, l)
	res, err := engine.NewBMC(l, quietOptions(5)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unknown, res.Answer)
	assert.False(t, res.Cancelled)
}

func TestKIndCounterIsSafe(t *testing.T) {
	l := logic.New()
	g := counterGraph(t, l)
	res, err := engine.NewKInd(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Safe, res.Answer)
}

func TestTwoHopNeverUnsafe(t *testing.T) {
	l := logic.New()
	g := twoHopGraph(t, l)
	res, err := engine.NewBMC(l, quietOptions(4)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.NotEqual(t, chc.Unsafe, res.Answer)

	res, err = engine.NewKInd(l, quietOptions(3)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.NotEqual(t, chc.Unsafe, res.Answer)
}

func TestIndependentCountersSafe(t *testing.T) {
	l := logic.New()
	g := independentGraph(t, l, func(x, y logic.PTRef) logic.PTRef {
		return l.MkLt(l.MkPlus(x, y), l.MkIntConst(0))
	})
	res, err := engine.NewKInd(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Safe, res.Answer)
}

func TestIndependentCountersUnsafe(t *testing.T) {
	l := logic.New()
	g := independentGraph(t, l, func(x, y logic.PTRef) logic.PTRef {
		return l.MkEq(l.MkPlus(x, y), l.MkIntConst(3))
	})
	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, chc.Unsafe, res.Answer)
	// each step moves one counter by one, so three steps in total
	assert.Equal(t, 3, res.CexDepth)
}

func TestBMCMonotoneInBound(t *testing.T) {
	l := logic.New()
	g := independentGraph(t, l, func(x, y logic.PTRef) logic.PTRef {
		return l.MkEq(l.MkPlus(x, y), l.MkIntConst(3))
	})
	res, err := engine.NewBMC(l, quietOptions(2)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unknown, res.Answer)

	res, err = engine.NewBMC(l, quietOptions(10)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unsafe, res.Answer)
}

func TestCancellationReturnsUnknown(t *testing.T) {
	l := logic.New()
	g := counterGraph(t, l)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := engine.NewBMC(l, quietOptions(0)).Solve(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unknown, res.Answer)
	assert.True(t, res.Cancelled)
}

func TestPredicateFreeQuery(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	x := l.MkVar("x", l.IntSort())
	// exists x. x > 1 refutes safety outright
	require.NoError(t, sys.AddClause(l.False(), l.MkLt(l.MkIntConst(1), x)))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unsafe, res.Answer)
	assert.Equal(t, 0, res.CexDepth)

	// with an unsatisfiable constraint the query is unreachable
	sys2 := chc.NewSystem(l)
	require.NoError(t, sys2.AddClause(l.False(), l.MkLt(x, x)))
	res, err = engine.NewKInd(l, quietOptions(0)).Solve(context.Background(), graphOf(t, sys2))
	require.NoError(t, err)
	assert.Equal(t, chc.Safe, res.Answer)
}

func TestNonReducibleGraphIsUnknown(t *testing.T) {
	l := logic.New()
	sys := chc.NewSystem(l)
	a := declarePred(t, l, sys, "A", 1)
	b := declarePred(t, l, sys, "B", 1)
	x := l.MkVar("x", l.IntSort())
	y := l.MkVar("y", l.IntSort())
	require.NoError(t, sys.AddClause(app(t, l, a, l.MkIntConst(0)), l.True()))
	require.NoError(t, sys.AddClause(app(t, l, b, l.MkIntConst(0)), l.True()))
	// a hyperedge back into a predicate defeats both reductions
	require.NoError(t, sys.AddClause(app(t, l, a, x), l.True(), app(t, l, a, x), app(t, l, b, y)))
	require.NoError(t, sys.AddClause(l.False(), l.MkLt(x, l.MkIntConst(0)), app(t, l, a, x)))
	g := graphOf(t, sys)

	res, err := engine.NewBMC(l, quietOptions(0)).Solve(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, chc.Unknown, res.Answer)
}
