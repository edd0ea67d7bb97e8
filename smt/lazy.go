// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package smt

import (
	"context"
	"strconv"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

// lazySolver is a lazy DPLL(T) solver: the boolean skeleton of the
// asserted formulas is Tseitin-encoded into a gini instance with theory
// atoms abstracted to SAT variables; propositional models are checked for
// theory consistency and refuted with blocking clauses until either the
// SAT core runs dry (Unsat) or a consistent model is found (Sat).
type lazySolver struct {
	l      *logic.Logic
	frames [][]logic.PTRef
	ites   int
}

// New creates a solver over the arena l.
func New(l *logic.Logic) Solver {
	return &lazySolver{l: l, frames: [][]logic.PTRef{nil}}
}

func (s *lazySolver) Assert(f logic.PTRef) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], f)
}

func (s *lazySolver) Push() {
	s.frames = append(s.frames, nil)
}

func (s *lazySolver) Pop() {
	if len(s.frames) == 1 {
		panic("smt: Pop without matching Push")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *lazySolver) Close() {}

func (s *lazySolver) Check(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}
	e := newEncoder(s.l)
	for _, frame := range s.frames {
		for _, f := range frame {
			lifted := s.liftIte(f, e)
			e.assertRoot(lifted)
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return Unknown, err
		}
		switch e.g.Solve() {
		case -1:
			return Unsat, nil
		case 1:
		default:
			return Unknown, nil
		}
		if s.modelFeasible(e) {
			return Sat, nil
		}
		// refute this theory-atom assignment
		for _, a := range e.atoms {
			if e.g.Value(a.lit) {
				e.g.Add(a.lit.Not())
			} else {
				e.g.Add(a.lit)
			}
		}
		e.g.Add(z.LitNull)
	}
}

// modelFeasible turns the current propositional model's theory literals
// into linear constraints and checks them.
func (s *lazySolver) modelFeasible(e *encoder) bool {
	l := s.l
	var cons []linCons
	var diseqs []termutil.LinTerm
	for _, a := range e.atoms {
		val := e.g.Value(a.lit)
		lhs, rhs := l.Kid(a.t, 0), l.Kid(a.t, 1)
		diff := func(x, y logic.PTRef) termutil.LinTerm { return termutil.LinearTerm(l, l.MkMinus(x, y)) }
		switch {
		case l.IsLeq(a.t):
			if val {
				cons = append(cons, linCons{lt: diff(lhs, rhs)})
			} else {
				cons = append(cons, linCons{lt: diff(rhs, lhs), strict: true})
			}
		case l.IsLt(a.t):
			if val {
				cons = append(cons, linCons{lt: diff(lhs, rhs), strict: true})
			} else {
				cons = append(cons, linCons{lt: diff(rhs, lhs)})
			}
		case l.IsEq(a.t):
			if val {
				cons = append(cons, linCons{lt: diff(lhs, rhs)}, linCons{lt: diff(rhs, lhs)})
			} else {
				diseqs = append(diseqs, diff(lhs, rhs))
			}
		}
	}
	return laFeasible(cons, diseqs)
}

type iteLiftConfig struct {
	logic.DefaultConfig
	s    *lazySolver
	e    *encoder
	defs *[]logic.PTRef
}

func (c iteLiftConfig) Rewrite(t logic.PTRef) logic.PTRef {
	l := c.s.l
	if !l.IsIte(t) || !l.IsNumericSort(l.SortOf(t)) {
		return t
	}
	cond, th, el := l.Kid(t, 0), l.Kid(t, 1), l.Kid(t, 2)
	v := l.MkVar("ite!"+l.SortName(l.SortOf(t))+"!"+strconv.Itoa(c.s.ites), l.SortOf(t))
	c.s.ites++
	*c.defs = append(*c.defs,
		l.MkImplies(cond, l.MkEq(v, th)),
		l.MkImplies(l.MkNot(cond), l.MkEq(v, el)))
	return v
}

// liftIte replaces numeric if-then-else subterms by fresh variables with
// guarded defining equalities, asserted alongside the formula.
func (s *lazySolver) liftIte(f logic.PTRef, e *encoder) logic.PTRef {
	var defs []logic.PTRef
	cfg := iteLiftConfig{s: s, e: e, defs: &defs}
	res := logic.NewRewriter(s.l, cfg).Rewrite(f)
	for _, d := range defs {
		e.assertRoot(d)
	}
	return res
}

// atom is a theory atom abstracted into the SAT instance.
type atom struct {
	t   logic.PTRef
	lit z.Lit
}

// encoder Tseitin-encodes formulas over l into a gini instance.
type encoder struct {
	l     *logic.Logic
	g     *gini.Gini
	lits  map[logic.PTRef]z.Lit
	atoms []atom
	tlit  z.Lit // literal fixed to true
}

func newEncoder(l *logic.Logic) *encoder {
	e := &encoder{
		l:    l,
		g:    gini.New(),
		lits: make(map[logic.PTRef]z.Lit),
	}
	e.tlit = e.g.Lit()
	e.clause(e.tlit)
	return e
}

func (e *encoder) clause(ms ...z.Lit) {
	for _, m := range ms {
		e.g.Add(m)
	}
	e.g.Add(z.LitNull)
}

func (e *encoder) assertRoot(f logic.PTRef) {
	e.clause(e.lit(f))
}

// lit returns a SAT literal equivalent to the Bool term t, defining it
// with Tseitin clauses on first encounter.
func (e *encoder) lit(t logic.PTRef) z.Lit {
	if m, ok := e.lits[t]; ok {
		return m
	}
	l := e.l
	var m z.Lit
	switch l.KindOf(t) {
	case logic.KTrue:
		m = e.tlit
	case logic.KFalse:
		m = e.tlit.Not()
	case logic.KNot:
		m = e.lit(l.Kid(t, 0)).Not()
	case logic.KAnd:
		m = e.g.Lit()
		kids := l.Kids(t)
		long := make([]z.Lit, 0, len(kids)+1)
		for _, k := range kids {
			km := e.lit(k)
			e.clause(m.Not(), km)
			long = append(long, km.Not())
		}
		e.clause(append(long, m)...)
	case logic.KOr:
		m = e.g.Lit()
		kids := l.Kids(t)
		long := make([]z.Lit, 0, len(kids)+1)
		long = append(long, m.Not())
		for _, k := range kids {
			km := e.lit(k)
			e.clause(m, km.Not())
			long = append(long, km)
		}
		e.clause(long...)
	case logic.KIte:
		c, th, el := e.lit(l.Kid(t, 0)), e.lit(l.Kid(t, 1)), e.lit(l.Kid(t, 2))
		m = e.g.Lit()
		e.clause(m.Not(), c.Not(), th)
		e.clause(m.Not(), c, el)
		e.clause(m, c.Not(), th.Not())
		e.clause(m, c, el.Not())
	case logic.KEq:
		if l.HasSortBool(l.Kid(t, 0)) {
			a, b := e.lit(l.Kid(t, 0)), e.lit(l.Kid(t, 1))
			m = e.g.Lit()
			e.clause(m.Not(), a.Not(), b)
			e.clause(m.Not(), a, b.Not())
			e.clause(m, a, b)
			e.clause(m, a.Not(), b.Not())
		} else {
			m = e.theoryAtom(t)
		}
	case logic.KLeq, logic.KLt:
		m = e.theoryAtom(t)
	case logic.KVar, logic.KUninterp:
		// opaque boolean: consistent by memoization, no theory content
		m = e.g.Lit()
	default:
		panic("smt: cannot abstract " + l.Print(t))
	}
	e.lits[t] = m
	return m
}

func (e *encoder) theoryAtom(t logic.PTRef) z.Lit {
	m := e.g.Lit()
	if e.l.IsNumericSort(e.l.SortOf(e.l.Kid(t, 0))) {
		e.atoms = append(e.atoms, atom{t: t, lit: m})
	}
	return m
}
