// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package smt provides the SMT decision procedure behind the verification
// engines: an incremental interface with push/pop scoping, and a lazy
// DPLL(T) implementation combining the gini SAT solver with an exact
// Fourier-Motzkin feasibility check for linear real arithmetic.
//
// Int-sorted arithmetic is decided by rational relaxation: Unsat answers
// are exact, Sat answers assume the feasible region contains an integral
// point, which holds for the difference-bound style constraints produced
// by the CHC pipeline.
package smt

import (
	"context"

	"github.com/go-air/horn/logic"
)

// Result is a satisfiability verdict.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

// Solver is an incremental SMT session.  Assertions accumulate
// conjunctively; Push opens a scope and Pop discards every assertion added
// since the matching Push.  Check may block; it polls ctx and returns
// ctx's error when cancelled.
type Solver interface {
	Assert(f logic.PTRef)
	Push()
	Pop()
	Check(ctx context.Context) (Result, error)
	Close()
}
