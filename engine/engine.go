// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package engine implements the verification engines over CHC predicate
// graphs: bounded model checking and k-induction.  Engines are
// single-shot state machines; each Solve owns a fresh SMT session and
// releases it before returning.
package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/go-air/horn/chc"
	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/smt"
)

// Engine decides a CHC graph.
type Engine interface {
	Solve(ctx context.Context, g *chc.DirectedGraph) (chc.VerificationResult, error)
}

// Options configure an engine.
type Options struct {
	// MaxUnrollings bounds the number of loop unrollings; 0 means
	// unbounded.
	MaxUnrollings int
	// Logger receives progress and verdict logging.  Defaults to the
	// logrus standard logger.
	Logger logrus.FieldLogger
	// NewSolver supplies SMT sessions.  Defaults to smt.New.
	NewSolver func(*logic.Logic) smt.Solver
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.NewSolver == nil {
		o.NewSolver = smt.New
	}
	return o
}

// cancelled reports whether ctx is done.
func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

var cancelledResult = chc.TSResult{Answer: chc.Unknown, Cancelled: true}
