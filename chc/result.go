// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package chc

import "github.com/go-air/horn/logic"

// Answer is a verification verdict.
type Answer int

const (
	Unknown Answer = iota
	Safe
	Unsafe
)

func (a Answer) String() string {
	switch a {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	}
	return "unknown"
}

// TSResult is a verdict on a transition system: for Safe, Witness is a
// certificate formula (false for systems with empty initial states, the
// negated query for inductive proofs); for Unsafe, Depth is the length of
// the violating unrolling.
type TSResult struct {
	Answer    Answer
	Depth     int
	Witness   logic.PTRef
	Cancelled bool
}

// VerificationResult is a verdict on a CHC graph.
type VerificationResult struct {
	Answer    Answer
	Cancelled bool
	// Witness is the safety certificate formula, when one exists.
	Witness logic.PTRef
	// CexDepth is the number of loop iterations of the counterexample.
	CexDepth int
	// CexPath is the node path of the counterexample, when the graph
	// shape permits reconstructing one without a model.
	CexPath []logic.SymRef
}

// TranslateTransitionSystemResult maps a transition-system verdict back to
// the graph.  Safe and Unknown carry over; Unsafe at depth k over a plain
// transition system becomes the path Entry -> p (k+1 times) -> Exit.  For
// reduced systems the depth carries over and the path stays empty: the
// location trace would need a model from the backend.
func TranslateTransitionSystemResult(res TSResult, g *DirectedGraph, red *Reduction) VerificationResult {
	switch res.Answer {
	case Safe:
		return VerificationResult{Answer: Safe, Witness: res.Witness}
	case Unsafe:
		out := VerificationResult{Answer: Unsafe, CexDepth: res.Depth}
		if red == nil || red.Kind == ReductionNone {
			p := g.activePredicates()[0]
			path := []logic.SymRef{g.entry}
			for i := 0; i <= res.Depth; i++ {
				path = append(path, p)
			}
			out.CexPath = append(path, g.exit)
		}
		return out
	default:
		return VerificationResult{Answer: Unknown, Cancelled: res.Cancelled}
	}
}
