// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package chc

import "github.com/go-air/horn/logic"

// Edge is one clause of the normalized system viewed as a (hyper)edge:
// its constraint formula relates the source predicates' state-version
// variables to the target predicate's next-state variables.  Facts hang
// off Entry, queries point at Exit.
type Edge struct {
	ID   int
	From []logic.SymRef
	To   logic.SymRef
	Fla  logic.PTRef
}

// IsHyper reports whether the edge has more than one source predicate.
func (e Edge) IsHyper() bool { return len(e.From) > 1 }

// DirectedGraph is the predicate graph of a normalized system.  Entry is
// the source of facts and Exit the target of queries; they are represented
// by the interned true and false symbols.
type DirectedGraph struct {
	l     *logic.Logic
	preds []logic.SymRef
	edges []Edge
	repr  *CanonicalPredicateRepresentation
	entry logic.SymRef
	exit  logic.SymRef
}

// BuildGraph turns a normalized system into its predicate graph.  Parallel
// edges are preserved: two clauses with the same signature stay two edges.
func BuildGraph(ns *NormalizedSystem) *DirectedGraph {
	l := ns.l
	g := &DirectedGraph{
		l:     l,
		preds: ns.prds,
		repr:  ns.repr,
		entry: l.Sym(l.True()),
		exit:  l.Sym(l.False()),
	}
	for _, cl := range ns.cls {
		e := Edge{ID: len(g.edges), Fla: cl.Constraint}
		if len(cl.BodyPreds) == 0 {
			e.From = []logic.SymRef{g.entry}
		} else {
			for _, b := range cl.BodyPreds {
				e.From = append(e.From, l.Sym(b))
			}
		}
		if l.IsFalse(cl.Head) {
			e.To = g.exit
		} else {
			e.To = l.Sym(cl.Head)
		}
		g.edges = append(g.edges, e)
	}
	return g
}

// Logic returns the owning arena.
func (g *DirectedGraph) Logic() *logic.Logic { return g.l }

// Entry returns the distinguished fact-source node.
func (g *DirectedGraph) Entry() logic.SymRef { return g.entry }

// Exit returns the distinguished query-target node.
func (g *DirectedGraph) Exit() logic.SymRef { return g.exit }

// Repr returns the canonical representation table.
func (g *DirectedGraph) Repr() *CanonicalPredicateRepresentation { return g.repr }

// Edges returns all edges in clause order.
func (g *DirectedGraph) Edges() []Edge { return g.edges }

// Predicates returns the predicate nodes, excluding Entry and Exit.
func (g *DirectedGraph) Predicates() []logic.SymRef { return g.preds }

// edgesInto returns the edges with target sym.
func (g *DirectedGraph) edgesInto(sym logic.SymRef) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == sym {
			out = append(out, e)
		}
	}
	return out
}

// edgesBetween returns the non-hyper edges from one predicate to another.
func (g *DirectedGraph) edgesBetween(from, to logic.SymRef) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if !e.IsHyper() && e.From[0] == from && e.To == to {
			out = append(out, e)
		}
	}
	return out
}
