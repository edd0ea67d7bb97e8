// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package chc models systems of constrained Horn clauses, their
// normalization into a canonical predicate graph, and the reduction of
// such graphs to transition systems.
package chc

import (
	"github.com/go-air/horn/logic"
	"github.com/pkg/errors"
)

// Clause is one constrained Horn clause: the conjunction of Constraint and
// BodyPreds implies Head for all free variables.
type Clause struct {
	// Head is an uninterpreted predicate application, or the false
	// constant for queries.
	Head logic.PTRef
	// BodyPreds are the uninterpreted predicate applications of the body.
	BodyPreds []logic.PTRef
	// Constraint is the background-theory part of the body.
	Constraint logic.PTRef
}

// IsLinear reports whether the clause body has at most one predicate.
func (c Clause) IsLinear() bool { return len(c.BodyPreds) <= 1 }

// IsFact reports whether the clause body has no predicates.
func (c Clause) IsFact() bool { return len(c.BodyPreds) == 0 }

// IsQuery reports whether the clause head is false.
func (c Clause) IsQuery(l *logic.Logic) bool { return l.IsFalse(c.Head) }

// System is a set of clauses over declared uninterpreted predicates.  It
// is built once and consumed by Normalize.
type System struct {
	l      *logic.Logic
	preds  []logic.SymRef
	isPred map[logic.SymRef]bool
	cls    []Clause
}

// NewSystem creates an empty system over l.
func NewSystem(l *logic.Logic) *System {
	return &System{l: l, isPred: make(map[logic.SymRef]bool)}
}

// Logic returns the owning arena.
func (s *System) Logic() *logic.Logic { return s.l }

// AddPredicate registers an uninterpreted predicate symbol.  The result
// sort must be Bool.
func (s *System) AddPredicate(sym logic.SymRef) error {
	if s.l.SymKind(sym) != logic.KUninterp || s.l.SymRet(sym) != s.l.BoolSort() {
		return errors.Errorf("chc: %s is not a predicate symbol", s.l.SymName(sym))
	}
	if !s.isPred[sym] {
		s.isPred[sym] = true
		s.preds = append(s.preds, sym)
	}
	return nil
}

// AddClause adds the clause 'constraint and bodyPreds implies head'.  The
// head must be a registered predicate application or a Bool constant, and
// every body predicate an application of a registered predicate.
func (s *System) AddClause(head, constraint logic.PTRef, bodyPreds ...logic.PTRef) error {
	l := s.l
	if !l.IsBoolConst(head) {
		if !l.IsUP(head) || !s.isPred[l.Sym(head)] {
			return errors.Errorf("chc: clause head %s is not a predicate application or constant", l.Print(head))
		}
	}
	for _, b := range bodyPreds {
		if !l.IsUP(b) || !s.isPred[l.Sym(b)] {
			return errors.Errorf("chc: body predicate %s is not a registered predicate application", l.Print(b))
		}
	}
	if !l.HasSortBool(constraint) {
		return errors.Errorf("chc: clause constraint %s is not Bool", l.Print(constraint))
	}
	cp := make([]logic.PTRef, len(bodyPreds))
	copy(cp, bodyPreds)
	s.cls = append(s.cls, Clause{Head: head, BodyPreds: cp, Constraint: constraint})
	return nil
}

// Predicates returns the registered predicates in declaration order.
func (s *System) Predicates() []logic.SymRef { return s.preds }

// Clauses returns the clauses in insertion order.
func (s *System) Clauses() []Clause { return s.cls }
