// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic

// Config drives a Rewriter.  Rewrite is applied once to every distinct
// subterm, after that subterm's children have been rewritten.  Descend
// reports whether the rewriter should visit a term's children at all; a
// config returning false keeps the term as a leaf.
type Config interface {
	Rewrite(t PTRef) PTRef
	Descend(t PTRef) bool
}

// DefaultConfig is the identity configuration, meant for embedding.
type DefaultConfig struct{}

// Rewrite returns t unchanged.
func (DefaultConfig) Rewrite(t PTRef) PTRef { return t }

// Descend always descends.
func (DefaultConfig) Descend(PTRef) bool { return true }

// Rewriter applies a Config bottom-up over a term DAG.  Every distinct
// subterm is visited at most once per Rewrite invocation; parents whose
// children did not change are not reconstructed.
type Rewriter struct {
	l   *Logic
	cfg Config
}

// NewRewriter creates a rewriter over l driven by cfg.
func NewRewriter(l *Logic, cfg Config) *Rewriter {
	return &Rewriter{l: l, cfg: cfg}
}

// Rewrite rewrites root.  The memoization cache lives only for the
// duration of the call.
func (r *Rewriter) Rewrite(root PTRef) PTRef {
	cache := make(map[PTRef]PTRef)
	return r.rw(root, cache)
}

func (r *Rewriter) rw(t PTRef, cache map[PTRef]PTRef) PTRef {
	if res, ok := cache[t]; ok {
		return res
	}
	res := t
	if r.cfg.Descend(t) && r.l.Arity(t) > 0 {
		kids := r.l.Kids(t)
		changed := false
		newKids := make([]PTRef, len(kids))
		for i, k := range kids {
			nk := r.rw(k, cache)
			newKids[i] = nk
			changed = changed || nk != k
		}
		if changed {
			res = r.l.reapply(t, newKids)
		}
	}
	res = r.cfg.Rewrite(res)
	cache[t] = res
	return res
}

// reapply rebuilds t's root symbol over new children, going through the
// simplifying constructors so rewritten terms stay canonical.
func (l *Logic) reapply(t PTRef, kids []PTRef) PTRef {
	switch l.KindOf(t) {
	case KAnd:
		return l.MkAnd(kids...)
	case KOr:
		return l.MkOr(kids...)
	case KNot:
		return l.MkNot(kids[0])
	case KEq:
		return l.MkEq(kids[0], kids[1])
	case KIte:
		return l.MkIte(kids[0], kids[1], kids[2])
	case KLeq:
		return l.MkLeq(kids[0], kids[1])
	case KLt:
		return l.MkLt(kids[0], kids[1])
	case KPlus:
		return l.MkPlus(kids...)
	case KTimes:
		return l.MkTimes(kids[0], kids[1])
	case KUninterp:
		res, err := l.MkApp(l.Sym(t), kids...)
		if err != nil {
			panic("logic: rewrite broke signature of " + l.SymNameOf(t) + ": " + err.Error())
		}
		return res
	default:
		panic("logic: cannot reapply " + l.Print(t))
	}
}

type substConfig struct {
	m map[PTRef]PTRef
}

func (c substConfig) Rewrite(t PTRef) PTRef {
	if r, ok := c.m[t]; ok {
		return r
	}
	return t
}

// Descend is false on map hits, so a matched term is replaced wholesale
// without visiting its children.
func (c substConfig) Descend(t PTRef) bool {
	_, hit := c.m[t]
	return !hit
}

// Substitutor replaces variables according to a substitution map.  All
// replacements of one Rewrite call happen simultaneously; absent entries
// are left unchanged.
type Substitutor struct {
	r *Rewriter
}

// NewSubstitutor creates a substitutor for m.  Keys must be variables.
func NewSubstitutor(l *Logic, m map[PTRef]PTRef) *Substitutor {
	for k, v := range m {
		if !l.IsVar(k) {
			panic("logic: substitution key " + l.Print(k) + " is not a variable")
		}
		if l.SortOf(k) != l.SortOf(v) {
			panic("logic: substitution changes sort of " + l.Print(k))
		}
	}
	return &Substitutor{r: NewRewriter(l, substConfig{m: m})}
}

// Rewrite applies the substitution to t.
func (s *Substitutor) Rewrite(t PTRef) PTRef {
	return s.r.Rewrite(t)
}
