// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package logic implements a hash-consed term layer for first order
// formulas over linear arithmetic and uninterpreted predicates, together
// with a generic bottom-up rewriter and a negation normal form transform.
//
// All terms live in an arena owned by a Logic and are addressed by small
// opaque handles.  Two structurally equal terms always share one handle, so
// handle comparison is structural comparison and handles hash in O(1).
package logic

import (
	"math/big"

	"github.com/pkg/errors"
)

// PTRef is a handle to an interned term.
type PTRef uint32

// SRef is a handle to a declared sort.
type SRef uint32

// SymRef is a handle to a declared symbol.
type SymRef uint32

// PTRefUndef denotes "no term".  It is never a valid handle.
const PTRefUndef PTRef = 0

// SRefUndef denotes "no sort".
const SRefUndef SRef = 0

// SymRefUndef denotes "no symbol".
const SymRefUndef SymRef = 0

// Kind discriminates the symbol alphabet.
type Kind uint8

const (
	KUninterp Kind = iota // declared function or predicate symbol
	KVar
	KTrue
	KFalse
	KNum
	KAnd
	KOr
	KNot
	KEq
	KIte
	KLeq
	KLt
	KPlus
	KTimes
)

type sortRec struct {
	name string
}

type symRec struct {
	name string
	kind Kind
	args []SRef
	ret  SRef
}

// A pterm is one arena node: a symbol applied to interned children.
// next chains nodes hashing to the same strash bucket.
type pterm struct {
	sym  SymRef
	kids []PTRef
	next uint32
}

type varKey struct {
	name string
	sort SRef
}

// Logic owns the term arena.  It is not safe for concurrent mutation: a
// Logic must not be mutated from several goroutines at once.
type Logic struct {
	sorts   []sortRec
	sortIdx map[string]SRef

	syms   []symRec
	varIdx map[varKey]SymRef
	funIdx map[string]SymRef

	nums   map[SymRef]*big.Rat
	numIdx map[string]SymRef

	terms  []pterm
	strash []uint32

	boolS, intS, realS SRef

	symTrue, symFalse     SymRef
	symAnd, symOr, symNot SymRef
	symEq, symIte         SymRef
	symLeq, symLt         SymRef
	symPlus, symTimes     SymRef
	ptTrue, ptFalse       PTRef
}

// New creates an empty Logic with the built-in sorts Bool, Int and Real.
func New() *Logic {
	l := &Logic{
		sortIdx: make(map[string]SRef),
		varIdx:  make(map[varKey]SymRef),
		funIdx:  make(map[string]SymRef),
		nums:    make(map[SymRef]*big.Rat),
		numIdx:  make(map[string]SymRef),
		terms:   make([]pterm, 1, 128),
		strash:  make([]uint32, 128),
	}
	l.sorts = append(l.sorts, sortRec{}) // index 0 reserved
	l.syms = append(l.syms, symRec{})    // index 0 reserved
	l.boolS = l.DeclareSort("Bool")
	l.intS = l.DeclareSort("Int")
	l.realS = l.DeclareSort("Real")
	l.symTrue = l.newSym("true", KTrue, nil, l.boolS)
	l.symFalse = l.newSym("false", KFalse, nil, l.boolS)
	l.symAnd = l.newSym("and", KAnd, nil, l.boolS)
	l.symOr = l.newSym("or", KOr, nil, l.boolS)
	l.symNot = l.newSym("not", KNot, nil, l.boolS)
	l.symEq = l.newSym("=", KEq, nil, l.boolS)
	l.symIte = l.newSym("ite", KIte, nil, SRefUndef)
	l.symLeq = l.newSym("<=", KLeq, nil, l.boolS)
	l.symLt = l.newSym("<", KLt, nil, l.boolS)
	l.symPlus = l.newSym("+", KPlus, nil, SRefUndef)
	l.symTimes = l.newSym("*", KTimes, nil, SRefUndef)
	l.ptTrue = l.app(l.symTrue, nil)
	l.ptFalse = l.app(l.symFalse, nil)
	return l
}

func (l *Logic) newSym(name string, kind Kind, args []SRef, ret SRef) SymRef {
	id := SymRef(len(l.syms))
	l.syms = append(l.syms, symRec{name: name, kind: kind, args: args, ret: ret})
	return id
}

// BoolSort returns the handle of the built-in Bool sort.
func (l *Logic) BoolSort() SRef { return l.boolS }

// IntSort returns the handle of the built-in Int sort.
func (l *Logic) IntSort() SRef { return l.intS }

// RealSort returns the handle of the built-in Real sort.
func (l *Logic) RealSort() SRef { return l.realS }

// DeclareSort interns a sort by name, returning the existing handle on
// redeclaration.
func (l *Logic) DeclareSort(name string) SRef {
	if s, ok := l.sortIdx[name]; ok {
		return s
	}
	id := SRef(len(l.sorts))
	l.sorts = append(l.sorts, sortRec{name: name})
	l.sortIdx[name] = id
	return id
}

// SortName returns the name under which s was declared.
func (l *Logic) SortName(s SRef) string { return l.sorts[s].name }

// IsNumericSort reports whether s is Int or Real.
func (l *Logic) IsNumericSort(s SRef) bool { return s == l.intS || s == l.realS }

// DeclareFun interns an uninterpreted symbol with the given signature.
// Redeclaring with an identical signature returns the existing handle;
// a conflicting signature is an error.
func (l *Logic) DeclareFun(name string, args []SRef, ret SRef) (SymRef, error) {
	if name == "" {
		return SymRefUndef, errors.New("declare-fun: empty symbol name")
	}
	if sym, ok := l.funIdx[name]; ok {
		rec := &l.syms[sym]
		if rec.ret != ret || len(rec.args) != len(args) {
			return SymRefUndef, errors.Errorf("declare-fun: %s redeclared with a different signature", name)
		}
		for i := range args {
			if rec.args[i] != args[i] {
				return SymRefUndef, errors.Errorf("declare-fun: %s redeclared with a different signature", name)
			}
		}
		return sym, nil
	}
	cp := make([]SRef, len(args))
	copy(cp, args)
	sym := l.newSym(name, KUninterp, cp, ret)
	l.funIdx[name] = sym
	return sym, nil
}

// LookupVarSort returns the sort under which a variable named name was
// interned, if any.
func (l *Logic) LookupVarSort(name string) (SRef, bool) {
	for k := range l.varIdx {
		if k.name == name {
			return k.sort, true
		}
	}
	return SRefUndef, false
}

// LookupFun returns the uninterpreted symbol declared under name.
func (l *Logic) LookupFun(name string) (SymRef, bool) {
	sym, ok := l.funIdx[name]
	return sym, ok
}

// SymName returns the declared name of sym.
func (l *Logic) SymName(sym SymRef) string { return l.syms[sym].name }

// SymRet returns the result sort of sym.
func (l *Logic) SymRet(sym SymRef) SRef { return l.syms[sym].ret }

// SymArity returns the declared argument count of sym.  Only meaningful for
// uninterpreted symbols and variables.
func (l *Logic) SymArity(sym SymRef) int { return len(l.syms[sym].args) }

// SymArgSorts returns the declared argument sorts of sym.  The returned
// slice must not be modified.
func (l *Logic) SymArgSorts(sym SymRef) []SRef { return l.syms[sym].args }

// SymKind returns the kind of sym.
func (l *Logic) SymKind(sym SymRef) Kind { return l.syms[sym].kind }

// interning

func hashApp(sym SymRef, kids []PTRef) uint32 {
	h := uint32(sym) * 2654435761
	for _, k := range kids {
		h = (h ^ uint32(k)) * 16777619
	}
	return h
}

// app interns the application of sym to kids.
func (l *Logic) app(sym SymRef, kids []PTRef) PTRef {
	h := hashApp(sym, kids)
	i := h % uint32(len(l.strash))
	for t := l.strash[i]; t != 0; {
		n := &l.terms[t]
		if n.sym == sym && kidsEqual(n.kids, kids) {
			return PTRef(t)
		}
		t = n.next
	}
	if len(l.terms) >= len(l.strash) {
		l.grow()
		i = h % uint32(len(l.strash))
	}
	id := uint32(len(l.terms))
	cp := make([]PTRef, len(kids))
	copy(cp, kids)
	l.terms = append(l.terms, pterm{sym: sym, kids: cp, next: l.strash[i]})
	l.strash[i] = id
	return PTRef(id)
}

func kidsEqual(a, b []PTRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (l *Logic) grow() {
	strash := make([]uint32, len(l.strash)*2)
	u := uint32(len(strash))
	for t := 1; t < len(l.terms); t++ {
		n := &l.terms[t]
		i := hashApp(n.sym, n.kids) % u
		n.next = strash[i]
		strash[i] = uint32(t)
	}
	l.strash = strash
}

// MkVar interns a variable with the given name and sort.  The same
// (name, sort) pair always yields the same handle; reusing a name with a
// different sort panics.
func (l *Logic) MkVar(name string, sort SRef) PTRef {
	if name == "" {
		panic("logic: empty variable name")
	}
	key := varKey{name: name, sort: sort}
	if sym, ok := l.varIdx[key]; ok {
		return l.app(sym, nil)
	}
	for s := range l.varIdx {
		if s.name == name && s.sort != sort {
			panic("logic: variable " + name + " redeclared with a different sort")
		}
	}
	sym := l.newSym(name, KVar, nil, sort)
	l.varIdx[key] = sym
	return l.app(sym, nil)
}

// MkBoolVar interns a Bool-sorted variable.
func (l *Logic) MkBoolVar(name string) PTRef { return l.MkVar(name, l.boolS) }

// MkNumConst interns a numeric constant of the given sort.  Rationals are
// kept in lowest terms by big.Rat; an Int-sorted non-integer panics.
func (l *Logic) MkNumConst(sort SRef, v *big.Rat) PTRef {
	if !l.IsNumericSort(sort) {
		panic("logic: numeric constant of non-numeric sort " + l.SortName(sort))
	}
	if sort == l.intS && !v.IsInt() {
		panic("logic: non-integer constant " + v.RatString() + " of sort Int")
	}
	key := l.SortName(sort) + " " + v.RatString()
	if sym, ok := l.numIdx[key]; ok {
		return l.app(sym, nil)
	}
	sym := l.newSym(v.RatString(), KNum, nil, sort)
	l.numIdx[key] = sym
	l.nums[sym] = new(big.Rat).Set(v)
	return l.app(sym, nil)
}

// MkIntConst interns an Int constant.
func (l *Logic) MkIntConst(v int64) PTRef {
	return l.MkNumConst(l.intS, new(big.Rat).SetInt64(v))
}

// Zero returns the zero constant of a numeric sort.
func (l *Logic) Zero(sort SRef) PTRef { return l.MkNumConst(sort, new(big.Rat)) }

// NumValue returns the value of a numeric constant.  The result is a copy.
func (l *Logic) NumValue(t PTRef) *big.Rat {
	if !l.IsNumConst(t) {
		panic("logic: NumValue of non-constant " + l.Print(t))
	}
	return new(big.Rat).Set(l.nums[l.terms[t].sym])
}

// MkApp builds the application of an uninterpreted symbol, checking the
// arity and the argument sorts against the declared signature.
func (l *Logic) MkApp(sym SymRef, kids ...PTRef) (PTRef, error) {
	rec := &l.syms[sym]
	if rec.kind != KUninterp {
		return PTRefUndef, errors.Errorf("MkApp: %s is not an uninterpreted symbol", rec.name)
	}
	if len(kids) != len(rec.args) {
		return PTRefUndef, errors.Errorf("MkApp: %s expects %d arguments, got %d", rec.name, len(rec.args), len(kids))
	}
	for i, k := range kids {
		if l.SortOf(k) != rec.args[i] {
			return PTRefUndef, errors.Errorf("MkApp: argument %d of %s has sort %s, want %s",
				i, rec.name, l.SortName(l.SortOf(k)), l.SortName(rec.args[i]))
		}
	}
	return l.app(sym, kids), nil
}

// True returns the true constant.
func (l *Logic) True() PTRef { return l.ptTrue }

// False returns the false constant.
func (l *Logic) False() PTRef { return l.ptFalse }

// term queries

// Sym returns the symbol at the root of t.
func (l *Logic) Sym(t PTRef) SymRef { return l.terms[t].sym }

// KindOf returns the kind of t's root symbol.
func (l *Logic) KindOf(t PTRef) Kind { return l.syms[l.terms[t].sym].kind }

// Arity returns the number of children of t.
func (l *Logic) Arity(t PTRef) int { return len(l.terms[t].kids) }

// Kid returns the i'th child of t.
func (l *Logic) Kid(t PTRef, i int) PTRef { return l.terms[t].kids[i] }

// Kids returns the children of t.  The returned slice is owned by the
// arena and must not be modified.
func (l *Logic) Kids(t PTRef) []PTRef { return l.terms[t].kids }

// SymNameOf returns the name of t's root symbol.
func (l *Logic) SymNameOf(t PTRef) string { return l.syms[l.terms[t].sym].name }

// IsVar reports whether t is a variable.
func (l *Logic) IsVar(t PTRef) bool { return l.KindOf(t) == KVar }

// IsAnd reports whether t is a conjunction.
func (l *Logic) IsAnd(t PTRef) bool { return l.KindOf(t) == KAnd }

// IsOr reports whether t is a disjunction.
func (l *Logic) IsOr(t PTRef) bool { return l.KindOf(t) == KOr }

// IsNot reports whether t is a negation.
func (l *Logic) IsNot(t PTRef) bool { return l.KindOf(t) == KNot }

// IsEq reports whether t is an equality.
func (l *Logic) IsEq(t PTRef) bool { return l.KindOf(t) == KEq }

// IsIte reports whether t is an if-then-else.
func (l *Logic) IsIte(t PTRef) bool { return l.KindOf(t) == KIte }

// IsLeq reports whether t is a non-strict inequality.
func (l *Logic) IsLeq(t PTRef) bool { return l.KindOf(t) == KLeq }

// IsLt reports whether t is a strict inequality.
func (l *Logic) IsLt(t PTRef) bool { return l.KindOf(t) == KLt }

// IsPlus reports whether t is a sum.
func (l *Logic) IsPlus(t PTRef) bool { return l.KindOf(t) == KPlus }

// IsTimes reports whether t is a product.
func (l *Logic) IsTimes(t PTRef) bool { return l.KindOf(t) == KTimes }

// IsNumConst reports whether t is a numeric constant.
func (l *Logic) IsNumConst(t PTRef) bool { return l.KindOf(t) == KNum }

// IsTrue reports whether t is the true constant.
func (l *Logic) IsTrue(t PTRef) bool { return t == l.ptTrue }

// IsFalse reports whether t is the false constant.
func (l *Logic) IsFalse(t PTRef) bool { return t == l.ptFalse }

// IsBoolConst reports whether t is true or false.
func (l *Logic) IsBoolConst(t PTRef) bool { return t == l.ptTrue || t == l.ptFalse }

// IsUP reports whether t is an application of an uninterpreted predicate,
// that is, of a declared symbol with Bool result sort.
func (l *Logic) IsUP(t PTRef) bool {
	return l.KindOf(t) == KUninterp && l.SymRet(l.Sym(t)) == l.boolS
}

// IsUninterpApp reports whether t's root symbol is uninterpreted.
func (l *Logic) IsUninterpApp(t PTRef) bool { return l.KindOf(t) == KUninterp }

// SortOf returns the sort of t.
func (l *Logic) SortOf(t PTRef) SRef {
	switch l.KindOf(t) {
	case KUninterp, KVar, KNum:
		return l.SymRet(l.Sym(t))
	case KIte:
		return l.SortOf(l.Kid(t, 1))
	case KPlus, KTimes:
		return l.SortOf(l.Kid(t, 0))
	default:
		return l.boolS
	}
}

// HasSortBool reports whether t is Bool sorted.
func (l *Logic) HasSortBool(t PTRef) bool { return l.SortOf(t) == l.boolS }
