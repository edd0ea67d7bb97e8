// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package parse reads the SMT-LIB 2 Horn fragment into a chc.System:
// declare-fun for the uninterpreted predicates and asserted universally
// quantified implications for the clauses.
package parse

import (
	"bufio"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-air/horn/chc"
	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

// sexp is one s-expression with its source position.
type sexp struct {
	atom      string
	list      []sexp
	line, col int
}

func (s sexp) isAtom() bool { return s.atom != "" }

func (s sexp) errf(format string, args ...interface{}) error {
	return errors.Errorf("%d:%d: "+format, append([]interface{}{s.line, s.col}, args...)...)
}

type lexer struct {
	r         *bufio.Reader
	line, col int
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1, col: 0}
}

func (lx *lexer) read() (rune, bool) {
	c, _, err := lx.r.ReadRune()
	if err != nil {
		return 0, false
	}
	if c == '\n' {
		lx.line++
		lx.col = 0
	} else {
		lx.col++
	}
	return c, true
}

func (lx *lexer) unread() {
	lx.r.UnreadRune()
	lx.col--
}

// next returns the next token, or "" at end of input.
func (lx *lexer) next() (tok string, line, col int) {
	for {
		c, ok := lx.read()
		if !ok {
			return "", lx.line, lx.col
		}
		switch {
		case c == ';':
			for {
				c, ok = lx.read()
				if !ok || c == '\n' {
					break
				}
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case c == '(' || c == ')':
			return string(c), lx.line, lx.col
		case c == '|':
			line, col = lx.line, lx.col
			var b strings.Builder
			for {
				c, ok = lx.read()
				if !ok || c == '|' {
					break
				}
				b.WriteRune(c)
			}
			return b.String(), line, col
		default:
			line, col = lx.line, lx.col
			var b strings.Builder
			b.WriteRune(c)
			for {
				c, ok = lx.read()
				if !ok {
					break
				}
				if c == '(' || c == ')' || c == ';' {
					lx.unread()
					break
				}
				if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
					break
				}
				b.WriteRune(c)
			}
			return b.String(), line, col
		}
	}
}

func (lx *lexer) sexp() (sexp, bool, error) {
	tok, line, col := lx.next()
	return lx.sexpFrom(tok, line, col)
}

func (lx *lexer) sexpFrom(tok string, line, col int) (sexp, bool, error) {
	switch tok {
	case "":
		return sexp{}, false, nil
	case ")":
		return sexp{}, false, errors.Errorf("%d:%d: unexpected )", line, col)
	case "(":
		out := sexp{line: line, col: col, list: []sexp{}}
		for {
			t, ln, cl := lx.next()
			if t == ")" {
				return out, true, nil
			}
			if t == "" {
				return sexp{}, false, errors.Errorf("%d:%d: unclosed (", line, col)
			}
			sub, _, err := lx.sexpFrom(t, ln, cl)
			if err != nil {
				return sexp{}, false, err
			}
			out.list = append(out.list, sub)
		}
	default:
		return sexp{atom: tok, line: line, col: col}, true, nil
	}
}

// parser interprets the Horn fragment.
type parser struct {
	l   *logic.Logic
	sys *chc.System
}

// System reads a Horn problem from r into a fresh system over l.  Sort
// errors the term constructors treat as programming errors are reported
// as input errors here, since the terms come from user text.
func System(r io.Reader, l *logic.Logic) (sys *chc.System, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sys, err = nil, errors.Errorf("invalid input: %v", rec)
		}
	}()
	p := &parser{l: l, sys: chc.NewSystem(l)}
	lx := newLexer(r)
	for {
		form, ok, err := lx.sexp()
		if err != nil {
			return nil, err
		}
		if !ok {
			return p.sys, nil
		}
		if err := p.command(form); err != nil {
			return nil, err
		}
	}
}

func (p *parser) command(form sexp) error {
	if form.isAtom() || len(form.list) == 0 || !form.list[0].isAtom() {
		return form.errf("expected a command")
	}
	switch head := form.list[0].atom; head {
	case "set-logic", "set-info", "set-option", "check-sat", "get-model", "exit":
		return nil
	case "declare-fun":
		return p.declareFun(form)
	case "assert":
		if len(form.list) != 2 {
			return form.errf("assert takes one formula")
		}
		return p.clause(form.list[1])
	default:
		return form.errf("unsupported command %s", head)
	}
}

// boundVar interns a quantified variable, mangling the name when it was
// already taken at a different sort in an earlier clause.
func (p *parser) boundVar(name string, srt logic.SRef) logic.PTRef {
	if prev, ok := p.l.LookupVarSort(name); ok && prev != srt {
		name = name + "!" + p.l.SortName(srt)
	}
	return p.l.MkVar(name, srt)
}

func (p *parser) sort(s sexp) (logic.SRef, error) {
	if !s.isAtom() {
		return logic.SRefUndef, s.errf("expected a sort")
	}
	return p.l.DeclareSort(s.atom), nil
}

func (p *parser) declareFun(form sexp) error {
	if len(form.list) != 4 || !form.list[1].isAtom() || form.list[2].isAtom() {
		return form.errf("declare-fun takes a name, argument sorts and a result sort")
	}
	name := form.list[1].atom
	var args []logic.SRef
	for _, a := range form.list[2].list {
		srt, err := p.sort(a)
		if err != nil {
			return err
		}
		args = append(args, srt)
	}
	ret, err := p.sort(form.list[3])
	if err != nil {
		return err
	}
	if ret != p.l.BoolSort() {
		return form.errf("declare-fun %s: Horn predicates must have result sort Bool", name)
	}
	sym, err := p.l.DeclareFun(name, args, ret)
	if err != nil {
		return errors.Wrapf(err, "%d:%d", form.line, form.col)
	}
	return p.sys.AddPredicate(sym)
}

// clause interprets an asserted formula: a universally quantified
// implication, a bare implication, a fact, or a negated body (query).
func (p *parser) clause(f sexp) error {
	env := map[string]logic.PTRef{}
	if !f.isAtom() && len(f.list) == 3 && f.list[0].isAtom() && f.list[0].atom == "forall" {
		if f.list[1].isAtom() {
			return f.errf("forall takes a binding list")
		}
		for _, b := range f.list[1].list {
			if b.isAtom() || len(b.list) != 2 || !b.list[0].isAtom() {
				return b.errf("expected a (name sort) binding")
			}
			srt, err := p.sort(b.list[1])
			if err != nil {
				return err
			}
			env[b.list[0].atom] = p.boundVar(b.list[0].atom, srt)
		}
		f = f.list[2]
	}
	var bodyS, headS *sexp
	if !f.isAtom() && len(f.list) == 3 && f.list[0].isAtom() && f.list[0].atom == "=>" {
		bodyS, headS = &f.list[1], &f.list[2]
	} else if !f.isAtom() && len(f.list) == 2 && f.list[0].isAtom() && f.list[0].atom == "not" {
		bodyS = &f.list[1]
	}

	l := p.l
	body, head := l.True(), l.False()
	var err error
	if bodyS != nil {
		if body, err = p.term(*bodyS, env); err != nil {
			return err
		}
		if headS != nil {
			if head, err = p.term(*headS, env); err != nil {
				return err
			}
		}
	} else {
		// a bare fact
		if head, err = p.term(f, env); err != nil {
			return err
		}
	}
	if !l.IsBoolConst(head) && !l.IsUP(head) {
		return f.errf("clause head %s is neither a predicate application nor a constant", l.Print(head))
	}
	var ups, rest []logic.PTRef
	for _, c := range termutil.TopLevelConjuncts(l, body) {
		if l.IsUP(c) {
			ups = append(ups, c)
		} else {
			rest = append(rest, c)
		}
	}
	if err := p.sys.AddClause(head, l.MkAnd(rest...), ups...); err != nil {
		return errors.Wrapf(err, "%d:%d", f.line, f.col)
	}
	return nil
}

func (p *parser) term(s sexp, env map[string]logic.PTRef) (logic.PTRef, error) {
	if s.isAtom() {
		return p.atomTerm(s, env)
	}
	if len(s.list) == 0 || !s.list[0].isAtom() {
		return logic.PTRefUndef, s.errf("expected a term")
	}
	op := s.list[0].atom
	if op == "let" {
		return p.letTerm(s, env)
	}
	args := make([]logic.PTRef, 0, len(s.list)-1)
	for _, a := range s.list[1:] {
		t, err := p.term(a, env)
		if err != nil {
			return logic.PTRefUndef, err
		}
		args = append(args, t)
	}
	return p.apply(s, op, args)
}

func (p *parser) atomTerm(s sexp, env map[string]logic.PTRef) (logic.PTRef, error) {
	l := p.l
	if t, ok := env[s.atom]; ok {
		return t, nil
	}
	switch s.atom {
	case "true":
		return l.True(), nil
	case "false":
		return l.False(), nil
	}
	if v, ok := new(big.Rat).SetString(s.atom); ok {
		srt := l.IntSort()
		if strings.ContainsAny(s.atom, "./") {
			srt = l.RealSort()
		}
		return l.MkNumConst(srt, v), nil
	}
	if sym, ok := l.LookupFun(s.atom); ok {
		t, err := l.MkApp(sym)
		if err != nil {
			return logic.PTRefUndef, errors.Wrapf(err, "%d:%d", s.line, s.col)
		}
		return t, nil
	}
	return logic.PTRefUndef, s.errf("unbound symbol %s", s.atom)
}

func (p *parser) letTerm(s sexp, env map[string]logic.PTRef) (logic.PTRef, error) {
	if len(s.list) != 3 || s.list[1].isAtom() {
		return logic.PTRefUndef, s.errf("let takes a binding list and a body")
	}
	inner := make(map[string]logic.PTRef, len(env)+len(s.list[1].list))
	for k, v := range env {
		inner[k] = v
	}
	for _, b := range s.list[1].list {
		if b.isAtom() || len(b.list) != 2 || !b.list[0].isAtom() {
			return logic.PTRefUndef, b.errf("expected a (name term) binding")
		}
		t, err := p.term(b.list[1], env) // parallel let: outer scope
		if err != nil {
			return logic.PTRefUndef, err
		}
		inner[b.list[0].atom] = t
	}
	return p.term(s.list[2], inner)
}

// unify re-interns Int constants at Real when mixed with Real operands,
// since SMT-LIB numerals take their sort from context.
func (p *parser) unify(args []logic.PTRef) []logic.PTRef {
	l := p.l
	real := false
	for _, a := range args {
		if l.SortOf(a) == l.RealSort() {
			real = true
			break
		}
	}
	if !real {
		return args
	}
	out := make([]logic.PTRef, len(args))
	for i, a := range args {
		if l.IsNumConst(a) && l.SortOf(a) == l.IntSort() {
			out[i] = l.MkNumConst(l.RealSort(), l.NumValue(a))
		} else {
			out[i] = a
		}
	}
	return out
}

func (p *parser) apply(s sexp, op string, args []logic.PTRef) (logic.PTRef, error) {
	l := p.l
	chain := func(mk func(a, b logic.PTRef) logic.PTRef) (logic.PTRef, error) {
		if len(args) < 2 {
			return logic.PTRefUndef, s.errf("%s takes at least two arguments", op)
		}
		args = p.unify(args)
		out := make([]logic.PTRef, 0, len(args)-1)
		for i := 0; i+1 < len(args); i++ {
			out = append(out, mk(args[i], args[i+1]))
		}
		return l.MkAnd(out...), nil
	}
	switch op {
	case "and":
		return l.MkAnd(args...), nil
	case "or":
		return l.MkOr(args...), nil
	case "not":
		if len(args) != 1 {
			return logic.PTRefUndef, s.errf("not takes one argument")
		}
		return l.MkNot(args[0]), nil
	case "=>":
		if len(args) < 2 {
			return logic.PTRefUndef, s.errf("=> takes at least two arguments")
		}
		out := args[len(args)-1]
		for i := len(args) - 2; i >= 0; i-- {
			out = l.MkImplies(args[i], out)
		}
		return out, nil
	case "ite":
		if len(args) != 3 {
			return logic.PTRefUndef, s.errf("ite takes three arguments")
		}
		args = append(args[:1], p.unify(args[1:])...)
		return l.MkIte(args[0], args[1], args[2]), nil
	case "=":
		return chain(l.MkEq)
	case "<=":
		return chain(l.MkLeq)
	case "<":
		return chain(l.MkLt)
	case ">=":
		return chain(l.MkGeq)
	case ">":
		return chain(l.MkGt)
	case "+":
		if len(args) == 0 {
			return logic.PTRefUndef, s.errf("+ takes arguments")
		}
		return l.MkPlus(p.unify(args)...), nil
	case "-":
		if len(args) == 1 {
			return l.MkNeg(args[0]), nil
		}
		if len(args) == 0 {
			return logic.PTRefUndef, s.errf("- takes arguments")
		}
		args = p.unify(args)
		out := args[0]
		for _, a := range args[1:] {
			out = l.MkMinus(out, a)
		}
		return out, nil
	case "*":
		if len(args) != 2 {
			return logic.PTRefUndef, s.errf("* takes two arguments")
		}
		args = p.unify(args)
		return l.MkTimes(args[0], args[1]), nil
	case "/":
		if len(args) != 2 || !l.IsNumConst(args[0]) || !l.IsNumConst(args[1]) {
			return logic.PTRefUndef, s.errf("/ is only supported on constants")
		}
		v := l.NumValue(args[0])
		d := l.NumValue(args[1])
		if d.Sign() == 0 {
			return logic.PTRefUndef, s.errf("division by zero")
		}
		return l.MkNumConst(l.RealSort(), v.Quo(v, d)), nil
	}
	sym, ok := l.LookupFun(op)
	if !ok {
		return logic.PTRefUndef, s.errf("unbound symbol %s", op)
	}
	t, err := l.MkApp(sym, args...)
	if err != nil {
		return logic.PTRefUndef, errors.Wrapf(err, "%d:%d", s.line, s.col)
	}
	return t, nil
}
