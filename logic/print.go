// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package logic

import (
	"strconv"
	"strings"
)

// Print serializes t as an SMT-LIB s-expression.
func (l *Logic) Print(t PTRef) string {
	var b strings.Builder
	l.print(&b, t, nil)
	return b.String()
}

func (l *Logic) print(b *strings.Builder, t PTRef, lets map[PTRef]string) {
	if name, ok := lets[t]; ok {
		b.WriteString(name)
		return
	}
	switch l.KindOf(t) {
	case KNum:
		l.printNum(b, t)
		return
	}
	if l.Arity(t) == 0 {
		b.WriteString(l.SymNameOf(t))
		return
	}
	b.WriteByte('(')
	b.WriteString(l.SymNameOf(t))
	for _, k := range l.Kids(t) {
		b.WriteByte(' ')
		l.print(b, k, lets)
	}
	b.WriteByte(')')
}

func (l *Logic) printNum(b *strings.Builder, t PTRef) {
	v := l.NumValue(t)
	neg := v.Sign() < 0
	if neg {
		v.Neg(v)
		b.WriteString("(- ")
	}
	if v.IsInt() {
		b.WriteString(v.Num().String())
	} else {
		b.WriteString("(/ ")
		b.WriteString(v.Num().String())
		b.WriteByte(' ')
		b.WriteString(v.Denom().String())
		b.WriteByte(')')
	}
	if neg {
		b.WriteByte(')')
	}
}

// PrintWithLets serializes t with let-bindings for shared subterms: a first
// pass counts references, and every compound term referenced more than once
// is bound to a fresh name, children before parents.
func (l *Logic) PrintWithLets(t PTRef) string {
	counts := make(map[PTRef]int)
	var topo []PTRef
	var count func(t PTRef)
	count = func(t PTRef) {
		counts[t]++
		if counts[t] > 1 {
			return
		}
		for _, k := range l.Kids(t) {
			count(k)
		}
		topo = append(topo, t) // children first
	}
	count(t)

	lets := make(map[PTRef]string)
	var b strings.Builder
	opened := 0
	for _, s := range topo {
		if s == t || counts[s] < 2 || l.Arity(s) == 0 {
			continue
		}
		name := "?def" + strconv.Itoa(len(lets))
		b.WriteString("(let ((")
		b.WriteString(name)
		b.WriteByte(' ')
		l.print(&b, s, lets)
		b.WriteString(")) ")
		lets[s] = name
		opened++
	}
	l.print(&b, t, lets)
	for i := 0; i < opened; i++ {
		b.WriteByte(')')
	}
	return b.String()
}
