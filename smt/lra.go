// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package smt

import (
	"math/big"

	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/termutil"
)

// linCons is the constraint 'lt <= 0', or 'lt < 0' when strict.
type linCons struct {
	lt     termutil.LinTerm
	strict bool
}

// laFeasible decides satisfiability of a conjunction of linear constraints
// and disequalities over the rationals.  Disequalities are split into the
// two strict halves; the remaining system goes through Fourier-Motzkin.
func laFeasible(cons []linCons, diseqs []termutil.LinTerm) bool {
	if len(diseqs) == 0 {
		return fmFeasible(cons)
	}
	d := diseqs[0]
	rest := diseqs[1:]
	if len(d.Coef) == 0 {
		if d.Const.Sign() == 0 {
			return false
		}
		return laFeasible(cons, rest)
	}
	below := append(append([]linCons{}, cons...), linCons{lt: d, strict: true})
	if laFeasible(below, rest) {
		return true
	}
	above := append(append([]linCons{}, cons...), linCons{lt: negLin(d), strict: true})
	return laFeasible(above, rest)
}

func negLin(lt termutil.LinTerm) termutil.LinTerm {
	out := termutil.LinTerm{Const: new(big.Rat).Neg(lt.Const), Coef: make(map[logic.PTRef]*big.Rat, len(lt.Coef))}
	for leaf, c := range lt.Coef {
		out.Coef[leaf] = new(big.Rat).Neg(c)
	}
	return out
}

// fmFeasible runs Fourier-Motzkin elimination.  Constraints are treated as
// immutable; every combination allocates fresh rationals.
func fmFeasible(cons []linCons) bool {
	for {
		var rows []linCons
		var pivot logic.PTRef
		for _, c := range cons {
			if len(c.lt.Coef) == 0 {
				sign := c.lt.Const.Sign()
				if sign > 0 || (sign == 0 && c.strict) {
					return false
				}
				continue
			}
			if pivot == logic.PTRefUndef {
				for leaf := range c.lt.Coef {
					if pivot == logic.PTRefUndef || leaf < pivot {
						pivot = leaf
					}
				}
			}
			rows = append(rows, c)
		}
		if pivot == logic.PTRefUndef {
			return true
		}
		var lowers, uppers, rest []linCons
		for _, c := range rows {
			k := c.lt.Coef[pivot]
			switch {
			case k == nil:
				rest = append(rest, c)
			case k.Sign() > 0:
				uppers = append(uppers, c)
			default:
				lowers = append(lowers, c)
			}
		}
		next := rest
		for _, lo := range lowers {
			for _, up := range uppers {
				next = append(next, combine(up, lo, pivot))
			}
		}
		cons = next
	}
}

// combine eliminates v from an upper row 'a*v + P <= 0' (a > 0) and a
// lower row 'b*v + Q <= 0' (b < 0), yielding '(-b)*P + a*Q <= 0'.
func combine(up, lo linCons, v logic.PTRef) linCons {
	a := up.lt.Coef[v]
	nb := new(big.Rat).Neg(lo.lt.Coef[v])
	out := termutil.LinTerm{Const: new(big.Rat), Coef: make(map[logic.PTRef]*big.Rat)}
	addScaled := func(lt termutil.LinTerm, scale *big.Rat) {
		out.Const.Add(out.Const, new(big.Rat).Mul(lt.Const, scale))
		for leaf, c := range lt.Coef {
			if leaf == v {
				continue
			}
			acc := out.Coef[leaf]
			if acc == nil {
				acc = new(big.Rat)
				out.Coef[leaf] = acc
			}
			acc.Add(acc, new(big.Rat).Mul(c, scale))
			if acc.Sign() == 0 {
				delete(out.Coef, leaf)
			}
		}
	}
	addScaled(up.lt, nb)
	addScaled(lo.lt, a)
	return linCons{lt: out, strict: up.strict || lo.strict}
}
