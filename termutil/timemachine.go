// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package termutil

import (
	"strconv"
	"strings"

	"github.com/go-air/horn/logic"
)

// versionSeparator splits a variable name from its version number.  The
// mangled name is what crosses the SMT boundary, so any backend that
// understands plain symbol names sees distinct variables per time step.
const versionSeparator = "##"

// TimeMachine shifts variables through time by rewriting the version
// suffix of their names.  Version 0 is the current state, version 1 the
// next state.
type TimeMachine struct {
	l *logic.Logic
}

// NewTimeMachine creates a time machine over l.
func NewTimeMachine(l *logic.Logic) *TimeMachine {
	return &TimeMachine{l: l}
}

// IsVersioned reports whether the variable v carries a version suffix.
func (tm *TimeMachine) IsVersioned(v logic.PTRef) bool {
	if !tm.l.IsVar(v) {
		panic("timemachine: not a variable: " + tm.l.Print(v))
	}
	return strings.Contains(tm.l.SymNameOf(v), versionSeparator)
}

// VersionNumber returns the version of a versioned variable.
func (tm *TimeMachine) VersionNumber(v logic.PTRef) int {
	_, ver := tm.split(v)
	return ver
}

func (tm *TimeMachine) split(v logic.PTRef) (string, int) {
	if !tm.IsVersioned(v) {
		panic("timemachine: unversioned variable: " + tm.l.Print(v))
	}
	name := tm.l.SymNameOf(v)
	i := strings.LastIndex(name, versionSeparator)
	ver, err := strconv.Atoi(name[i+len(versionSeparator):])
	if err != nil {
		panic("timemachine: malformed version suffix in " + name)
	}
	return name[:i], ver
}

// VarVersionZero returns the version-0 copy of an unversioned variable.
func (tm *TimeMachine) VarVersionZero(v logic.PTRef) logic.PTRef {
	if tm.IsVersioned(v) {
		panic("timemachine: already versioned: " + tm.l.Print(v))
	}
	name := tm.l.SymNameOf(v) + versionSeparator + "0"
	return tm.l.MkVar(name, tm.l.SortOf(v))
}

// SendVarThroughTime returns the copy of a versioned variable shifted by
// steps, which may be negative.
func (tm *TimeMachine) SendVarThroughTime(v logic.PTRef, steps int) logic.PTRef {
	base, ver := tm.split(v)
	return tm.l.MkVar(base+versionSeparator+strconv.Itoa(ver+steps), tm.l.SortOf(v))
}

type versioningConfig struct {
	logic.DefaultConfig
	tm    *TimeMachine
	steps int
}

func (c versioningConfig) Rewrite(t logic.PTRef) logic.PTRef {
	if c.tm.l.IsVar(t) {
		return c.tm.SendVarThroughTime(t, c.steps)
	}
	return t
}

// SendThroughTime shifts every free variable of f by steps, leaving
// non-variable leaves untouched.  Shifting by 0 is the identity.
func (tm *TimeMachine) SendThroughTime(f logic.PTRef, steps int) logic.PTRef {
	if steps == 0 {
		return f
	}
	r := logic.NewRewriter(tm.l, versioningConfig{tm: tm, steps: steps})
	return r.Rewrite(f)
}
