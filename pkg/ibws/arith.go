// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ibws

import (
	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// NumberRelationShiftSkewed shifts one side of an integer comparison chain
// (< t1 ... tn) by a random amount.  When weakening, either the lower side is
// shifted down or the upper side is shifted up.  When strengthening, the
// opposite happens.
type NumberRelationShiftSkewed struct{}

// MatchesLHS implementation for Sides interface.
func (NumberRelationShiftSkewed) MatchesLHS(env *Env, term TermID) bool {
	return isIntComparison(env.arena, term)
}

// MatchesRHS implementation for Sides interface.
func (NumberRelationShiftSkewed) MatchesRHS(env *Env, term TermID) bool {
	return isIntComparison(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (p NumberRelationShiftSkewed) ToRHS(env *Env, term TermID) {
	p.shift(env, term, WEAKENING)
}

// ToLHS implementation for Sides interface.
func (p NumberRelationShiftSkewed) ToLHS(env *Env, term TermID) {
	p.shift(env, term, STRENGTHENING)
}

func (NumberRelationShiftSkewed) shift(env *Env, term TermID, dir Direction) {
	var (
		a        = env.arena
		args     = a.Args(term)
		amount   = env.RandomValue(smt.IntSort, "")
		plus     = env.rand.IntN(2) == 0
		split    = 1 + env.rand.IntN(len(args)-1)
		lowSide  = env.rand.IntN(2) == 0
		low      = args[:split]
		high     = args[split:]
		operator = "-"
	)
	//
	if plus {
		operator = "+"
	}
	// Descending chains have their low side on the right
	if a.IsOp(term, ">", ">=") {
		low, high = high, low
	}
	// Moving the low side down (or the high side up) weakens
	target := high
	if lowSide {
		target = low
	}
	//
	nonneg := plus != lowSide
	if dir == STRENGTHENING {
		nonneg = !nonneg
	}
	//
	for _, t := range target {
		wrap(a, t, operator, smt.IntSort, signed(a, a.Copy(amount), nonneg))
	}
}

// Construct (abs t) or (- (abs t)).
func signed(a *smt.Arena, t TermID, nonneg bool) TermID {
	abs := a.App("abs", smt.IntSort, t)
	//
	if nonneg {
		return abs
	}
	//
	return a.App("-", smt.IntSort, abs)
}

// NumberRelationShiftBalanced shifts every side of an integer comparison by
// the same random amount, e.g. (< x y) <==> (< (+ x 3) (+ y 3)).
type NumberRelationShiftBalanced struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (NumberRelationShiftBalanced) MatchesLHS(env *Env, term TermID) bool {
	a := env.arena
	return isOpOver(a, term, smt.IntSort, ">", ">=", "=", "<", "<=", "distinct")
}

// ToRHS implementation for Sides interface.
func (NumberRelationShiftBalanced) ToRHS(env *Env, term TermID) {
	var (
		a        = env.arena
		amount   = env.RandomValue(smt.IntSort, "")
		operator = "-"
	)
	//
	if env.rand.IntN(2) == 0 {
		operator = "+"
	}
	//
	for _, t := range a.Args(term) {
		wrap(a, t, operator, smt.IntSort, a.Copy(amount))
	}
}

func isIntComparison(a *smt.Arena, term TermID) bool {
	return isOpOver(a, term, smt.IntSort, ">", ">=", "<", "<=") && a.Arity(term) >= 2
}
