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

// Rule is a named rewrite which can be applied to a term in a given
// direction.  Rules hold no per-session state, instead everything they need
// is supplied through the environment.
type Rule interface {
	// Name returns the catalog name of this rule.
	Name() string
	// IsApplicable checks whether this rule can rewrite a given term in a
	// given direction.
	IsApplicable(env *Env, term TermID, dir Direction) bool
	// Apply rewrites a given term in place.  This should only be called for
	// terms where IsApplicable holds for the same direction.
	Apply(env *Env, term TermID, dir Direction)
}

// Sides describes a rewrite between two shapes of term, a left-hand side and
// a right-hand side.  ToRHS is only called on terms matching the left-hand
// side, and ToLHS only on terms matching the right-hand side.
type Sides interface {
	MatchesLHS(env *Env, term TermID) bool
	MatchesRHS(env *Env, term TermID) bool
	ToLHS(env *Env, term TermID)
	ToRHS(env *Env, term TermID)
}

// leftOnly can be embedded by rewrites which are only supported from left to
// right.
type leftOnly struct{}

func (leftOnly) MatchesRHS(*Env, TermID) bool { return false }

func (leftOnly) ToLHS(*Env, TermID) {}

// rightOnly can be embedded by rewrites which are only supported from right to
// left.
type rightOnly struct{}

func (rightOnly) MatchesLHS(*Env, TermID) bool { return false }

func (rightOnly) ToRHS(*Env, TermID) {}

// ============================================================================
// Implication
// ============================================================================

// Implication is a rule of the form LHS ==> RHS.  Weakening rewrites an LHS
// into an RHS, whilst strengthening rewrites an RHS into an LHS.
type Implication struct {
	name    string
	sides   Sides
	nonBool bool
}

// NewImplication constructs an implication rule which only applies to
// formulas.
func NewImplication(name string, sides Sides) *Implication {
	return &Implication{name, sides, false}
}

// Name implementation for Rule interface.
func (p *Implication) Name() string {
	return p.name
}

// Sides returns the underlying rewrite.
func (p *Implication) Sides() Sides {
	return p.sides
}

// IsApplicable implementation for Rule interface.
func (p *Implication) IsApplicable(env *Env, term TermID, dir Direction) bool {
	if !p.nonBool && env.arena.Sort(term) != smt.BoolSort {
		return false
	}
	//
	return (dir == WEAKENING && p.sides.MatchesLHS(env, term)) ||
		(dir == STRENGTHENING && p.sides.MatchesRHS(env, term))
}

// Apply implementation for Rule interface.
func (p *Implication) Apply(env *Env, term TermID, dir Direction) {
	switch dir {
	case WEAKENING:
		p.sides.ToRHS(env, term)
	case STRENGTHENING:
		p.sides.ToLHS(env, term)
	}
}

// ============================================================================
// Equivalence
// ============================================================================

// Equivalence is a rule of the form LHS <==> RHS, which is applicable in
// either direction.
type Equivalence struct {
	name    string
	sides   Sides
	nonBool bool
}

// NewEquivalence constructs an equivalence rule which only applies to
// formulas.
func NewEquivalence(name string, sides Sides) *Equivalence {
	return &Equivalence{name, sides, false}
}

// NewEquality constructs an equivalence rule which applies to terms of any
// sort.
func NewEquality(name string, sides Sides) *Equivalence {
	return &Equivalence{name, sides, true}
}

// Name implementation for Rule interface.
func (p *Equivalence) Name() string {
	return p.name
}

// Sides returns the underlying rewrite.
func (p *Equivalence) Sides() Sides {
	return p.sides
}

// IsApplicable implementation for Rule interface.
func (p *Equivalence) IsApplicable(env *Env, term TermID, _ Direction) bool {
	if !p.nonBool && env.arena.Sort(term) != smt.BoolSort {
		return false
	}
	//
	return p.sides.MatchesLHS(env, term) || p.sides.MatchesRHS(env, term)
}

// Apply implementation for Rule interface.
func (p *Equivalence) Apply(env *Env, term TermID, _ Direction) {
	if p.sides.MatchesLHS(env, term) {
		p.sides.ToRHS(env, term)
	} else if p.sides.MatchesRHS(env, term) {
		p.sides.ToLHS(env, term)
	}
}

// ============================================================================
// Helpers
// ============================================================================

// Wrap a term in place, such that the term itself becomes the first argument of
// a new application.  The remaining arguments are given by others.
func wrap(a *smt.Arena, term TermID, op string, sort smt.Sort, others ...TermID) TermID {
	inner := a.Relocate(term)
	args := append([]TermID{inner}, others...)
	a.Set(term, smt.Node{Kind: smt.ApplyTerm, Op: op, Args: args, Sort: sort})
	//
	return inner
}

// Turn a term in place into a quantified formula over a given body.
func quantify(a *smt.Arena, term TermID, quantifier string, bound []smt.Binder, body TermID) {
	a.Set(term, smt.Node{Kind: smt.QuantifiedTerm, Op: quantifier, Args: []TermID{body},
		Sort: smt.BoolSort, Bound: bound})
}

// Turn a term in place into an application.
func rewrite(a *smt.Arena, term TermID, op string, sort smt.Sort, args ...TermID) {
	a.Set(term, smt.Node{Kind: smt.ApplyTerm, Op: op, Args: args, Sort: sort})
}

// Check whether a term is an application of one of the given operators with
// at least n arguments.
func isOpN(a *smt.Arena, term TermID, n int, ops ...string) bool {
	return a.IsOp(term, ops...) && a.Arity(term) >= n
}

// Check whether a term is an application of one of the given operators whose
// first argument has a given sort.
func isOpOver(a *smt.Arena, term TermID, sort smt.Sort, ops ...string) bool {
	return a.IsOp(term, ops...) && a.Arity(term) > 0 && a.Sort(a.Arg(term, 0)) == sort
}
