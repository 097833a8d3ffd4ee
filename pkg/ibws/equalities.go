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
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// Congruence lifts a rule over terms of arbitrary sort to formulas.  A
// formula is a site when it contains a matching subterm outside of any binder,
// and applying the rule rewrites one such subterm chosen at random.  Since the
// underlying rule replaces equals by equals, the direction is irrelevant.
type Congruence struct {
	inner Rule
}

// NewCongruence constructs a congruence from a sort-agnostic rule.
func NewCongruence(inner Rule) *Congruence {
	return &Congruence{inner}
}

// Name implementation for Rule interface.
func (p *Congruence) Name() string {
	return p.inner.Name()
}

// IsApplicable implementation for Rule interface.
func (p *Congruence) IsApplicable(env *Env, term TermID, dir Direction) bool {
	return env.arena.Sort(term) == smt.BoolSort && len(p.sites(env, term, dir)) > 0
}

// Apply implementation for Rule interface.
func (p *Congruence) Apply(env *Env, term TermID, dir Direction) {
	sites := p.sites(env, term, dir)
	p.inner.Apply(env, sites[env.rand.IntN(len(sites))], dir)
}

func (p *Congruence) sites(env *Env, term TermID, dir Direction) []TermID {
	var (
		a     = env.arena
		sites []TermID
		visit func(TermID)
	)
	//
	visit = func(t TermID) {
		if p.inner.IsApplicable(env, t, dir) {
			sites = append(sites, t)
		}
		// Random values could be captured by a binder
		if kind := a.Kind(t); kind != smt.QuantifiedTerm && kind != smt.LetTerm {
			for _, arg := range a.Args(t) {
				visit(arg)
			}
		}
	}
	//
	visit(term)
	//
	return sites
}

// EmptyStringReplace rewrites "" <==> (str.replace "" s "") for a random s.
type EmptyStringReplace struct{}

// MatchesLHS implementation for Sides interface.
func (EmptyStringReplace) MatchesLHS(env *Env, term TermID) bool {
	return isEmptyString(env.arena, term)
}

// MatchesRHS implementation for Sides interface.
func (EmptyStringReplace) MatchesRHS(env *Env, term TermID) bool {
	a := env.arena
	//
	return a.IsOp(term, "str.replace") && a.Arity(term) == 3 &&
		isEmptyString(a, a.Arg(term, 0)) && isEmptyString(a, a.Arg(term, 2))
}

// ToRHS implementation for Sides interface.
func (EmptyStringReplace) ToRHS(env *Env, term TermID) {
	a := env.arena
	s := env.RandomValue(smt.StringSort, "")
	rewrite(a, term, "str.replace", smt.StringSort, a.StringLit(""), s, a.StringLit(""))
}

// ToLHS implementation for Sides interface.
func (EmptyStringReplace) ToLHS(env *Env, term TermID) {
	a := env.arena
	a.Overwrite(term, a.StringLit(""))
}

// StringPrependToEmptyReplace rewrites (str.++ s t) <==> (str.replace t "" s).
type StringPrependToEmptyReplace struct{}

// MatchesLHS implementation for Sides interface.
func (StringPrependToEmptyReplace) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "str.++")
}

// MatchesRHS implementation for Sides interface.
func (StringPrependToEmptyReplace) MatchesRHS(env *Env, term TermID) bool {
	a := env.arena
	return a.IsOp(term, "str.replace") && a.Arity(term) == 3 && isEmptyString(a, a.Arg(term, 1))
}

// ToRHS implementation for Sides interface.
func (StringPrependToEmptyReplace) ToRHS(env *Env, term TermID) {
	var (
		a    = env.arena
		args = a.Args(term)
		rep  = a.App("str.replace", smt.StringSort, args[1], a.StringLit(""), args[0])
	)
	//
	if len(args) == 2 {
		a.Collapse(term, rep)
	} else {
		a.SetArgs(term, append([]TermID{rep}, args[2:]...)...)
	}
}

// ToLHS implementation for Sides interface.
func (StringPrependToEmptyReplace) ToLHS(env *Env, term TermID) {
	a := env.arena
	rewrite(a, term, "str.++", smt.StringSort, a.Arg(term, 2), a.Arg(term, 0))
}

// StringToInt rewrites a numeral N <==> (str.to_int "N").
type StringToInt struct{}

// MatchesLHS implementation for Sides interface.
func (StringToInt) MatchesLHS(env *Env, term TermID) bool {
	a := env.arena
	return a.Kind(term) == smt.LiteralTerm && a.Sort(term) == smt.IntSort && isDigits(a.Op(term))
}

// MatchesRHS implementation for Sides interface.
func (StringToInt) MatchesRHS(env *Env, term TermID) bool {
	a := env.arena
	//
	if !a.IsOp(term, "str.to_int") || a.Arity(term) != 1 || a.Kind(a.Arg(term, 0)) != smt.LiteralTerm {
		return false
	}
	//
	contents, ok := smt.UnquoteString(a.Op(a.Arg(term, 0)))
	//
	return ok && isDigits(contents)
}

// ToRHS implementation for Sides interface.
func (StringToInt) ToRHS(env *Env, term TermID) {
	a := env.arena
	rewrite(a, term, "str.to_int", smt.IntSort, a.StringLit(a.Op(term)))
}

// ToLHS implementation for Sides interface.
func (StringToInt) ToLHS(env *Env, term TermID) {
	a := env.arena
	contents, _ := smt.UnquoteString(a.Op(a.Arg(term, 0)))
	// Numerals cannot have leading zeros
	numeral := strings.TrimLeft(contents, "0")
	//
	if numeral == "" {
		numeral = "0"
	}
	//
	a.Set(term, smt.Node{Kind: smt.LiteralTerm, Op: numeral, Sort: smt.IntSort})
}

func isEmptyString(a *smt.Arena, term TermID) bool {
	return a.Kind(term) == smt.LiteralTerm && a.Op(term) == `""`
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	//
	for _, c := range text {
		if c < '0' || c > '9' {
			return false
		}
	}
	//
	return true
}
