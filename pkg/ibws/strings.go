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

// StringEqualityPrefixSuffix rewrites (= s t) ==> (and (str.prefixof s t)
// (str.suffixof s t)).
type StringEqualityPrefixSuffix struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringEqualityPrefixSuffix) MatchesLHS(env *Env, term TermID) bool {
	return isStringEquality(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (StringEqualityPrefixSuffix) ToRHS(env *Env, term TermID) {
	both(env.arena, term, "and", "str.prefixof", "str.suffixof", false)
}

// StringEqualityPrefixPrefix rewrites (= s t) <==> (and (str.prefixof s t)
// (str.prefixof t s)).
type StringEqualityPrefixPrefix struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringEqualityPrefixPrefix) MatchesLHS(env *Env, term TermID) bool {
	return isStringEquality(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (StringEqualityPrefixPrefix) ToRHS(env *Env, term TermID) {
	both(env.arena, term, "and", "str.prefixof", "str.prefixof", true)
}

// StringEqualitySuffixSuffix rewrites (= s t) <==> (and (str.suffixof s t)
// (str.suffixof t s)).
type StringEqualitySuffixSuffix struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringEqualitySuffixSuffix) MatchesLHS(env *Env, term TermID) bool {
	return isStringEquality(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (StringEqualitySuffixSuffix) ToRHS(env *Env, term TermID) {
	both(env.arena, term, "and", "str.suffixof", "str.suffixof", true)
}

// StringContainsPrefixSuffix rewrites (or (str.prefixof s t) (str.suffixof s
// t)) ==> (str.contains t s).  Only strengthening is supported.
type StringContainsPrefixSuffix struct{ rightOnly }

// MatchesRHS implementation for Sides interface.
func (StringContainsPrefixSuffix) MatchesRHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "str.contains") && env.arena.Arity(term) == 2
}

// ToLHS implementation for Sides interface.
func (StringContainsPrefixSuffix) ToLHS(env *Env, term TermID) {
	a := env.arena
	// Arguments of str.contains are the other way around
	a.SetArgs(term, a.Arg(term, 1), a.Arg(term, 0))
	both(a, term, "or", "str.prefixof", "str.suffixof", false)
}

// Rewrite a binary term (op s t) into (conn (lhs s t) (rhs s t)), or into
// (conn (lhs s t) (rhs t s)) when swapped.
func both(a *smt.Arena, term TermID, conn string, lhs string, rhs string, swap bool) {
	var (
		s = a.Arg(term, 0)
		t = a.Arg(term, 1)
		u = a.Copy(s)
		v = a.Copy(t)
	)
	//
	if swap {
		u, v = v, u
	}
	//
	rewrite(a, term, conn, smt.BoolSort,
		a.App(lhs, smt.BoolSort, s, t),
		a.App(rhs, smt.BoolSort, u, v))
}

func isStringEquality(a *smt.Arena, term TermID) bool {
	return isOpOver(a, term, smt.StringSort, "=") && a.Arity(term) == 2
}

// StringEqualityDistinctAppend rewrites (= s t) ==> (distinct s (str.++ t r
// c)) for a random string r and a random letter c.
type StringEqualityDistinctAppend struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringEqualityDistinctAppend) MatchesLHS(env *Env, term TermID) bool {
	return isStringEquality(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (StringEqualityDistinctAppend) ToRHS(env *Env, term TermID) {
	var (
		a      = env.arena
		letter = a.StringLit(string(letters[env.rand.IntN(len(letters))]))
		suffix = a.App("str.++", smt.StringSort, a.Arg(term, 1), env.RandomValue(smt.StringSort, ""), letter)
	)
	//
	rewrite(a, term, "distinct", smt.BoolSort, a.Arg(term, 0), suffix)
}

// StringPrefixToExists rewrites (str.prefixof s t) ==> (exists ((x Int)) (=
// (str.substr t 0 x) s)).
type StringPrefixToExists struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringPrefixToExists) MatchesLHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "str.prefixof") && env.arena.Arity(term) == 2
}

// ToRHS implementation for Sides interface.
func (StringPrefixToExists) ToRHS(env *Env, term TermID) {
	var (
		a    = env.arena
		s    = a.Arg(term, 0)
		t    = a.Arg(term, 1)
		x    = a.FreshVariable(nil, term)
		sub  = a.App("str.substr", smt.StringSort, t, a.Int(0), a.Symbol(x, smt.IntSort))
		body = a.App("=", smt.BoolSort, sub, s)
	)
	//
	quantify(a, term, "exists", []smt.Binder{{Name: x, Sort: smt.IntSort}}, body)
}

// StringSuffixToExists rewrites (str.suffixof s t) ==> (exists ((x Int)) (=
// (str.substr t x (- (str.len t) x)) s)).
type StringSuffixToExists struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringSuffixToExists) MatchesLHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "str.suffixof") && env.arena.Arity(term) == 2
}

// ToRHS implementation for Sides interface.
func (StringSuffixToExists) ToRHS(env *Env, term TermID) {
	var (
		a      = env.arena
		s      = a.Arg(term, 0)
		t      = a.Arg(term, 1)
		x      = a.FreshVariable(nil, term)
		length = a.App("-", smt.IntSort, a.App("str.len", smt.IntSort, a.Copy(t)), a.Symbol(x, smt.IntSort))
		sub    = a.App("str.substr", smt.StringSort, t, a.Symbol(x, smt.IntSort), length)
		body   = a.App("=", smt.BoolSort, sub, s)
	)
	//
	quantify(a, term, "exists", []smt.Binder{{Name: x, Sort: smt.IntSort}}, body)
}

// StringContainsToExists rewrites (str.contains s t) ==> (exists ((x Int) (y
// Int)) (= (str.substr s x y) t)).
type StringContainsToExists struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringContainsToExists) MatchesLHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "str.contains") && env.arena.Arity(term) == 2
}

// ToRHS implementation for Sides interface.
func (StringContainsToExists) ToRHS(env *Env, term TermID) {
	var (
		a    = env.arena
		s    = a.Arg(term, 0)
		t    = a.Arg(term, 1)
		x    = a.FreshVariable(nil, term)
		y    = a.FreshVariable([]string{x}, term)
		sub  = a.App("str.substr", smt.StringSort, s, a.Symbol(x, smt.IntSort), a.Symbol(y, smt.IntSort))
		body = a.App("=", smt.BoolSort, sub, t)
	)
	//
	quantify(a, term, "exists", []smt.Binder{{Name: x, Sort: smt.IntSort}, {Name: y, Sort: smt.IntSort}}, body)
}

// StringLeqAppend rewrites (str.<= s1 ... sn) ==> (str.<= s1 ... (str.++ si
// r) ... (str.++ sn r)) for a random string r and split point i.
type StringLeqAppend struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringLeqAppend) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "str.<=")
}

// ToRHS implementation for Sides interface.
func (StringLeqAppend) ToRHS(env *Env, term TermID) {
	var (
		a      = env.arena
		args   = a.Args(term)
		suffix = env.RandomValue(smt.StringSort, "")
		split  = 1 + env.rand.IntN(len(args)-1)
	)
	//
	for _, t := range args[split:] {
		wrap(a, t, "str.++", smt.StringSort, a.Copy(suffix))
	}
}

// StringLeqSubstr rewrites (str.<= s1 ... sn) ==> (str.<= (str.substr s1 0
// k1) ... sn), truncating the terms before a random split point to a prefix
// whose length is a random index when valid, or the full length otherwise.
type StringLeqSubstr struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (StringLeqSubstr) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "str.<=")
}

// ToRHS implementation for Sides interface.
func (StringLeqSubstr) ToRHS(env *Env, term TermID) {
	var (
		a     = env.arena
		args  = a.Args(term)
		split = 1 + env.rand.IntN(len(args)-1)
		index = env.RandomValue(smt.IntSort, "")
	)
	//
	for _, t := range args[:split] {
		var (
			s     = a.Relocate(t)
			last  = a.App("-", smt.IntSort, a.App("str.len", smt.IntSort, a.Copy(s)), a.Int(1))
			valid = a.App("<=", smt.BoolSort, a.Int(0), a.Copy(index), last)
			k     = a.App("ite", smt.IntSort, valid, a.Copy(index), a.App("str.len", smt.IntSort, a.Copy(s)))
		)
		//
		rewrite(a, t, "str.substr", smt.StringSort, s, a.Int(0), k)
	}
}
