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

// RegexRewrite is implemented by the members of the regular expression rule
// family.  A member rewrites a single regular expression, given the direction
// required at that point.
type RegexRewrite interface {
	// IsApplicableRegex checks whether a regular expression can be rewritten
	// in a given direction.
	IsApplicableRegex(env *Env, re TermID, dir Direction) bool
	// ApplyRegex rewrites a regular expression in place.
	ApplyRegex(env *Env, re TermID, dir Direction)
}

// RegexRule lifts a RegexRewrite to membership tests (str.in_re s re).  Sites
// are found by searching the regular expression, where complement flips the
// direction as does the subtracted side of a difference.
type RegexRule struct {
	name    string
	rewrite RegexRewrite
}

// NewRegexRule constructs a named regular expression rule.
func NewRegexRule(name string, rewrite RegexRewrite) *RegexRule {
	return &RegexRule{name, rewrite}
}

// Name implementation for Rule interface.
func (p *RegexRule) Name() string {
	return p.name
}

// IsApplicable implementation for Rule interface.
func (p *RegexRule) IsApplicable(env *Env, term TermID, dir Direction) bool {
	return isMembership(env.arena, term) && len(p.sites(env, env.arena.Arg(term, 1), dir, nil)) > 0
}

// Apply implementation for Rule interface.
func (p *RegexRule) Apply(env *Env, term TermID, dir Direction) {
	sites := p.sites(env, env.arena.Arg(term, 1), dir, nil)
	site := sites[env.rand.IntN(len(sites))]
	//
	p.rewrite.ApplyRegex(env, site.re, site.dir)
}

type regexSite struct {
	re  TermID
	dir Direction
}

func (p *RegexRule) sites(env *Env, re TermID, dir Direction, sites []regexSite) []regexSite {
	a := env.arena
	//
	if a.Sort(re) != smt.RegLanSort {
		return sites
	} else if p.rewrite.IsApplicableRegex(env, re, dir) {
		sites = append(sites, regexSite{re, dir})
	}
	//
	switch {
	case a.IsOp(re, "re.comp"):
		sites = p.sites(env, a.Arg(re, 0), dir.Flip(), sites)
	case a.IsOp(re, "re.diff"):
		for i, arg := range a.Args(re) {
			if i == 0 {
				sites = p.sites(env, arg, dir, sites)
			} else {
				sites = p.sites(env, arg, dir.Flip(), sites)
			}
		}
	default:
		for _, arg := range a.Args(re) {
			sites = p.sites(env, arg, dir, sites)
		}
	}
	//
	return sites
}

func isMembership(a *smt.Arena, term TermID) bool {
	return a.IsOp(term, "str.in_re") && a.Arity(term) == 2
}

// RegexOperatorReplacement swaps one regular expression operator for
// another, e.g. re.* for re.+ when weakening.
type RegexOperatorReplacement struct {
	// Operator produced when weakening
	Weak string
	// Operator produced when strengthening
	Strong string
}

// IsApplicableRegex implementation for RegexRewrite interface.
func (p RegexOperatorReplacement) IsApplicableRegex(env *Env, re TermID, dir Direction) bool {
	return (dir == WEAKENING && env.arena.IsOp(re, p.Strong)) ||
		(dir == STRENGTHENING && env.arena.IsOp(re, p.Weak))
}

// ApplyRegex implementation for RegexRewrite interface.
func (p RegexOperatorReplacement) ApplyRegex(env *Env, re TermID, dir Direction) {
	if dir == WEAKENING {
		env.arena.SetOp(re, p.Weak)
	} else {
		env.arena.SetOp(re, p.Strong)
	}
}

// RegexAddFreeUnion rewrites r ==> (re.union r1 [r2] r) for one or two random
// regular expressions.
type RegexAddFreeUnion struct{}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexAddFreeUnion) IsApplicableRegex(_ *Env, _ TermID, dir Direction) bool {
	// Adding words only ever weakens
	return dir == WEAKENING
}

// ApplyRegex implementation for RegexRewrite interface.
func (RegexAddFreeUnion) ApplyRegex(env *Env, re TermID, _ Direction) {
	var (
		a     = env.arena
		inner = a.Relocate(re)
		args  []TermID
	)
	//
	for n := 1 + env.rand.IntN(2); n > 0; n-- {
		args = append(args, env.RandomValue(smt.RegLanSort, ""))
	}
	//
	rewrite(a, re, "re.union", smt.RegLanSort, append(args, inner)...)
}

// RegexConcatToOptionPower rewrites (re.++ r1 ... rn) ==> ((_ re.^ n)
// (re.union r1 ... rn)).
type RegexConcatToOptionPower struct{}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexConcatToOptionPower) IsApplicableRegex(env *Env, re TermID, dir Direction) bool {
	return dir == WEAKENING && env.arena.IsOp(re, "re.++")
}

// ApplyRegex implementation for RegexRewrite interface.
func (RegexConcatToOptionPower) ApplyRegex(env *Env, re TermID, _ Direction) {
	var (
		a     = env.arena
		args  = a.Args(re)
		union = a.App("re.union", smt.RegLanSort, args...)
	)
	//
	rewrite(a, re, smt.IndexedOp("re.^", len(args)), smt.RegLanSort, union)
}

// RegexWrap wraps a regular expression in a unary operator whose language
// contains that of its argument, such as re.+ or re.opt.
type RegexWrap struct {
	Op string
}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexWrap) IsApplicableRegex(_ *Env, _ TermID, dir Direction) bool {
	return dir == WEAKENING
}

// ApplyRegex implementation for RegexRewrite interface.
func (p RegexWrap) ApplyRegex(env *Env, re TermID, _ Direction) {
	wrap(env.arena, re, p.Op, smt.RegLanSort)
}

// RegexAddLoop rewrites r ==> ((_ re.loop 1 n) r) for a random n.
type RegexAddLoop struct{}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexAddLoop) IsApplicableRegex(_ *Env, _ TermID, dir Direction) bool {
	return dir == WEAKENING
}

// ApplyRegex implementation for RegexRewrite interface.
func (RegexAddLoop) ApplyRegex(env *Env, re TermID, _ Direction) {
	n := 1 + env.rand.IntN(99)
	wrap(env.arena, re, smt.IndexedOp("re.loop", 1, n), smt.RegLanSort)
}

// RegexIdempotent rewrites r <==> (op r r) for an idempotent operator op.
type RegexIdempotent struct {
	Op string
}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexIdempotent) IsApplicableRegex(*Env, TermID, Direction) bool {
	return true
}

// ApplyRegex implementation for RegexRewrite interface.
func (p RegexIdempotent) ApplyRegex(env *Env, re TermID, _ Direction) {
	a := env.arena
	inner := a.Relocate(re)
	rewrite(a, re, p.Op, smt.RegLanSort, inner, a.Copy(inner))
}

// RegexChangeRange moves one end of a character range (re.range l u) to a
// random character c, guarded so that the change only widens the range when
// weakening and only narrows it when strengthening.
type RegexChangeRange struct{}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexChangeRange) IsApplicableRegex(env *Env, re TermID, _ Direction) bool {
	return env.arena.IsOp(re, "re.range") && env.arena.Arity(re) == 2 &&
		env.IsRandomInstantiatable(smt.StringSort)
}

// ApplyRegex implementation for RegexRewrite interface.
func (RegexChangeRange) ApplyRegex(env *Env, re TermID, dir Direction) {
	var (
		a     = env.arena
		c     = env.RandomValue(smt.StringSort, "")
		index = env.rand.IntN(2)
		bound = a.Arg(re, index)
		// Weakening lowers the lower bound or raises the upper bound
		below = (index == 0) == (dir == WEAKENING)
		args  = []TermID{a.Copy(bound), a.Copy(c)}
	)
	//
	if below {
		args[0], args[1] = args[1], args[0]
	}
	//
	var (
		length    = a.App("str.len", smt.IntSort, a.Copy(c))
		singleton = a.App("=", smt.BoolSort, length, a.Int(1))
		ordered   = a.App("str.<=", smt.BoolSort, args...)
		guard     = a.App("and", smt.BoolSort, singleton, ordered)
	)
	//
	a.SetArg(re, index, a.App("ite", smt.StringSort, guard, c, bound))
}

// RegexDistributeUnionConcat rewrites (re.++ r (re.union s t) u) <==>
// (re.union (re.++ r s u) (re.++ r t u)), distributing over the first union.
type RegexDistributeUnionConcat struct{}

// IsApplicableRegex implementation for RegexRewrite interface.
func (RegexDistributeUnionConcat) IsApplicableRegex(env *Env, re TermID, _ Direction) bool {
	a := env.arena
	//
	if !a.IsOp(re, "re.++") {
		return false
	}
	//
	for _, arg := range a.Args(re) {
		if a.IsOp(arg, "re.union") {
			return true
		}
	}
	//
	return false
}

// ApplyRegex implementation for RegexRewrite interface.
func (RegexDistributeUnionConcat) ApplyRegex(env *Env, re TermID, _ Direction) {
	var (
		a       = env.arena
		args    = a.Args(re)
		index   = 0
		concats []TermID
	)
	//
	for !a.IsOp(args[index], "re.union") {
		index++
	}
	//
	for _, branch := range a.Args(args[index]) {
		parts := make([]TermID, len(args))
		//
		for i, arg := range args {
			if i == index {
				parts[i] = branch
			} else {
				parts[i] = a.Copy(arg)
			}
		}
		//
		concats = append(concats, a.App("re.++", smt.RegLanSort, parts...))
	}
	//
	rewrite(a, re, "re.union", smt.RegLanSort, concats...)
}

// RegexAppend rewrites (str.in_re s r) ==> (str.in_re (str.++ s w) r') for a
// random string w, where r' is r with w appended to every word.
type RegexAppend struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (RegexAppend) MatchesLHS(env *Env, term TermID) bool {
	return isMembership(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (RegexAppend) ToRHS(env *Env, term TermID) {
	var (
		a      = env.arena
		suffix = env.RandomValue(smt.StringSort, "")
	)
	//
	appendSuffix(a, a.Arg(term, 1), suffix)
	a.SetArg(term, 0, a.App("str.++", smt.StringSort, a.Arg(term, 0), suffix))
}

// Append a string to every word of a regular expression, pushing it as far
// into the expression as possible.  For example, appending w to (re.++ a
// (str.to_re s)) gives (re.++ a (str.to_re (str.++ s w))).
func appendSuffix(a *smt.Arena, re TermID, suffix TermID) {
	switch {
	case a.IsOp(re, "str.to_re"):
		a.SetArg(re, 0, a.App("str.++", smt.StringSort, a.Arg(re, 0), a.Copy(suffix)))
	case a.IsOp(re, "re.union", "re.inter", "re.diff"):
		for _, arg := range a.Args(re) {
			appendSuffix(a, arg, suffix)
		}
	case a.IsOp(re, "re.++"):
		appendSuffix(a, a.Arg(re, a.Arity(re)-1), suffix)
	case a.IsOp(re, "re.opt"):
		// The empty word must gain the suffix as well, so (re.opt r) becomes
		// (re.++ (re.opt r) w) rather than (re.opt (re.++ r w))
		wrap(a, re, "re.++", smt.RegLanSort, a.App("str.to_re", smt.RegLanSort, a.Copy(suffix)))
	default:
		wrap(a, re, "re.++", smt.RegLanSort, a.App("str.to_re", smt.RegLanSort, a.Copy(suffix)))
	}
}
