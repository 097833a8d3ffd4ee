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
	"slices"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// DropConjunct removes a random conjunct (and p q ...) ==> (and q ...) when
// weakening, and adds a random conjunct p ==> (and p q) when strengthening.
type DropConjunct struct{}

// MatchesLHS implementation for Sides interface.
func (DropConjunct) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "and")
}

// MatchesRHS implementation for Sides interface.
func (DropConjunct) MatchesRHS(*Env, TermID) bool {
	return true
}

// ToRHS implementation for Sides interface.
func (DropConjunct) ToRHS(env *Env, term TermID) {
	dropRandomArgument(env, term)
}

// ToLHS implementation for Sides interface.
func (DropConjunct) ToLHS(env *Env, term TermID) {
	wrap(env.arena, term, "and", smt.BoolSort, env.RandomValue(smt.BoolSort, ""))
}

// AddDisjunct adds a random disjunct p ==> (or p q) when weakening, and
// removes a random disjunct (or p q ...) ==> (or q ...) when strengthening.
type AddDisjunct struct{}

// MatchesLHS implementation for Sides interface.
func (AddDisjunct) MatchesLHS(*Env, TermID) bool {
	return true
}

// MatchesRHS implementation for Sides interface.
func (AddDisjunct) MatchesRHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "or")
}

// ToRHS implementation for Sides interface.
func (AddDisjunct) ToRHS(env *Env, term TermID) {
	wrap(env.arena, term, "or", smt.BoolSort, env.RandomValue(smt.BoolSort, ""))
}

// ToLHS implementation for Sides interface.
func (AddDisjunct) ToLHS(env *Env, term TermID) {
	dropRandomArgument(env, term)
}

// Remove a randomly chosen argument, collapsing the term onto the remaining
// argument if only one is left.
func dropRandomArgument(env *Env, term TermID) {
	var (
		a    = env.arena
		args = a.Args(term)
		i    = env.rand.IntN(len(args))
	)
	//
	args = slices.Delete(args, i, i+1)
	//
	if len(args) == 1 {
		a.Collapse(term, args[0])
	} else {
		a.SetArgs(term, args...)
	}
}

// OrToImp rewrites (or p q) <==> (=> (not p) q), in both directions.
type OrToImp struct{}

// MatchesLHS implementation for Sides interface.
func (OrToImp) MatchesLHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "or") && env.arena.Arity(term) == 2
}

// MatchesRHS implementation for Sides interface.
func (OrToImp) MatchesRHS(env *Env, term TermID) bool {
	return env.arena.IsOp(term, "=>", "implies") && env.arena.Arity(term) == 2
}

// ToRHS implementation for Sides interface.
func (OrToImp) ToRHS(env *Env, term TermID) {
	negateFirst(env.arena, term, "=>")
}

// ToLHS implementation for Sides interface.
func (OrToImp) ToLHS(env *Env, term TermID) {
	negateFirst(env.arena, term, "or")
}

func negateFirst(a *smt.Arena, term TermID, op string) {
	a.SetOp(term, op)
	a.SetArg(term, 0, a.App("not", smt.BoolSort, a.Arg(term, 0)))
}

// OrToIte rewrites (or p1 ... pn) ==> (exists ((b Bool)) (ite b (or p1 ...)
// (or ... pn))) for a random split point.
type OrToIte struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (OrToIte) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "or")
}

// ToRHS implementation for Sides interface.
func (OrToIte) ToRHS(env *Env, term TermID) {
	var (
		a     = env.arena
		args  = a.Args(term)
		split = 1 + env.rand.IntN(len(args)-1)
		b     = a.FreshVariable(nil, term)
	)
	//
	disjunction := func(phis []TermID) TermID {
		if len(phis) == 1 {
			return phis[0]
		}
		//
		return a.App("or", smt.BoolSort, phis...)
	}
	//
	body := a.App("ite", smt.BoolSort, a.Symbol(b, smt.BoolSort), disjunction(args[:split]), disjunction(args[split:]))
	quantify(a, term, "exists", []smt.Binder{{Name: b, Sort: smt.BoolSort}}, body)
}

// IteToImpTrue rewrites (ite b p q) ==> (=> b p).
type IteToImpTrue struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (IteToImpTrue) MatchesLHS(env *Env, term TermID) bool {
	return isBoolIte(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (IteToImpTrue) ToRHS(env *Env, term TermID) {
	a := env.arena
	rewrite(a, term, "=>", smt.BoolSort, a.Arg(term, 0), a.Arg(term, 1))
}

// IteToImpFalse rewrites (ite b p q) ==> (=> (not b) q).
type IteToImpFalse struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (IteToImpFalse) MatchesLHS(env *Env, term TermID) bool {
	return isBoolIte(env.arena, term)
}

// ToRHS implementation for Sides interface.
func (IteToImpFalse) ToRHS(env *Env, term TermID) {
	a := env.arena
	rewrite(a, term, "=>", smt.BoolSort, a.App("not", smt.BoolSort, a.Arg(term, 0)), a.Arg(term, 2))
}

func isBoolIte(a *smt.Arena, term TermID) bool {
	return a.IsOp(term, "ite") && a.Arity(term) == 3 && a.Sort(a.Arg(term, 1)) == smt.BoolSort
}

// ImpToIteTrue rewrites (=> p q ...) ==> (ite p (=> q ...) true).
type ImpToIteTrue struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (ImpToIteTrue) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "implies", "=>")
}

// ToRHS implementation for Sides interface.
func (ImpToIteTrue) ToRHS(env *Env, term TermID) {
	a := env.arena
	phi, rest := consequent(a, term)
	rewrite(a, term, "ite", smt.BoolSort, phi, rest, a.True())
}

// ImpToIteFalse rewrites (=> p q ...) ==> (ite (not p) true (=> q ...)).
type ImpToIteFalse struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (ImpToIteFalse) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "implies", "=>")
}

// ToRHS implementation for Sides interface.
func (ImpToIteFalse) ToRHS(env *Env, term TermID) {
	a := env.arena
	phi, rest := consequent(a, term)
	rewrite(a, term, "ite", smt.BoolSort, a.App("not", smt.BoolSort, phi), a.True(), rest)
}

// Split an implication (=> p q ...) into p and (=> q ...), where the latter
// is just q if there are only two arguments.
func consequent(a *smt.Arena, term TermID) (TermID, TermID) {
	args := a.Args(term)
	//
	if len(args) == 2 {
		return args[0], args[1]
	}
	//
	return args[0], a.App("=>", smt.BoolSort, args[1:]...)
}

// ImpLiftToForall rewrites (=> p1 ... pn) ==> (forall ((b Bool)) (=> (and b
// p1) ... (and b pn))).
type ImpLiftToForall struct{ leftOnly }

// MatchesLHS implementation for Sides interface.
func (ImpLiftToForall) MatchesLHS(env *Env, term TermID) bool {
	return isOpN(env.arena, term, 2, "implies", "=>")
}

// ToRHS implementation for Sides interface.
func (ImpLiftToForall) ToRHS(env *Env, term TermID) {
	var (
		a    = env.arena
		b    = a.FreshVariable(nil, term)
		args = a.Args(term)
	)
	//
	for i, phi := range args {
		args[i] = a.App("and", smt.BoolSort, a.Symbol(b, smt.BoolSort), phi)
	}
	//
	body := a.App("=>", smt.BoolSort, args...)
	quantify(a, term, "forall", []smt.Binder{{Name: b, Sort: smt.BoolSort}}, body)
}

// QuantifierSwap rewrites (forall xs p) ==> (exists xs p).
type QuantifierSwap struct{}

// MatchesLHS implementation for Sides interface.
func (QuantifierSwap) MatchesLHS(env *Env, term TermID) bool {
	node := env.arena.Node(term)
	return node.IsQuantifier("forall")
}

// MatchesRHS implementation for Sides interface.
func (QuantifierSwap) MatchesRHS(env *Env, term TermID) bool {
	node := env.arena.Node(term)
	return node.IsQuantifier("exists")
}

// ToRHS implementation for Sides interface.
func (QuantifierSwap) ToRHS(env *Env, term TermID) {
	env.arena.SetOp(term, "exists")
}

// ToLHS implementation for Sides interface.
func (QuantifierSwap) ToLHS(env *Env, term TermID) {
	env.arena.SetOp(term, "forall")
}

// InstantiateQuantifier replaces a universally quantified variable with a
// random value when weakening, and an existentially quantified variable when
// strengthening.  The variable is removed from the quantifier, and the
// quantifier itself is removed once no variables remain.
type InstantiateQuantifier struct{}

// MatchesLHS implementation for Sides interface.
func (InstantiateQuantifier) MatchesLHS(env *Env, term TermID) bool {
	return instantiatable(env, term, "forall") >= 0
}

// MatchesRHS implementation for Sides interface.
func (InstantiateQuantifier) MatchesRHS(env *Env, term TermID) bool {
	return instantiatable(env, term, "exists") >= 0
}

// ToRHS implementation for Sides interface.
func (p InstantiateQuantifier) ToRHS(env *Env, term TermID) {
	p.instantiate(env, term)
}

// ToLHS implementation for Sides interface.
func (p InstantiateQuantifier) ToLHS(env *Env, term TermID) {
	p.instantiate(env, term)
}

func (InstantiateQuantifier) instantiate(env *Env, term TermID) {
	var (
		a     = env.arena
		node  = a.Node(term)
		i     = instantiatable(env, term, node.Op)
		bound = node.Bound[i]
		body  = node.Body()
	)
	//
	value := env.RandomValue(bound.Sort, bound.Name)
	//
	for _, site := range a.FreeVariables(body)[bound.Name] {
		a.Overwrite(site, value)
	}
	//
	node.Bound = slices.Delete(node.Bound, i, i+1)
	//
	if len(node.Bound) == 0 {
		a.Collapse(term, body)
	} else {
		a.Set(term, node)
	}
}

// Determine the last variable of a given quantifier which can be randomly
// instantiated, or -1 if there is none.
func instantiatable(env *Env, term TermID, quantifier string) int {
	node := env.arena.Node(term)
	//
	if !node.IsQuantifier(quantifier) {
		return -1
	}
	//
	for i := len(node.Bound) - 1; i >= 0; i-- {
		if env.IsRandomInstantiatable(node.Bound[i].Sort) {
			return i
		}
	}
	//
	return -1
}

// UninterpretedFunctionEquality rewrites (and (= a1 b1) ... (= an bn)) ==>
// (= (f a1 ... an) (f b1 ... bn)).  Only strengthening is supported, since
// weakening would require choosing a function.
type UninterpretedFunctionEquality struct{ rightOnly }

// MatchesRHS implementation for Sides interface.
func (UninterpretedFunctionEquality) MatchesRHS(env *Env, term TermID) bool {
	a := env.arena
	//
	if !isOpN(a, term, 2, "=") || a.Kind(a.Arg(term, 0)) != smt.ApplyTerm {
		return false
	}
	//
	var (
		first = a.Arg(term, 0)
		f     = a.Op(first)
		arity = a.Arity(first)
	)
	// Must be a declared function, not a builtin
	if !env.globals.Has(f) {
		return false
	}
	//
	for _, arg := range a.Args(term) {
		if !a.IsOp(arg, f) || a.Arity(arg) != arity {
			return false
		}
		// Arguments must be pairwise comparable
		for i := range arity {
			if a.Sort(a.Arg(arg, i)) != a.Sort(a.Arg(first, i)) {
				return false
			}
		}
	}
	//
	return arity > 0
}

// ToLHS implementation for Sides interface.
func (UninterpretedFunctionEquality) ToLHS(env *Env, term TermID) {
	var (
		a         = env.arena
		apps      = a.Args(term)
		arity     = a.Arity(apps[0])
		conjuncts = make([]TermID, arity)
	)
	//
	for i := range arity {
		eqArgs := make([]TermID, len(apps))
		//
		for j, app := range apps {
			eqArgs[j] = a.Arg(app, i)
		}
		//
		conjuncts[i] = a.App("=", smt.BoolSort, eqArgs...)
	}
	//
	if len(conjuncts) == 1 {
		a.Overwrite(term, conjuncts[0])
	} else {
		rewrite(a, term, "and", smt.BoolSort, conjuncts...)
	}
}
