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
	"errors"
	"fmt"
	"slices"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

type transformKind uint8

const (
	namedTransform transformKind = iota
	identityTransform
	parametricTransform
)

// ParametricBody constructs the image of a term t under a transform, given
// the random parameters drawn for the current application.
type ParametricBody func(a *smt.Arena, randoms []TermID, t TermID) TermID

// Transform is the function applied to each argument by a homomorphism.  This
// is either a named unary function, the identity or a parametric function
// which additionally consumes random values of declared sorts.
type Transform struct {
	kind   transformKind
	symbol string
	sorts  []smt.Sort
	body   ParametricBody
}

// Named constructs a transform which applies a given unary function symbol.
func Named(symbol string) Transform {
	return Transform{namedTransform, symbol, nil, nil}
}

// Identity constructs the identity transform.
func Identity() Transform {
	return Transform{kind: identityTransform}
}

// Parametric constructs a transform whose body consumes one random value for
// each of the given sorts.  The random values are drawn once per rule
// application and shared by every argument.
func Parametric(sorts []smt.Sort, body ParametricBody) Transform {
	return Transform{parametricTransform, "", slices.Clone(sorts), body}
}

// IsIdentity checks whether this is the identity transform.
func (t Transform) IsIdentity() bool {
	return t.kind == identityTransform
}

// Sorts returns the sorts of the random parameters of this transform.
func (t Transform) Sorts() []smt.Sort {
	return t.sorts
}

func (t Transform) apply(a *smt.Arena, randoms []TermID, arg TermID, target smt.Sort) TermID {
	switch t.kind {
	case namedTransform:
		return a.App(t.symbol, target, arg)
	case parametricTransform:
		return t.body(a, randoms, arg)
	default:
		return arg
	}
}

// SortPair maps a source sort to the target sort of a homomorphism.
type SortPair struct {
	From smt.Sort
	To   smt.Sort
}

// Homomorphism is a family of implications of the form:
//
//	(R t1 ... tn) ==> (=> (P t1 ... tn) (S (f t1) ... (f tn)))
//
// Here, the arguments ti share a sort r of the sort map, and each (f ti) has
// the corresponding sort s.  The side condition P is optional and, when
// omitted, the implication is dropped. The arguments of S may be permuted, and
// the arity n may be fixed.  Rewriting from right to left is only supported
// for the identity transform without permutation or side condition, since
// other transforms need not be invertible.
type Homomorphism struct {
	// Source relation
	R string
	// Target relation
	S string
	// Source and target sorts
	Sorts []SortPair
	// Function applied to each argument
	F Transform
	// Permutation applied to the transformed arguments (optional)
	Permutation func([]TermID) []TermID
	// Required number of arguments (0 means any)
	Arity int
	// Side condition guarding the rewrite (optional)
	Side func(a *smt.Arena, args []TermID) TermID
}

// OperatorReplacement is the homomorphism which, when weakening, replaces one
// operator with another over a given set of sorts, optionally reversing the
// arguments.
func OperatorReplacement(weak string, strong string, sorts []smt.Sort, reverse bool) *Homomorphism {
	h := &Homomorphism{R: strong, S: weak, F: Identity()}
	//
	for _, s := range sorts {
		h.Sorts = append(h.Sorts, SortPair{s, s})
	}
	//
	if reverse {
		h.Permutation = Reversed
	}
	//
	return h
}

// RelationPreservingAutomorphism is the homomorphism from a relation over a
// given sort to itself.
func RelationPreservingAutomorphism(r string, f Transform, sort smt.Sort) *Homomorphism {
	return &Homomorphism{R: r, S: r, Sorts: []SortPair{{sort, sort}}, F: f}
}

// Reversed returns the given terms in reverse order.
func Reversed(terms []TermID) []TermID {
	reversed := slices.Clone(terms)
	slices.Reverse(reversed)
	//
	return reversed
}

// Validate checks this homomorphism is well formed.
func (h *Homomorphism) Validate() error {
	if h.R == "" || h.S == "" {
		return errors.New("missing relation")
	} else if len(h.Sorts) == 0 {
		return errors.New("empty sort map")
	}
	//
	switch h.F.kind {
	case namedTransform:
		if h.F.symbol == "" {
			return errors.New("missing function symbol")
		}
	case identityTransform:
		for _, p := range h.Sorts {
			if p.From != p.To {
				return fmt.Errorf("identity cannot map %s to %s", p.From, p.To)
			}
		}
	case parametricTransform:
		if h.F.body == nil {
			return errors.New("missing transform body")
		}
		//
		for _, s := range h.F.sorts {
			if !Generates(s) {
				return fmt.Errorf("random parameters of sort %s cannot be generated", s)
			}
		}
	}
	//
	return nil
}

// MatchesLHS implementation for Sides interface.
func (h *Homomorphism) MatchesLHS(env *Env, term TermID) bool {
	a := env.arena
	//
	if !h.matches(a, term, h.R) {
		return false
	}
	//
	target, ok := h.target(a.Sort(a.Arg(term, 0)))
	//
	return ok && accepts(h.S, target, a.Arity(term))
}

// MatchesRHS implementation for Sides interface.
func (h *Homomorphism) MatchesRHS(env *Env, term TermID) bool {
	a := env.arena
	//
	if !h.F.IsIdentity() || h.Permutation != nil || h.Side != nil || !h.matches(a, term, h.S) {
		return false
	}
	//
	sort := a.Sort(a.Arg(term, 0))
	//
	return slices.ContainsFunc(h.Sorts, func(p SortPair) bool { return p.To == sort }) &&
		accepts(h.R, sort, a.Arity(term))
}

// ToRHS implementation for Sides interface.
func (h *Homomorphism) ToRHS(env *Env, term TermID) {
	var (
		a       = env.arena
		args    = a.Args(term)
		target  = h.mustTarget(a.Sort(args[0]))
		randoms = make([]TermID, len(h.F.sorts))
		mapped  = make([]TermID, len(args))
		side    TermID
	)
	// Draw random parameters once for all arguments
	for i, s := range h.F.sorts {
		randoms[i] = env.RandomValue(s, "")
	}
	// Side condition is over copies of the original arguments
	if h.Side != nil {
		side = h.Side(a, copyAll(a, args))
	}
	//
	for i, arg := range args {
		mapped[i] = h.F.apply(a, copyAll(a, randoms), arg, target)
	}
	//
	if h.Permutation != nil {
		mapped = h.Permutation(mapped)
	}
	//
	if h.Side == nil {
		rewrite(a, term, h.S, smt.BoolSort, mapped...)
	} else {
		rewrite(a, term, "=>", smt.BoolSort, side, a.App(h.S, smt.BoolSort, mapped...))
	}
}

// ToLHS implementation for Sides interface.
func (h *Homomorphism) ToLHS(env *Env, term TermID) {
	env.arena.SetOp(term, h.R)
}

// Check a term is a formula applying a given relation to one or more
// arguments of the same sort, with the expected arity (if given).
func (h *Homomorphism) matches(a *smt.Arena, term TermID, relation string) bool {
	if !a.IsOp(term, relation) || a.Sort(term) != smt.BoolSort || a.Arity(term) == 0 {
		return false
	} else if h.Arity != 0 && a.Arity(term) != h.Arity {
		return false
	}
	//
	sort := a.Sort(a.Arg(term, 0))
	//
	for _, arg := range a.Args(term) {
		if a.Sort(arg) != sort {
			return false
		}
	}
	//
	return true
}

func (h *Homomorphism) target(sort smt.Sort) (smt.Sort, bool) {
	for _, p := range h.Sorts {
		if p.From == sort {
			return p.To, true
		}
	}
	//
	return smt.NoSort, false
}

func (h *Homomorphism) mustTarget(sort smt.Sort) smt.Sort {
	if target, ok := h.target(sort); ok {
		return target
	}
	//
	panic(fmt.Sprintf("homomorphism %s -> %s undefined for sort %s", h.R, h.S, sort))
}

// Check a builtin operator accepts a given number of arguments of a given
// sort.  Uninterpreted relations are assumed to accept anything.
func accepts(op string, sort smt.Sort, n int) bool {
	signature, ok := smt.Operators[op]
	if !ok {
		return true
	}
	//
	_, err := signature(slices.Repeat([]smt.Sort{sort}, n))
	//
	return err == nil
}

// Copy each of a set of terms, such that no subterm is shared.
func copyAll(a *smt.Arena, terms []TermID) []TermID {
	copies := make([]TermID, len(terms))
	//
	for i, t := range terms {
		copies[i] = a.Copy(t)
	}
	//
	return copies
}
