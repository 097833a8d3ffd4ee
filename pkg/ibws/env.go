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
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Env is the context in which rules are checked and applied.  It provides
// access to the arena being rewritten, and to random values which are either
// reused from the original formulas or synthesised from scratch.
type Env struct {
	arena   *smt.Arena
	globals *smt.Globals
	rand    *rand.Rand
	// Pool of reusable terms, drawn from a snapshot of the formulas taken
	// before any mutation.
	pool *smt.Arena
	// Pool terms indexed by sort, in pre-order of the original formulas.
	reusable map[smt.Sort][]pooled
}

// A reusable pool term, along with the variables occurring free in it.
type pooled struct {
	term TermID
	free map[string][]smt.TermID
}

// TermID is a shorthand for terms held in an arena.
type TermID = smt.TermID

// NewEnv constructs an environment for rewriting terms of a given arena.  The
// given formulas are snapshotted to form the pool of reusable terms.
func NewEnv(arena *smt.Arena, formulas []TermID, globals *smt.Globals, rng *rand.Rand) *Env {
	var (
		pool     = smt.NewArena()
		reusable = make(map[smt.Sort][]pooled)
	)
	//
	for _, formula := range formulas {
		root := pool.Import(arena, formula)
		//
		for _, t := range pool.Subterms(root) {
			free := pool.FreeVariables(t)
			// Only closed terms (with respect to the globals) can be reused
			if closed(pool, free, globals) {
				sort := pool.Sort(t)
				reusable[sort] = append(reusable[sort], pooled{t, free})
			}
		}
	}
	//
	return &Env{arena, globals, rng, pool, reusable}
}

// Arena returns the arena being rewritten.
func (e *Env) Arena() *smt.Arena {
	return e.arena
}

// Globals returns the symbol table of the script being rewritten.
func (e *Env) Globals() *smt.Globals {
	return e.globals
}

// Rand returns the source of randomness for rewrites.
func (e *Env) Rand() *rand.Rand {
	return e.rand
}

// IsRandomInstantiatable checks whether random values of a given sort can
// always be produced.
func (e *Env) IsRandomInstantiatable(sort smt.Sort) bool {
	return Generates(sort)
}

// RandomValue produces a fresh term of a given sort in which a given variable
// (if non-empty) does not occur free.  Terms from the pool and declared
// constants are preferred, falling back to a sort-specific generator.  This
// panics if the sort is neither represented in the pool nor generatable.
func (e *Env) RandomValue(sort smt.Sort, avoid string) TermID {
	var candidates []TermID
	//
	for _, p := range e.reusable[sort] {
		if _, ok := p.free[avoid]; avoid == "" || !ok {
			candidates = append(candidates, p.term)
		}
	}
	//
	n := len(candidates)
	constants := e.constants(sort, avoid)
	//
	if total := n + len(constants); total > 0 {
		i := e.rand.IntN(total)
		//
		if i < n {
			return e.arena.Import(e.pool, candidates[i])
		}
		//
		return e.arena.Symbol(constants[i-n], sort)
	}
	//
	if t, ok := e.generate(sort); ok {
		return t
	}
	//
	panic(fmt.Sprintf("cannot generate random values of sort %s", sort))
}

// Declared constants of a given sort, excluding the variable to avoid.
func (e *Env) constants(sort smt.Sort, avoid string) []string {
	var names []string
	//
	for _, decl := range e.globals.Constants() {
		if decl.Result == sort && decl.Name != avoid {
			names = append(names, decl.Name)
		}
	}
	//
	return names
}

// Generates checks whether random values of a given sort can be synthesised
// from scratch.  Uninterpreted and parametric sorts cannot.
func Generates(sort smt.Sort) bool {
	switch sort {
	case smt.BoolSort, smt.IntSort, smt.RealSort, smt.StringSort, smt.RegLanSort:
		return true
	}
	//
	return false
}

func (e *Env) generate(sort smt.Sort) (TermID, bool) {
	switch sort {
	case smt.BoolSort:
		if e.rand.IntN(2) == 0 {
			return e.arena.True(), true
		}
		//
		return e.arena.False(), true
	case smt.IntSort:
		n := e.rand.IntN(10000)
		//
		if e.rand.IntN(2) == 0 {
			return e.arena.Literal(strconv.Itoa(n), smt.IntSort), true
		}
		// non-positive
		return e.arena.App("-", smt.IntSort, e.arena.Literal(strconv.Itoa(n), smt.IntSort)), true
	case smt.RealSort:
		value := (1.5 + 0.4*e.rand.Float64()) * math.Pow10(e.rand.IntN(10))
		text := strconv.FormatFloat(value, 'f', -1, 64)
		//
		if !strings.Contains(text, ".") {
			text = text + ".0"
		}
		//
		return e.arena.Literal(text, smt.RealSort), true
	case smt.StringSort:
		var builder strings.Builder
		//
		for n := e.rand.IntN(10); n > 0; n-- {
			builder.WriteByte(letters[e.rand.IntN(len(letters))])
		}
		//
		return e.arena.StringLit(builder.String()), true
	case smt.RegLanSort:
		args := make([]TermID, 3)
		//
		for i := range args {
			args[i] = e.arena.App("str.to_re", smt.RegLanSort, e.RandomValue(smt.StringSort, ""))
		}
		//
		return e.arena.App("re.union", smt.RegLanSort, args...), true
	}
	//
	return 0, false
}

// Check every free variable of a term is a declared constant of the same
// sort.
func closed(arena *smt.Arena, free map[string][]smt.TermID, globals *smt.Globals) bool {
	for name, sites := range free {
		decl, ok := globals.Lookup(name)
		//
		if !ok || !decl.IsConstant() {
			return false
		}
		//
		for _, site := range sites {
			if arena.Sort(site) != decl.Result {
				return false
			}
		}
	}
	//
	return true
}
