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
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// Formulas over which every rule is exercised.
var wellTypedCorpus = []string{
	"(declare-const x Int)\n(declare-const y Int)\n(assert (and (>= x 5) (< y x) (distinct x y)))\n",
	"(declare-const p Bool)\n(declare-const q Bool)\n(assert (or p (not q)))\n(assert (=> p q (xor p q)))\n",
	"(declare-const s String)\n(declare-const t String)\n(assert (and (= s t) (str.prefixof s t) (str.contains t s) (str.<= s t \"abc\")))\n",
	"(declare-const s String)\n(assert (str.in_re s (re.++ (re.* (str.to_re \"a\")) (re.union (str.to_re \"b\") (re.range \"c\" \"f\")) (re.comp re.allchar))))\n",
	"(declare-const z Int)\n(assert (forall ((a Int) (b Bool)) (=> b (> a z))))\n(assert (exists ((c Int)) (= c (+ z 1))))\n",
	"(declare-const r Real)\n(assert (ite (> r 2.5) (= r 3.0) (< r 1.0)))\n",
	"(declare-fun f (Int) Int)\n(declare-const x Int)\n(assert (= (f x) (f 3)))\n",
	"(declare-const n Int)\n(declare-const w String)\n(assert (let ((m (+ n 1))) (and (> m n) (str.suffixof w \"007\"))))\n",
}

// Repeated mutation with any single rule yields well typed scripts.
func TestRules_0(t *testing.T) {
	catalog := checkCatalog(t)
	//
	for _, name := range catalog.Names() {
		for _, oracle := range []string{"sat", "unsat"} {
			for i, input := range wellTypedCorpus {
				t.Run(fmt.Sprintf("%s_%s_%d", name, oracle, i), func(t *testing.T) {
					CheckRepeated(t, oracle, name, input, 4)
				})
			}
		}
	}
}

// Repeated mutation with every rule yields well typed scripts.
func TestRules_1(t *testing.T) {
	for i, input := range wellTypedCorpus {
		for seed := range uint64(10) {
			session := newSession(t, "sat", "all", input, seed)
			//
			for range 10 {
				session.Mutate()
			}
			//
			if _, _, err := smt.ReadString(session.Script().String()); err != nil {
				t.Errorf("input %d, seed %d: %s", i, seed, err.Message())
			}
		}
	}
}

// Candidates only include applicable sites
func TestRules_2(t *testing.T) {
	catalog := checkCatalog(t)
	//
	for _, input := range wellTypedCorpus {
		session := newSession(t, "unsat", "", input, 0)
		//
		for _, name := range catalog.Names() {
			rule, _ := catalog.Lookup(name)
			//
			for _, f := range Formulas(session.Script()) {
				for _, c := range session.Candidates(f, rule, POSITIVE) {
					if !rule.IsApplicable(session.Env(), c.Term, session.Oracle().Direction(c.Parity)) {
						t.Errorf("rule %s not applicable at candidate", name)
					}
				}
			}
		}
	}
}

// CheckRepeated mutates a script a number of times with a given rule, checking
// each mutant is well typed.
func CheckRepeated(t *testing.T, oracle string, rule string, input string, n int) {
	t.Helper()
	//
	for seed := range uint64(3) {
		session := newSession(t, oracle, rule, input, seed)
		//
		for range n {
			script, ok, _ := session.Mutate()
			//
			if !ok {
				break
			} else if _, _, err := smt.ReadString(script.String()); err != nil {
				t.Fatalf("ill-typed mutant %q: %s", script.String(), err.Message())
			}
		}
	}
}

// Rewriting to the right-hand side and back gives an equivalent term.
func TestRules_3(t *testing.T) {
	var (
		strs    = "(declare-const s String)\n(declare-const u String)\n"
		bools   = "(declare-const p Bool)\n(declare-const q Bool)\n"
		oprep   = OperatorReplacement("=", "str.<=", []smt.Sort{smt.StringSort}, false)
	)
	//
	CheckRoundTrip(t, EmptyStringReplace{}, strs+"(assert (= \"\" s))\n", "\"\"", 0)
	CheckRoundTrip(t, StringPrependToEmptyReplace{}, strs+"(assert (= (str.++ s u) s))\n", "(str.++ s u)", 0)
	CheckRoundTrip(t, StringToInt{}, "(declare-const x Int)\n(assert (= 42 x))\n", "42", 0)
	CheckRoundTrip(t, oprep, strs+"(assert (str.<= s u))\n", "(str.<= s u)")
	// Only equivalent, since the double negation is kept
	CheckRoundTrip(t, OrToImp{}, bools+"(assert (or p q))\n", "(or (not (not p)) q)")
}

func TestRules_4(t *testing.T) {
	CheckAppendSuffix(t, "(re.opt (str.to_re \"a\"))", "(re.++ (re.opt (str.to_re \"a\")) (str.to_re w))")
	CheckAppendSuffix(t, "(re.union (str.to_re \"a\") (re.opt (str.to_re \"b\")))",
		"(re.union (str.to_re (str.++ \"a\" w)) (re.++ (re.opt (str.to_re \"b\")) (str.to_re w)))")
	CheckAppendSuffix(t, "(re.++ re.allchar (str.to_re \"c\"))", "(re.++ re.allchar (str.to_re (str.++ \"c\" w)))")
	CheckAppendSuffix(t, "(re.* (str.to_re \"d\"))", "(re.++ (re.* (str.to_re \"d\")) (str.to_re w))")
}

// CheckRoundTrip applies ToRHS then ToLHS to the term reached by following
// the given argument indices from the first assertion, and checks the result.
func CheckRoundTrip(t *testing.T, sides Sides, input string, expected string, path ...int) {
	t.Helper()
	//
	script, globals, err := smt.ReadString(input)
	if err != nil {
		t.Fatal(err.Message())
	}
	//
	var (
		env  = NewEnv(script.Arena, script.Asserts(), globals, rand.New(rand.NewPCG(1, 1)))
		a    = script.Arena
		term = script.Asserts()[0]
	)
	//
	for _, i := range path {
		term = a.Arg(term, i)
	}
	//
	before := a.String(term)
	//
	if !sides.MatchesLHS(env, term) {
		t.Fatalf("%s does not match left-hand side", before)
	}
	//
	sides.ToRHS(env, term)
	//
	if middle := a.String(term); middle == before {
		t.Errorf("%s unchanged by rewrite", before)
	} else if !sides.MatchesRHS(env, term) {
		t.Errorf("%s does not match right-hand side", middle)
	}
	//
	sides.ToLHS(env, term)
	//
	if after := a.String(term); after != expected {
		t.Errorf("expected %s, found %s", expected, after)
	}
	//
	CheckWellTyped(t, script)
}

// CheckAppendSuffix checks appending the string constant w to a regular
// expression.
func CheckAppendSuffix(t *testing.T, re string, expected string) {
	t.Helper()
	//
	script, _, err := smt.ReadString("(declare-const s String)\n(declare-const w String)\n" +
		"(assert (str.in_re s " + re + "))\n(assert (= w w))\n")
	if err != nil {
		t.Fatal(err.Message())
	}
	//
	var (
		a      = script.Arena
		target = a.Arg(script.Asserts()[0], 1)
		suffix = a.Arg(script.Asserts()[1], 0)
	)
	//
	appendSuffix(a, target, suffix)
	//
	if actual := a.String(target); actual != expected {
		t.Errorf("expected %s, found %s", expected, actual)
	}
	//
	CheckWellTyped(t, script)
}
