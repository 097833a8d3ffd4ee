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
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// Open subterms are never reused
func TestEnv_0(t *testing.T) {
	CheckRandomValues(t, "(declare-const x Int)\n(assert (forall ((y Int)) (> y x)))\n", smt.IntSort, "", "x")
}

func TestEnv_1(t *testing.T) {
	CheckRandomValues(t, "(declare-const x Int)\n(assert (> x 1))\n", smt.IntSort, "x", "1")
}

// Bound variables shadowing a global of another sort are not closed
func TestEnv_2(t *testing.T) {
	CheckRandomValues(t, "(declare-const x String)\n(assert (forall ((x Int)) (> x 0)))\n", smt.IntSort, "", "0")
}

func TestEnv_3(t *testing.T) {
	env := checkEnv(t, "(declare-sort U 0)\n(declare-const u U)\n(assert (= u u))\n", 0)
	//
	if env.IsRandomInstantiatable("U") || !env.IsRandomInstantiatable(smt.RegLanSort) {
		t.Errorf("unexpected instantiatable sorts")
	}
	// Declared constants can still be used
	if v := env.arena.String(env.RandomValue("U", "")); v != "u" {
		t.Errorf("expected u, found %s", v)
	}
}

func TestEnv_4(t *testing.T) {
	env := checkEnv(t, "(declare-sort U 0)\n(declare-const u U)\n(assert (= u u))\n", 0)
	//
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	//
	env.RandomValue("U", "u")
}

// Generated values of every builtin sort are well typed
func TestEnv_5(t *testing.T) {
	for seed := range uint64(20) {
		env := checkEnv(t, "(assert true)\n", seed)
		//
		for _, sort := range []smt.Sort{smt.BoolSort, smt.IntSort, smt.RealSort, smt.StringSort, smt.RegLanSort} {
			v := env.RandomValue(sort, "")
			//
			if s := env.arena.Sort(v); s != sort {
				t.Errorf("expected sort %s, found %s", sort, s)
			}
			//
			if sort == smt.BoolSort || sort == smt.RegLanSort {
				continue
			}
			// Check the value reads back
			text := "(declare-const z " + string(sort) + ")\n(assert (= z " + env.arena.String(v) + "))\n"
			if _, _, err := smt.ReadString(text); err != nil {
				t.Errorf("ill-typed value %s: %s", env.arena.String(v), err.Message())
			}
		}
	}
}

// Reused values are copies
func TestEnv_6(t *testing.T) {
	env := checkEnv(t, "(declare-const x Int)\n(assert (> (+ x 1) 1))\n", 0)
	v := env.RandomValue(smt.IntSort, "")
	w := env.RandomValue(smt.IntSort, "")
	//
	if v == w {
		t.Errorf("random values are shared")
	}
}

func CheckRandomValues(t *testing.T, input string, sort smt.Sort, avoid string, expected string) {
	t.Helper()
	//
	for seed := range uint64(20) {
		env := checkEnv(t, input, seed)
		//
		if v := env.arena.String(env.RandomValue(sort, avoid)); v != expected {
			t.Errorf("expected %s, found %s", expected, v)
		}
	}
}

func checkEnv(t *testing.T, input string, seed uint64) *Env {
	t.Helper()
	//
	script, globals, err := smt.ReadString(input)
	if err != nil {
		t.Fatal(err.Message())
	}
	//
	return NewEnv(script.Arena, script.Asserts(), globals, rand.New(rand.NewPCG(seed, seed)))
}
