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
	"testing"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

func TestHomomorphism_0(t *testing.T) {
	for name, h := range homomorphisms() {
		if err := h.Validate(); err != nil {
			t.Errorf("homomorphism %s: %s", name, err)
		}
	}
}

func TestHomomorphism_1(t *testing.T) {
	CheckInvalid(t, &Homomorphism{R: "=", S: "=", F: Identity()})
}

func TestHomomorphism_2(t *testing.T) {
	CheckInvalid(t, &Homomorphism{R: "=", Sorts: []SortPair{{smt.IntSort, smt.IntSort}}, F: Identity()})
}

func TestHomomorphism_3(t *testing.T) {
	CheckInvalid(t, homomorphism("=", smt.IntSort, "=", smt.StringSort, Identity()))
}

func TestHomomorphism_4(t *testing.T) {
	CheckInvalid(t, homomorphism("=", smt.IntSort, "=", smt.IntSort, Named("")))
}

// Parameters must be generatable
func TestHomomorphism_5(t *testing.T) {
	body := func(_ *smt.Arena, _ []TermID, x TermID) TermID { return x }
	CheckInvalid(t, homomorphism("=", smt.IntSort, "=", smt.IntSort, Parametric([]smt.Sort{"U"}, body)))
}

func TestHomomorphism_6(t *testing.T) {
	CheckInvalid(t, homomorphism("=", smt.IntSort, "=", smt.IntSort, Parametric(nil, nil)))
}

func TestHomomorphism_7(t *testing.T) {
	if r := Reversed([]TermID{1, 2, 3}); !slices.Equal(r, []TermID{3, 2, 1}) {
		t.Errorf("unexpected reversal %v", r)
	}
}

// Only plain operator replacements can be reversed
func TestHomomorphism_8(t *testing.T) {
	var (
		script, globals, _ = smt.ReadString("(declare-const x Int)\n(declare-const y Int)\n(assert (= x y))\n")
		env                = NewEnv(script.Arena, script.Asserts(), globals, nil)
		term               = script.Asserts()[0]
	)
	//
	if !OperatorReplacement("=", ">=", []smt.Sort{smt.IntSort}, false).MatchesRHS(env, term) {
		t.Errorf("operator replacement should match")
	}
	//
	if OperatorReplacement("=", ">=", []smt.Sort{smt.IntSort}, true).MatchesRHS(env, term) {
		t.Errorf("reversed operator replacement should not match")
	}
	//
	if RelationPreservingAutomorphism("=", Named("-"), smt.IntSort).MatchesRHS(env, term) {
		t.Errorf("named automorphism should not match")
	}
	//
	if !RelationPreservingAutomorphism("=", Named("-"), smt.IntSort).MatchesLHS(env, term) {
		t.Errorf("named automorphism should match")
	}
}

func CheckInvalid(t *testing.T, h *Homomorphism) {
	t.Helper()
	//
	if err := h.Validate(); err == nil {
		t.Errorf("expected homomorphism %s -> %s to be invalid", h.R, h.S)
	}
}
