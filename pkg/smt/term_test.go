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
package smt

import (
	"reflect"
	"slices"
	"testing"
)

func TestArena_0(t *testing.T) {
	var (
		arena = NewArena()
		x     = arena.Symbol("x", IntSort)
		five  = arena.Int(5)
		geq   = arena.App(">=", BoolSort, x, five)
	)
	//
	CheckString(t, arena, geq, "(>= x 5)")
	// Overwriting a slot is visible through existing handles
	arena.SetOp(geq, "=")
	CheckString(t, arena, geq, "(= x 5)")
	//
	arena.SetArg(geq, 1, arena.Int(-3))
	CheckString(t, arena, geq, "(= x (- 3))")
}

func TestArena_1(t *testing.T) {
	var (
		arena = NewArena()
		p     = arena.Symbol("p", BoolSort)
		q     = arena.Symbol("q", BoolSort)
		and   = arena.App("and", BoolSort, p, q)
		root  = arena.App("not", BoolSort, and)
	)
	// Wrap (and p q) in place as (or (and p q) true)
	inner := arena.Relocate(and)
	arena.Set(and, Node{Kind: ApplyTerm, Op: "or", Args: []TermID{inner, arena.True()}, Sort: BoolSort})
	//
	CheckString(t, arena, root, "(not (or (and p q) true))")
	// Collapse (or ...) into its first argument
	arena.Collapse(and, inner)
	CheckString(t, arena, root, "(not (and p q))")
}

func TestArena_2(t *testing.T) {
	var (
		arena = NewArena()
		x     = arena.Symbol("x", IntSort)
		y     = arena.Symbol("y", IntSort)
		eq    = arena.App("=", BoolSort, x, y)
	)
	// Overwrite a term with one of its own subterms
	arena.Overwrite(eq, x)
	CheckString(t, arena, eq, "x")
	//
	if arena.Sort(eq) != IntSort {
		t.Errorf("unexpected sort %s", arena.Sort(eq))
	}
}

func TestArena_3(t *testing.T) {
	var (
		arena = NewArena()
		x     = arena.Symbol("x", IntSort)
		y     = arena.Symbol("y", IntSort)
		x2    = arena.Symbol("x", IntSort)
		eq    = arena.App("=", BoolSort, x, y)
		and   = arena.App("and", BoolSort, eq, arena.App(">", BoolSort, x2, arena.Int(0)))
		all   = arena.Quantified("forall", []Binder{{"y", IntSort}}, and)
	)
	//
	CheckFree(t, arena, all, map[string][]TermID{"x": {x, x2}})
	CheckFree(t, arena, and, map[string][]TermID{"x": {x, x2}, "y": {y}})
}

func TestArena_4(t *testing.T) {
	var (
		arena = NewArena()
		y1    = arena.Symbol("y", IntSort)
		y2    = arena.Symbol("y", IntSort)
		body  = arena.App(">", BoolSort, y2, arena.Int(1))
		let   = arena.Let([]string{"y"}, []TermID{arena.App("+", IntSort, y1, arena.Int(1))}, body)
	)
	// the bound value is outside the scope of the binding
	CheckFree(t, arena, let, map[string][]TermID{"y": {y1}})
	CheckString(t, arena, let, "(let ((y (+ y 1))) (> y 1))")
}

func TestArena_5(t *testing.T) {
	var (
		arena = NewArena()
		x0    = arena.Symbol("x0", IntSort)
		x2    = arena.Symbol("x2", IntSort)
		t1    = arena.App("=", BoolSort, x0, x2)
	)
	//
	if name := arena.FreshVariable(nil, t1); name != "x1" {
		t.Errorf("expected x1, found %s", name)
	} else if name := arena.FreshVariable([]string{"x1"}, t1); name != "x3" {
		t.Errorf("expected x3, found %s", name)
	}
}

func TestArena_6(t *testing.T) {
	var (
		src  = NewArena()
		x    = src.Symbol("x", IntSort)
		term = src.App("<", BoolSort, x, src.Int(2))
		dst  = NewArena()
	)
	//
	dst.Literal("true", BoolSort)
	copied := dst.Import(src, term)
	//
	CheckString(t, dst, copied, "(< x 2)")
	// Copies are independent
	dst.SetOp(copied, ">")
	CheckString(t, src, term, "(< x 2)")
	//
	if !src.Equal(term, src.Copy(term)) {
		t.Errorf("copy not equal to original")
	}
}

func TestArena_7(t *testing.T) {
	script, _, err := ReadString("(declare-fun x () Int)\n(assert (> x 1))\n(check-sat)\n")
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	clone := script.Clone()
	clone.Arena.SetOp(clone.Asserts()[0], "<")
	//
	if script.String() != "(declare-fun x () Int)\n(assert (> x 1))\n(check-sat)\n" {
		t.Errorf("original modified: %s", script.String())
	} else if clone.String() != "(declare-fun x () Int)\n(assert (< x 1))\n(check-sat)\n" {
		t.Errorf("clone not modified: %s", clone.String())
	}
}

func TestArena_8(t *testing.T) {
	var (
		arena = NewArena()
		s     = arena.StringLit("a\"b")
		sub   = arena.Subterms(arena.App("str.++", StringSort, s, arena.StringLit("")))
	)
	//
	CheckString(t, arena, s, "\"a\"\"b\"")
	//
	if contents, ok := UnquoteString(arena.Op(s)); !ok || contents != "a\"b" {
		t.Errorf("unexpected contents %q", contents)
	} else if len(sub) != 3 || sub[1] != s {
		t.Errorf("unexpected subterms %v", sub)
	}
}

func TestSort_0(t *testing.T) {
	if index, element, ok := Sort("(Array Int (Array Int Bool))").Array(); !ok {
		t.Errorf("expected array sort")
	} else if index != IntSort || element != "(Array Int Bool)" {
		t.Errorf("unexpected components %s %s", index, element)
	} else if _, _, ok := IntSort.Array(); ok {
		t.Errorf("Int is not an array sort")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func CheckString(t *testing.T, arena *Arena, term TermID, expected string) {
	if actual := arena.String(term); actual != expected {
		t.Errorf("%s != %s", actual, expected)
	}
}

func CheckFree(t *testing.T, arena *Arena, term TermID, expected map[string][]TermID) {
	actual := arena.FreeVariables(term)
	//
	for _, sites := range actual {
		slices.Sort(sites)
	}
	//
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%v != %v", actual, expected)
	}
}
