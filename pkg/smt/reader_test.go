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
	"testing"
)

// ============================================================================
// Positive Tests
// ============================================================================

func TestReader_0(t *testing.T) {
	CheckRead(t, "(declare-const x Int)\n(assert (>= x 5))\n")
}

func TestReader_1(t *testing.T) {
	CheckRead(t, "(set-logic QF_S)\n(declare-fun s () String)\n(assert (str.in_re s (re.* (str.to_re \"ab\"))))\n(check-sat)\n")
}

func TestReader_2(t *testing.T) {
	CheckRead(t, "(declare-fun x () Int)\n(assert (forall ((y Int) (z Int)) (=> (> y x) (> z 0))))\n")
}

func TestReader_3(t *testing.T) {
	CheckRead(t, "(declare-fun s () String)\n(assert (let ((n (str.len s)) (b true)) (and b (> n 1))))\n")
}

func TestReader_4(t *testing.T) {
	CheckRead(t, "(declare-fun s () String)\n(assert (str.in_re s ((_ re.loop 1 3) (re.range \"a\" \"z\"))))\n")
}

func TestReader_5(t *testing.T) {
	CheckRead(t, "(declare-sort U 0)\n(declare-fun f (U) U)\n(declare-fun u () U)\n(assert (= (f u) u))\n")
}

func TestReader_6(t *testing.T) {
	CheckRead(t, "(declare-fun a () (Array Int Int))\n(assert (= (select (store a 1 2) 1) 2))\n")
}

func TestReader_7(t *testing.T) {
	CheckRead(t, "(define-fun c () Int 3)\n(declare-fun r () Real)\n(assert (< r 2.5))\n(assert (= c 3))\n")
}

func TestReader_8(t *testing.T) {
	CheckRead(t, "(declare-fun p () Bool)\n(assert (ite p (distinct 1 2) (xor p p)))\n")
}

// Annotations are dropped
func TestReader_9(t *testing.T) {
	CheckReadAs(t, "(declare-fun p () Bool)\n(assert (! p :named a1))\n", "(declare-fun p () Bool)\n(assert p)\n")
}

// Comments are dropped
func TestReader_10(t *testing.T) {
	CheckReadAs(t, "; seed\n(declare-fun p () Bool) ; decl\n(assert p)\n", "(declare-fun p () Bool)\n(assert p)\n")
}

func TestReader_11(t *testing.T) {
	CheckSort(t, "(declare-fun s () String)", "(str.len s)", IntSort)
	CheckSort(t, "(declare-fun s () String)", "(str.to_int s)", IntSort)
	CheckSort(t, "(declare-fun s () String)", "(str.++ s \"a\")", StringSort)
	CheckSort(t, "(declare-fun s () String)", "(re.union (str.to_re s) re.allchar)", RegLanSort)
	CheckSort(t, "(declare-fun x () Int)", "(+ x 1)", IntSort)
	CheckSort(t, "(declare-fun x () Int)", "(+ x 1.5)", RealSort)
	CheckSort(t, "(declare-fun x () Int)", "(ite true x 2)", IntSort)
	CheckSort(t, "(declare-fun x () Real)", "(to_int x)", IntSort)
}

func TestReader_12(t *testing.T) {
	script, globals, err := ReadString("(declare-fun x () Int)\n(declare-fun f (Int) Bool)\n(declare-const y Real)\n")
	//
	if err != nil {
		t.Fatal(err)
	} else if len(script.Asserts()) != 0 {
		t.Errorf("unexpected assertions")
	} else if globals.Len() != 3 {
		t.Errorf("expected 3 globals, found %d", globals.Len())
	} else if constants := globals.Constants(); len(constants) != 2 || constants[0].Name != "x" || constants[1].Name != "y" {
		t.Errorf("unexpected constants %v", constants)
	} else if decl, ok := globals.Lookup("f"); !ok || len(decl.Params) != 1 || decl.Result != BoolSort {
		t.Errorf("unexpected declaration %v", decl)
	}
}

// ============================================================================
// Negative Tests
// ============================================================================

// unknown symbol
func TestReader_Err1(t *testing.T) {
	CheckReadErr(t, "(assert (> x 1))")
}

// asserting a non-boolean
func TestReader_Err2(t *testing.T) {
	CheckReadErr(t, "(declare-fun x () Int)\n(assert (+ x 1))")
}

// sort mismatch
func TestReader_Err3(t *testing.T) {
	CheckReadErr(t, "(declare-fun x () Int)\n(assert (str.prefixof x \"a\"))")
}

// duplicate declaration
func TestReader_Err4(t *testing.T) {
	CheckReadErr(t, "(declare-fun x () Int)\n(declare-fun x () Int)")
}

// unknown sort
func TestReader_Err5(t *testing.T) {
	CheckReadErr(t, "(declare-fun x () Foo)")
}

// wrong arity
func TestReader_Err6(t *testing.T) {
	CheckReadErr(t, "(declare-fun f (Int) Bool)\n(assert (f 1 2))")
}

// bound variable out of scope
func TestReader_Err7(t *testing.T) {
	CheckReadErr(t, "(assert (and (forall ((y Int)) (> y 0)) (> y 1)))")
}

// malformed
func TestReader_Err8(t *testing.T) {
	CheckReadErr(t, "(assert (> 1 0)")
}

// indices must be numerals
func TestReader_Err9(t *testing.T) {
	CheckReadErr(t, "(declare-fun s () String)\n(assert (str.in_re s ((_ re.^ n) re.allchar)))")
}

func TestReader_Err10(t *testing.T) {
	_, _, err := ReadString("(declare-fun x () Int)\n(assert (> y 1))")
	//
	if err == nil {
		t.Fatal("input should not have parsed!")
	} else if line := err.FirstEnclosingLine(); line.Number() != 2 {
		t.Errorf("error reported on line %d", line.Number())
	}
}

// algebraic datatypes are not supported
func TestReader_Err11(t *testing.T) {
	_, _, err := ReadString("(declare-datatypes ((L 0)) (((nil) (cons (hd Int) (tl L)))))\n(declare-fun l () L)")
	//
	if err == nil {
		t.Fatal("input should not have parsed!")
	} else if err.Message() != "unsupported command declare-datatypes" {
		t.Errorf("unexpected error %q", err.Message())
	}
}

// ============================================================================
// Helpers
// ============================================================================

func CheckRead(t *testing.T, input string) {
	CheckReadAs(t, input, input)
}

func CheckReadAs(t *testing.T, input string, expected string) {
	script, _, err := ReadString(input)
	//
	if err != nil {
		t.Error(err)
	} else if script.String() != expected {
		t.Errorf("%q != %q", script.String(), expected)
	}
}

func CheckSort(t *testing.T, decls string, term string, expected Sort) {
	script, _, err := ReadString(decls + "\n(assert (= " + term + " " + term + "))")
	//
	if err != nil {
		t.Error(err)
		return
	}
	//
	eq := script.Asserts()[0]
	//
	if sort := script.Arena.Sort(script.Arena.Arg(eq, 0)); sort != expected {
		t.Errorf("%s has sort %s, expected %s", term, sort, expected)
	}
}

func CheckReadErr(t *testing.T, input string) {
	_, _, err := ReadString(input)
	//
	if err == nil {
		t.Errorf("input should not have parsed!")
	}
}
