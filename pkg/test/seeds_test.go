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
package test

import (
	"testing"
)

// ===================================================================
// Satisfiable Seeds
// ===================================================================

func Test_Sat_Lia_01(t *testing.T) {
	Check(t, "sat/lia_01")
}

func Test_Sat_Lia_02(t *testing.T) {
	Check(t, "sat/lia_02")
}

func Test_Sat_Strings_01(t *testing.T) {
	Check(t, "sat/strings_01")
}

func Test_Sat_Strings_02(t *testing.T) {
	Check(t, "sat/strings_02")
}

func Test_Sat_Regex_01(t *testing.T) {
	Check(t, "sat/regex_01")
}

func Test_Sat_Quant_01(t *testing.T) {
	Check(t, "sat/quant_01")
}

func Test_Sat_Let_01(t *testing.T) {
	Check(t, "sat/let_01")
}

// ===================================================================
// Unsatisfiable Seeds
// ===================================================================

func Test_Unsat_Lia_01(t *testing.T) {
	Check(t, "unsat/lia_01")
}

func Test_Unsat_Strings_01(t *testing.T) {
	Check(t, "unsat/strings_01")
}

func Test_Unsat_Regex_01(t *testing.T) {
	Check(t, "unsat/regex_01")
}

func Test_Unsat_Uf_01(t *testing.T) {
	Check(t, "unsat/uf_01")
}

func Test_Unsat_Bool_01(t *testing.T) {
	Check(t, "unsat/bool_01")
}

// ===================================================================
// Invalid Scripts
// ===================================================================

func Test_Invalid_UnknownSymbol(t *testing.T) {
	CheckInvalid(t, "unknown_symbol")
}

func Test_Invalid_IllSorted(t *testing.T) {
	CheckInvalid(t, "ill_sorted")
}

func Test_Invalid_NonBoolAssert(t *testing.T) {
	CheckInvalid(t, "non_bool_assert")
}

func Test_Invalid_Arity(t *testing.T) {
	CheckInvalid(t, "arity")
}

func Test_Invalid_Unbalanced(t *testing.T) {
	CheckInvalid(t, "unbalanced")
}

func Test_Invalid_Redeclared(t *testing.T) {
	CheckInvalid(t, "redeclared")
}

func Test_Invalid_Datatypes(t *testing.T) {
	CheckInvalid(t, "datatypes")
}
