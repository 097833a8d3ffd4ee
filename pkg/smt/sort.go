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
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/util/source"
	"github.com/consensys/go-smtfuzz/pkg/util/source/sexp"
)

// Sort is the canonical SMT-LIB text of a sort, such as "Int" or
// "(Array Int Bool)".  Two sorts are the same if their texts are equal.
type Sort string

// BoolSort is the sort of formulas.
const BoolSort Sort = "Bool"

// IntSort is the sort of mathematical integers.
const IntSort Sort = "Int"

// RealSort is the sort of mathematical reals.
const RealSort Sort = "Real"

// StringSort is the sort of unicode strings.
const StringSort Sort = "String"

// RegLanSort is the sort of regular languages over strings.
const RegLanSort Sort = "RegLan"

// NoSort is used for terms whose sort could not be determined.
const NoSort Sort = ""

// IsNumeric checks whether this is either Int or Real.
func (s Sort) IsNumeric() bool {
	return s == IntSort || s == RealSort
}

// IsBuiltin checks whether this is one of the sorts defined by the core,
// integer, real and string theories.
func (s Sort) IsBuiltin() bool {
	switch s {
	case BoolSort, IntSort, RealSort, StringSort, RegLanSort:
		return true
	}
	//
	return false
}

// Array decomposes an array sort into its index and element sorts.
func (s Sort) Array() (Sort, Sort, bool) {
	if !strings.HasPrefix(string(s), "(Array ") {
		return NoSort, NoSort, false
	}
	//
	srcfile := source.NewSourceFile("<sort>", []byte(s))
	//
	term, _, err := sexp.Parse(srcfile)
	if err != nil || term.AsList() == nil {
		return NoSort, NoSort, false
	}
	//
	list := term.AsList()
	if list.Len() != 3 {
		return NoSort, NoSort, false
	}
	//
	return SortOf(list.Get(1)), SortOf(list.Get(2)), true
}

func (s Sort) String() string {
	return string(s)
}

// SortOf converts an S-Expression into a sort.  This does not check the sort
// has been declared.
func SortOf(e sexp.SExp) Sort {
	return Sort(e.String())
}
