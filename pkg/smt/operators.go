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
	"fmt"
	"strings"
)

// Signature determines the result sort of an operator application from the
// sorts of its arguments.  An error is returned when the arguments are not
// acceptable.
type Signature func(args []Sort) (Sort, error)

// Fixed constructs a signature for an operator with exactly the given
// parameter sorts.
func Fixed(result Sort, params ...Sort) Signature {
	return func(args []Sort) (Sort, error) {
		if len(args) != len(params) {
			return NoSort, fmt.Errorf("expected %d arguments, found %d", len(params), len(args))
		}
		//
		for i, arg := range args {
			if arg != params[i] {
				return NoSort, fmt.Errorf("argument %d has sort %s, expected %s", i+1, arg, params[i])
			}
		}
		//
		return result, nil
	}
}

// Variadic constructs a signature for an operator accepting at least n
// arguments of a given sort.
func Variadic(n int, param Sort, result Sort) Signature {
	return func(args []Sort) (Sort, error) {
		if len(args) < n {
			return NoSort, fmt.Errorf("expected at least %d arguments, found %d", n, len(args))
		}
		//
		for i, arg := range args {
			if arg != param {
				return NoSort, fmt.Errorf("argument %d has sort %s, expected %s", i+1, arg, param)
			}
		}
		//
		return result, nil
	}
}

// Arithmetic constructs a signature for an operator over at least n numeric
// arguments.  The result is Int when every argument is Int, otherwise it is
// Real.  A fixed result sort can be given to override this.
func Arithmetic(n int, result Sort) Signature {
	return func(args []Sort) (Sort, error) {
		if len(args) < n {
			return NoSort, fmt.Errorf("expected at least %d arguments, found %d", n, len(args))
		}
		//
		sort := IntSort
		//
		for i, arg := range args {
			if !arg.IsNumeric() {
				return NoSort, fmt.Errorf("argument %d has sort %s, expected Int or Real", i+1, arg)
			} else if arg == RealSort {
				sort = RealSort
			}
		}
		//
		if result != NoSort {
			return result, nil
		}
		//
		return sort, nil
	}
}

// Polymorphic constructs a signature for an operator over at least two
// arguments of the same (arbitrary) sort, such as = or distinct.
func Polymorphic(result Sort) Signature {
	return func(args []Sort) (Sort, error) {
		if len(args) < 2 {
			return NoSort, fmt.Errorf("expected at least 2 arguments, found %d", len(args))
		}
		//
		for i, arg := range args {
			if arg != args[0] && !(arg.IsNumeric() && args[0].IsNumeric()) {
				return NoSort, fmt.Errorf("argument %d has sort %s, expected %s", i+1, arg, args[0])
			}
		}
		//
		return result, nil
	}
}

func ite(args []Sort) (Sort, error) {
	if len(args) != 3 {
		return NoSort, fmt.Errorf("expected 3 arguments, found %d", len(args))
	} else if args[0] != BoolSort {
		return NoSort, fmt.Errorf("condition has sort %s, expected Bool", args[0])
	} else if args[1] != args[2] {
		return NoSort, fmt.Errorf("branches have sorts %s and %s", args[1], args[2])
	}
	//
	return args[1], nil
}

func selectArray(args []Sort) (Sort, error) {
	if len(args) != 2 {
		return NoSort, fmt.Errorf("expected 2 arguments, found %d", len(args))
	}
	//
	index, element, ok := args[0].Array()
	//
	if !ok {
		return NoSort, fmt.Errorf("expected array, found %s", args[0])
	} else if index != args[1] {
		return NoSort, fmt.Errorf("index has sort %s, expected %s", args[1], index)
	}
	//
	return element, nil
}

func storeArray(args []Sort) (Sort, error) {
	if len(args) != 3 {
		return NoSort, fmt.Errorf("expected 3 arguments, found %d", len(args))
	}
	//
	index, element, ok := args[0].Array()
	//
	if !ok {
		return NoSort, fmt.Errorf("expected array, found %s", args[0])
	} else if index != args[1] {
		return NoSort, fmt.Errorf("index has sort %s, expected %s", args[1], index)
	} else if element != args[2] {
		return NoSort, fmt.Errorf("element has sort %s, expected %s", args[2], element)
	}
	//
	return args[0], nil
}

// Operators maps every builtin operator to its signature.
var Operators = map[string]Signature{
	// Core
	"not":      Fixed(BoolSort, BoolSort),
	"and":      Variadic(1, BoolSort, BoolSort),
	"or":       Variadic(1, BoolSort, BoolSort),
	"xor":      Variadic(2, BoolSort, BoolSort),
	"=>":       Variadic(2, BoolSort, BoolSort),
	"implies":  Variadic(2, BoolSort, BoolSort),
	"=":        Polymorphic(BoolSort),
	"distinct": Polymorphic(BoolSort),
	"ite":      ite,
	// Integers and reals
	"+":       Arithmetic(1, NoSort),
	"-":       Arithmetic(1, NoSort),
	"*":       Arithmetic(1, NoSort),
	"/":       Arithmetic(2, RealSort),
	"div":     Variadic(2, IntSort, IntSort),
	"mod":     Fixed(IntSort, IntSort, IntSort),
	"abs":     Fixed(IntSort, IntSort),
	"<":       Arithmetic(2, BoolSort),
	"<=":      Arithmetic(2, BoolSort),
	">":       Arithmetic(2, BoolSort),
	">=":      Arithmetic(2, BoolSort),
	"to_real": Fixed(RealSort, IntSort),
	"to_int":  Fixed(IntSort, RealSort),
	"is_int":  Fixed(BoolSort, RealSort),
	// Strings
	"str.++":             Variadic(1, StringSort, StringSort),
	"str.len":            Fixed(IntSort, StringSort),
	"str.<":              Variadic(2, StringSort, BoolSort),
	"str.<=":             Variadic(2, StringSort, BoolSort),
	"str.at":             Fixed(StringSort, StringSort, IntSort),
	"str.substr":         Fixed(StringSort, StringSort, IntSort, IntSort),
	"str.prefixof":       Fixed(BoolSort, StringSort, StringSort),
	"str.suffixof":       Fixed(BoolSort, StringSort, StringSort),
	"str.contains":       Fixed(BoolSort, StringSort, StringSort),
	"str.indexof":        Fixed(IntSort, StringSort, StringSort, IntSort),
	"str.replace":        Fixed(StringSort, StringSort, StringSort, StringSort),
	"str.replace_all":    Fixed(StringSort, StringSort, StringSort, StringSort),
	"str.replace_re":     Fixed(StringSort, StringSort, RegLanSort, StringSort),
	"str.replace_re_all": Fixed(StringSort, StringSort, RegLanSort, StringSort),
	"str.is_digit":       Fixed(BoolSort, StringSort),
	"str.to_code":        Fixed(IntSort, StringSort),
	"str.from_code":      Fixed(StringSort, IntSort),
	"str.to_int":         Fixed(IntSort, StringSort),
	"str.to.int":         Fixed(IntSort, StringSort),
	"str.from_int":       Fixed(StringSort, IntSort),
	"int.to.str":         Fixed(StringSort, IntSort),
	"str.in_re":          Fixed(BoolSort, StringSort, RegLanSort),
	"str.in.re":          Fixed(BoolSort, StringSort, RegLanSort),
	// Regular languages
	"str.to_re": Fixed(RegLanSort, StringSort),
	"str.to.re": Fixed(RegLanSort, StringSort),
	"re.++":     Variadic(1, RegLanSort, RegLanSort),
	"re.union":  Variadic(1, RegLanSort, RegLanSort),
	"re.inter":  Variadic(1, RegLanSort, RegLanSort),
	"re.diff":   Fixed(RegLanSort, RegLanSort, RegLanSort),
	"re.*":      Fixed(RegLanSort, RegLanSort),
	"re.+":      Fixed(RegLanSort, RegLanSort),
	"re.opt":    Fixed(RegLanSort, RegLanSort),
	"re.comp":   Fixed(RegLanSort, RegLanSort),
	"re.range":  Fixed(RegLanSort, StringSort, StringSort),
	// Arrays
	"select": selectArray,
	"store":  storeArray,
}

// IndexedOperators maps indexed operators, written (_ op i1 ... in), to
// their signatures.  Indices must be numerals.
var IndexedOperators = map[string]struct {
	Indices   int
	Signature Signature
}{
	"re.loop": {2, Fixed(RegLanSort, RegLanSort)},
	"re.^":    {1, Fixed(RegLanSort, RegLanSort)},
}

// RegexConstants are the nullary regular language constants.
var RegexConstants = []string{"re.none", "re.all", "re.allchar"}

// IndexedOp constructs the text of an indexed operator, such as
// "(_ re.loop 1 5)".
func IndexedOp(op string, indices ...int) string {
	var builder strings.Builder
	//
	builder.WriteString("(_ ")
	builder.WriteString(op)
	//
	for _, index := range indices {
		fmt.Fprintf(&builder, " %d", index)
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
