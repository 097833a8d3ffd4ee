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
package sexp

import (
	"strings"
)

// SExp is a node of an S-expression tree, being either a list or an atom
// (called a symbol here).  Every SMT-LIB command is an S-expression.
type SExp interface {
	// AsList returns this node if it is a list, or nil otherwise.
	AsList() *List
	// AsSymbol returns this node if it is a symbol, or nil otherwise.
	AsSymbol() *Symbol
	// String returns the SMT-LIB text of this node.  Atoms are printed as they
	// were read, including the delimiters of string literals and quoted
	// symbols.
	String() string
}

// List is a parenthesised sequence of zero or more S-expressions.
type List struct {
	Elements []SExp
}

var _ SExp = (*List)(nil)

// AsList implementation for SExp interface.
func (l *List) AsList() *List { return l }

// AsSymbol implementation for SExp interface.
func (l *List) AsSymbol() *Symbol { return nil }

// Len returns the number of elements of this list.
func (l *List) Len() int { return len(l.Elements) }

// Get returns the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Head returns the first element of this list when it is a symbol, such as the
// name of a command or an operator.  Otherwise, the empty string is returned.
func (l *List) Head() string {
	if len(l.Elements) > 0 {
		if s := l.Elements[0].AsSymbol(); s != nil {
			return s.Value
		}
	}
	//
	return ""
}

// MatchSymbols checks this list has at least n elements, where the first
// elements are exactly the given symbols, such as "(_ BitVec 8)".
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}
	//
	for i, symbol := range symbols {
		if s := l.Elements[i].AsSymbol(); s == nil || s.Value != symbol {
			return false
		}
	}
	//
	return true
}

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	//
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	//
	return "(" + strings.Join(parts, " ") + ")"
}

// Symbol is an atom, covering symbols, keywords, numerals, decimals,
// hexadecimal / binary literals and string literals alike.
type Symbol struct {
	Value string
}

var _ SExp = (*Symbol)(nil)

// AsList implementation for SExp interface.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol implementation for SExp interface.
func (s *Symbol) AsSymbol() *Symbol { return s }

// IsStringLiteral checks whether this atom is a double-quoted string literal.
func (s *Symbol) IsStringLiteral() bool {
	return len(s.Value) >= 2 && strings.HasPrefix(s.Value, `"`) && strings.HasSuffix(s.Value, `"`)
}

func (s *Symbol) String() string {
	return s.Value
}
