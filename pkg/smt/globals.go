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
	"slices"
)

// FunDecl describes a declared function symbol.  Constants are functions
// without parameters.
type FunDecl struct {
	Name   string
	Params []Sort
	Result Sort
}

// IsConstant checks whether this declaration has no parameters.
func (d *FunDecl) IsConstant() bool {
	return len(d.Params) == 0
}

// Globals is the symbol table of a script.  It records the declared functions
// (in declaration order) and the declared uninterpreted sorts.
type Globals struct {
	order []string
	decls map[string]FunDecl
	sorts map[Sort]uint
}

// NewGlobals constructs an empty symbol table.
func NewGlobals() *Globals {
	return &Globals{nil, make(map[string]FunDecl), make(map[Sort]uint)}
}

// Declare a new function (or constant) symbol.  An error is returned if the
// symbol is already declared.
func (g *Globals) Declare(name string, params []Sort, result Sort) error {
	if _, ok := g.decls[name]; ok {
		return fmt.Errorf("symbol %s already declared", name)
	}
	//
	g.order = append(g.order, name)
	g.decls[name] = FunDecl{name, slices.Clone(params), result}
	//
	return nil
}

// DeclareSort declares a new uninterpreted sort of a given arity.
func (g *Globals) DeclareSort(name Sort, arity uint) error {
	if _, ok := g.sorts[name]; ok || name.IsBuiltin() {
		return fmt.Errorf("sort %s already declared", name)
	}
	//
	g.sorts[name] = arity
	//
	return nil
}

// HasSort checks whether a given uninterpreted sort was declared.
func (g *Globals) HasSort(name Sort) bool {
	_, ok := g.sorts[name]
	return ok
}

// Lookup the declaration of a given symbol.
func (g *Globals) Lookup(name string) (FunDecl, bool) {
	decl, ok := g.decls[name]
	return decl, ok
}

// Has checks whether a given symbol is declared.
func (g *Globals) Has(name string) bool {
	_, ok := g.decls[name]
	return ok
}

// Names returns every declared symbol, in declaration order.
func (g *Globals) Names() []string {
	return slices.Clone(g.order)
}

// Constants returns every declared constant, in declaration order.
func (g *Globals) Constants() []FunDecl {
	var constants []FunDecl
	//
	for _, name := range g.order {
		if decl := g.decls[name]; decl.IsConstant() {
			constants = append(constants, decl)
		}
	}
	//
	return constants
}

// Len returns the number of declared symbols.
func (g *Globals) Len() int {
	return len(g.order)
}
