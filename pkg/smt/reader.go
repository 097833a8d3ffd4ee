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
	"regexp"
	"slices"
	"strconv"

	"github.com/consensys/go-smtfuzz/pkg/util/collection/stack"
	"github.com/consensys/go-smtfuzz/pkg/util/source"
	"github.com/consensys/go-smtfuzz/pkg/util/source/sexp"
)

var (
	numeralRegex = regexp.MustCompile(`^[0-9]+$`)
	decimalRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	hexRegex     = regexp.MustCompile(`^#x[0-9a-fA-F]+$`)
	binaryRegex  = regexp.MustCompile(`^#b[01]+$`)
)

// ReadString parses and typechecks a script given as a string.  This is
// primarily useful for testing.
func ReadString(text string) (*Script, *Globals, *source.SyntaxError) {
	return Read(source.NewSourceFile("<input>", []byte(text)))
}

// Read parses and typechecks an SMT-LIB script.  Assertions are translated
// into terms, whilst every other command is kept verbatim.  Declarations are
// recorded in the returned symbol table.
func Read(srcfile *source.File) (*Script, *Globals, *source.SyntaxError) {
	commands, srcmap, err := sexp.ParseAll(srcfile)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	r := reader{srcmap, NewGlobals(), NewScript(), stack.NewStack[map[string]Sort]()}
	//
	for _, cmd := range commands {
		if err := r.command(cmd); err != nil {
			return nil, nil, err
		}
	}
	//
	return r.script, r.globals, nil
}

type reader struct {
	srcmap  *source.Map[sexp.SExp]
	globals *Globals
	script  *Script
	// Bound variables in scope, innermost last.
	scopes *stack.Stack[map[string]Sort]
}

func (r *reader) command(e sexp.SExp) *source.SyntaxError {
	list := e.AsList()
	//
	if list == nil || list.Len() == 0 || list.Get(0).AsSymbol() == nil {
		return r.error(e, "invalid command")
	}
	//
	switch list.Head() {
	case "assert":
		return r.assert(list)
	case "declare-const":
		return r.declareConst(list)
	case "declare-fun":
		return r.declareFun(list)
	case "define-fun":
		return r.defineFun(list)
	case "declare-sort":
		return r.declareSort(list)
	case "declare-datatype", "declare-datatypes", "define-sort":
		return r.error(list, fmt.Sprintf("unsupported command %s", list.Head()))
	}
	// Everything else is kept as is
	r.script.Directive(list.String())
	//
	return nil
}

func (r *reader) assert(list *sexp.List) *source.SyntaxError {
	if list.Len() != 2 {
		return r.error(list, "expected (assert term)")
	}
	//
	term, err := r.term(list.Get(1))
	//
	if err != nil {
		return err
	} else if sort := r.script.Arena.Sort(term); sort != BoolSort {
		return r.error(list.Get(1), fmt.Sprintf("asserted term has sort %s, expected Bool", sort))
	}
	//
	r.script.Assert(term)
	//
	return nil
}

func (r *reader) declareConst(list *sexp.List) *source.SyntaxError {
	if list.Len() != 3 || list.Get(1).AsSymbol() == nil {
		return r.error(list, "expected (declare-const name sort)")
	}
	//
	sort, err := r.sort(list.Get(2))
	if err != nil {
		return err
	}
	//
	return r.declare(list, list.Get(1).AsSymbol().Value, nil, sort)
}

func (r *reader) declareFun(list *sexp.List) *source.SyntaxError {
	if list.Len() != 4 || list.Get(1).AsSymbol() == nil || list.Get(2).AsList() == nil {
		return r.error(list, "expected (declare-fun name (sort*) sort)")
	}
	//
	var params []Sort
	//
	for _, p := range list.Get(2).AsList().Elements {
		sort, err := r.sort(p)
		if err != nil {
			return err
		}
		//
		params = append(params, sort)
	}
	//
	result, err := r.sort(list.Get(3))
	if err != nil {
		return err
	}
	//
	return r.declare(list, list.Get(1).AsSymbol().Value, params, result)
}

func (r *reader) defineFun(list *sexp.List) *source.SyntaxError {
	if list.Len() != 5 || list.Get(1).AsSymbol() == nil || list.Get(2).AsList() == nil {
		return r.error(list, "expected (define-fun name ((var sort)*) sort term)")
	}
	//
	bound, err := r.binders(list.Get(2).AsList())
	if err != nil {
		return err
	}
	//
	result, err := r.sort(list.Get(3))
	if err != nil {
		return err
	}
	// Check the body in a scratch arena, since definitions are kept verbatim.
	scratch := reader{r.srcmap, r.globals, NewScript(), r.scopes}
	//
	body, err := scratch.scoped(bound, list.Get(4))
	if err != nil {
		return err
	} else if sort := scratch.script.Arena.Sort(body); sort != result && !(sort.IsNumeric() && result.IsNumeric()) {
		return r.error(list.Get(4), fmt.Sprintf("body has sort %s, expected %s", sort, result))
	}
	//
	params := make([]Sort, len(bound))
	//
	for i, b := range bound {
		params[i] = b.Sort
	}
	//
	return r.declare(list, list.Get(1).AsSymbol().Value, params, result)
}

func (r *reader) declareSort(list *sexp.List) *source.SyntaxError {
	var arity uint64
	//
	if list.Len() < 2 || list.Len() > 3 || list.Get(1).AsSymbol() == nil {
		return r.error(list, "expected (declare-sort name numeral)")
	} else if list.Len() == 3 {
		var err error
		//
		if list.Get(2).AsSymbol() == nil {
			return r.error(list.Get(2), "expected numeral")
		} else if arity, err = strconv.ParseUint(list.Get(2).AsSymbol().Value, 10, 32); err != nil {
			return r.error(list.Get(2), "expected numeral")
		}
	}
	//
	if err := r.globals.DeclareSort(Sort(list.Get(1).AsSymbol().Value), uint(arity)); err != nil {
		return r.error(list, err.Error())
	}
	//
	r.script.Directive(list.String())
	//
	return nil
}

func (r *reader) declare(list *sexp.List, name string, params []Sort, result Sort) *source.SyntaxError {
	if err := r.globals.Declare(name, params, result); err != nil {
		return r.error(list.Get(1), err.Error())
	}
	//
	r.script.Directive(list.String())
	//
	return nil
}

func (r *reader) sort(e sexp.SExp) (Sort, *source.SyntaxError) {
	sort := SortOf(e)
	//
	if sort.IsBuiltin() || r.globals.HasSort(sort) {
		return sort, nil
	} else if index, element, ok := sort.Array(); ok {
		// Components are checked recursively
		list := e.AsList()
		if _, err := r.sort(list.Get(1)); err != nil {
			return NoSort, err
		} else if _, err := r.sort(list.Get(2)); err != nil {
			return NoSort, err
		}
		//
		return Sort(fmt.Sprintf("(Array %s %s)", index, element)), nil
	} else if list := e.AsList(); list != nil && list.MatchSymbols(2, "_", "BitVec") {
		return sort, nil
	} else if list := e.AsList(); list != nil && list.Len() > 1 && r.globals.HasSort(Sort(list.Head())) {
		// Application of a parametric uninterpreted sort
		return sort, nil
	}
	//
	return NoSort, r.error(e, fmt.Sprintf("unknown sort %s", sort))
}

func (r *reader) binders(list *sexp.List) ([]Binder, *source.SyntaxError) {
	bound := make([]Binder, list.Len())
	//
	for i, e := range list.Elements {
		pair := e.AsList()
		//
		if pair == nil || pair.Len() != 2 || pair.Get(0).AsSymbol() == nil {
			return nil, r.error(e, "expected (var sort)")
		}
		//
		sort, err := r.sort(pair.Get(1))
		if err != nil {
			return nil, err
		}
		//
		bound[i] = Binder{pair.Get(0).AsSymbol().Value, sort}
	}
	//
	return bound, nil
}

// Translate a term within the scope of some additional bound variables.
func (r *reader) scoped(bound []Binder, e sexp.SExp) (TermID, *source.SyntaxError) {
	scope := make(map[string]Sort)
	//
	for _, b := range bound {
		scope[b.Name] = b.Sort
	}
	//
	r.scopes.Push(scope)
	defer r.scopes.Pop()
	//
	return r.term(e)
}

func (r *reader) term(e sexp.SExp) (TermID, *source.SyntaxError) {
	if symbol := e.AsSymbol(); symbol != nil {
		return r.symbol(symbol)
	}
	//
	list := e.AsList()
	//
	if list.Len() == 0 {
		return 0, r.error(e, "empty term")
	}
	//
	switch list.Head() {
	case "let":
		return r.let(list)
	case "forall", "exists":
		return r.quantifier(list)
	case "!":
		// Annotations are dropped
		if list.Len() < 2 {
			return 0, r.error(list, "expected (! term attributes*)")
		}
		//
		return r.term(list.Get(1))
	case "_":
		return 0, r.error(list, "unsupported indexed constant")
	case "":
		return r.indexed(list)
	}
	//
	return r.apply(list.Head(), list)
}

func (r *reader) symbol(symbol *sexp.Symbol) (TermID, *source.SyntaxError) {
	var (
		arena = r.script.Arena
		text  = symbol.Value
	)
	//
	switch {
	case symbol.IsStringLiteral():
		return arena.Literal(text, StringSort), nil
	case numeralRegex.MatchString(text):
		return arena.Literal(text, IntSort), nil
	case decimalRegex.MatchString(text):
		return arena.Literal(text, RealSort), nil
	case hexRegex.MatchString(text):
		return arena.Literal(text, Sort(fmt.Sprintf("(_ BitVec %d)", 4*(len(text)-2)))), nil
	case binaryRegex.MatchString(text):
		return arena.Literal(text, Sort(fmt.Sprintf("(_ BitVec %d)", len(text)-2))), nil
	case text == "true" || text == "false":
		return arena.Literal(text, BoolSort), nil
	case slices.Contains(RegexConstants, text):
		return arena.Literal(text, RegLanSort), nil
	}
	// Innermost binding wins
	for i := uint(0); i < r.scopes.Len(); i++ {
		if sort, ok := r.scopes.Peek(i)[text]; ok {
			return arena.Symbol(text, sort), nil
		}
	}
	//
	if decl, ok := r.globals.Lookup(text); !ok {
		return 0, r.error(symbol, fmt.Sprintf("unknown symbol %s", text))
	} else if !decl.IsConstant() {
		return 0, r.error(symbol, fmt.Sprintf("function %s requires %d arguments", text, len(decl.Params)))
	} else {
		return arena.Symbol(text, decl.Result), nil
	}
}

func (r *reader) let(list *sexp.List) (TermID, *source.SyntaxError) {
	if list.Len() != 3 || list.Get(1).AsList() == nil {
		return 0, r.error(list, "expected (let ((var term)*) term)")
	}
	//
	var (
		bindings = list.Get(1).AsList()
		names    = make([]string, bindings.Len())
		values   = make([]TermID, bindings.Len())
		bound    = make([]Binder, bindings.Len())
	)
	// Bound values are translated in the enclosing scope
	for i, e := range bindings.Elements {
		pair := e.AsList()
		//
		if pair == nil || pair.Len() != 2 || pair.Get(0).AsSymbol() == nil {
			return 0, r.error(e, "expected (var term)")
		}
		//
		value, err := r.term(pair.Get(1))
		if err != nil {
			return 0, err
		}
		//
		names[i] = pair.Get(0).AsSymbol().Value
		values[i] = value
		bound[i] = Binder{names[i], r.script.Arena.Sort(value)}
	}
	//
	body, err := r.scoped(bound, list.Get(2))
	if err != nil {
		return 0, err
	}
	//
	return r.script.Arena.Let(names, values, body), nil
}

func (r *reader) quantifier(list *sexp.List) (TermID, *source.SyntaxError) {
	if list.Len() != 3 || list.Get(1).AsList() == nil || list.Get(1).AsList().Len() == 0 {
		return 0, r.error(list, fmt.Sprintf("expected (%s ((var sort)+) term)", list.Head()))
	}
	//
	bound, err := r.binders(list.Get(1).AsList())
	if err != nil {
		return 0, err
	}
	//
	body, err := r.scoped(bound, list.Get(2))
	if err != nil {
		return 0, err
	} else if sort := r.script.Arena.Sort(body); sort != BoolSort {
		return 0, r.error(list.Get(2), fmt.Sprintf("quantified term has sort %s, expected Bool", sort))
	}
	//
	return r.script.Arena.Quantified(list.Head(), bound, body), nil
}

// Translate an application whose head is itself a list, which is either an
// indexed operator such as ((_ re.loop 1 3) r) or a qualified constant array
// such as ((as const (Array Int Int)) 0).
func (r *reader) indexed(list *sexp.List) (TermID, *source.SyntaxError) {
	head := list.Get(0).AsList()
	//
	if head == nil || head.Len() < 2 {
		return 0, r.error(list, "invalid term")
	}
	//
	args, sorts, err := r.arguments(list)
	if err != nil {
		return 0, err
	}
	//
	switch head.Head() {
	case "_":
		op, ok := IndexedOperators[head.Get(1).String()]
		//
		if !ok {
			return 0, r.error(head, fmt.Sprintf("unknown indexed operator %s", head.Get(1)))
		} else if head.Len() != op.Indices+2 {
			return 0, r.error(head, fmt.Sprintf("expected %d indices", op.Indices))
		}
		//
		for _, index := range head.Elements[2:] {
			if !numeralRegex.MatchString(index.String()) {
				return 0, r.error(index, "expected numeral")
			}
		}
		//
		sort, e := op.Signature(sorts)
		if e != nil {
			return 0, r.error(list, fmt.Sprintf("%s: %s", head, e.Error()))
		}
		//
		return r.script.Arena.App(head.String(), sort, args...), nil
	case "as":
		if head.Len() != 3 || !head.MatchSymbols(2, "as", "const") {
			return 0, r.error(head, "unsupported qualified identifier")
		}
		//
		sort, err := r.sort(head.Get(2))
		if err != nil {
			return 0, err
		} else if _, element, ok := sort.Array(); !ok || len(sorts) != 1 || sorts[0] != element {
			return 0, r.error(list, "invalid constant array")
		}
		//
		return r.script.Arena.App(head.String(), sort, args...), nil
	}
	//
	return 0, r.error(head, "invalid term")
}

func (r *reader) apply(op string, list *sexp.List) (TermID, *source.SyntaxError) {
	args, sorts, err := r.arguments(list)
	if err != nil {
		return 0, err
	}
	//
	if signature, ok := Operators[op]; ok {
		sort, e := signature(sorts)
		if e != nil {
			return 0, r.error(list, fmt.Sprintf("%s: %s", op, e.Error()))
		}
		//
		return r.script.Arena.App(op, sort, args...), nil
	}
	// Uninterpreted function
	decl, ok := r.globals.Lookup(op)
	//
	if !ok {
		return 0, r.error(list.Get(0), fmt.Sprintf("unknown function %s", op))
	}
	//
	if _, e := Fixed(decl.Result, decl.Params...)(sorts); e != nil {
		return 0, r.error(list, fmt.Sprintf("%s: %s", op, e.Error()))
	}
	//
	return r.script.Arena.App(op, decl.Result, args...), nil
}

func (r *reader) arguments(list *sexp.List) ([]TermID, []Sort, *source.SyntaxError) {
	var (
		args  = make([]TermID, list.Len()-1)
		sorts = make([]Sort, list.Len()-1)
	)
	//
	for i, e := range list.Elements[1:] {
		arg, err := r.term(e)
		if err != nil {
			return nil, nil, err
		}
		//
		args[i] = arg
		sorts[i] = r.script.Arena.Sort(arg)
	}
	//
	return args, sorts, nil
}

func (r *reader) error(e sexp.SExp, msg string) *source.SyntaxError {
	return r.srcmap.SyntaxError(e, msg)
}
