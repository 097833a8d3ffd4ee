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
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/util/collection/stack"
)

// TermID is a stable handle for a term held in an Arena.  Rewriting a term
// overwrites the contents of its slot, hence handles held elsewhere remain
// valid and observe the rewrite.
type TermID uint32

// Kind identifies the shape of a term.
type Kind uint8

const (
	// LiteralTerm is a constant such as 1, 2.5, "abc", true or re.allchar.
	LiteralTerm Kind = iota
	// SymbolTerm is a reference to a declared constant or a bound variable.
	SymbolTerm
	// ApplyTerm is an operator applied to one or more arguments.
	ApplyTerm
	// QuantifiedTerm is a forall or exists over a single body.
	QuantifiedTerm
	// LetTerm binds zero or more values within a body.
	LetTerm
)

// Binder associates a name with a sort, as found in the variable list of a
// quantifier or the binding list of a let.
type Binder struct {
	Name string
	Sort Sort
}

// Node is the contents of a single arena slot.
type Node struct {
	Kind Kind
	// Op holds the operator of an application, the text of a literal or
	// symbol, or the quantifier ("forall" / "exists") of a quantified term.
	Op string
	// Args holds the arguments of an application, the body of a quantified
	// term, or the bound values followed by the body of a let.
	Args []TermID
	// Sort is the result sort of this term.
	Sort Sort
	// Bound holds the variables bound by a quantifier or let.
	Bound []Binder
}

// IsOp checks whether this node is an application of one of the given
// operators.
func (n *Node) IsOp(ops ...string) bool {
	return n.Kind == ApplyTerm && slices.Contains(ops, n.Op)
}

// IsQuantifier checks whether this node is a quantified term of the given
// flavour.
func (n *Node) IsQuantifier(quantifier string) bool {
	return n.Kind == QuantifiedTerm && n.Op == quantifier
}

// Arity returns the number of direct subterms.
func (n *Node) Arity() int {
	return len(n.Args)
}

// Body returns the body of a let or quantified term.
func (n *Node) Body() TermID {
	return n.Args[len(n.Args)-1]
}

func (n *Node) clone() Node {
	return Node{n.Kind, n.Op, slices.Clone(n.Args), n.Sort, slices.Clone(n.Bound)}
}

// Arena owns every term of a script.  Terms are never freed, instead rewrites
// leave unreachable slots behind.
type Arena struct {
	nodes []Node
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{nil}
}

// Len returns the number of slots allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Node returns a copy of the contents of a given slot.  Modifying the copy
// has no effect on the arena, use Set for that.
func (a *Arena) Node(id TermID) Node {
	return a.nodes[id].clone()
}

// Sort returns the sort of a given term.
func (a *Arena) Sort(id TermID) Sort {
	return a.nodes[id].Sort
}

// Kind returns the kind of a given term.
func (a *Arena) Kind(id TermID) Kind {
	return a.nodes[id].Kind
}

// Op returns the operator (or text) of a given term.
func (a *Arena) Op(id TermID) string {
	return a.nodes[id].Op
}

// Args returns a copy of the direct subterms of a given term.
func (a *Arena) Args(id TermID) []TermID {
	return slices.Clone(a.nodes[id].Args)
}

// Arg returns the ith direct subterm of a given term.
func (a *Arena) Arg(id TermID, i int) TermID {
	return a.nodes[id].Args[i]
}

// Arity returns the number of direct subterms of a given term.
func (a *Arena) Arity(id TermID) int {
	return len(a.nodes[id].Args)
}

// IsOp checks whether a given term is an application of one of the given
// operators.
func (a *Arena) IsOp(id TermID, ops ...string) bool {
	return a.nodes[id].IsOp(ops...)
}

// Set overwrites the contents of a given slot.
func (a *Arena) Set(id TermID, node Node) {
	a.nodes[id] = node.clone()
}

// SetOp overwrites the operator of a given slot, leaving everything else
// unchanged.
func (a *Arena) SetOp(id TermID, op string) {
	a.nodes[id].Op = op
}

// SetArgs overwrites the subterms of a given slot, leaving everything else
// unchanged.
func (a *Arena) SetArgs(id TermID, args ...TermID) {
	a.nodes[id].Args = slices.Clone(args)
}

// SetArg overwrites the ith subterm of a given slot.
func (a *Arena) SetArg(id TermID, i int, arg TermID) {
	a.nodes[id].Args[i] = arg
}

// Literal allocates a constant.
func (a *Arena) Literal(text string, sort Sort) TermID {
	return a.alloc(Node{Kind: LiteralTerm, Op: text, Sort: sort})
}

// Symbol allocates a reference to a constant or bound variable.
func (a *Arena) Symbol(name string, sort Sort) TermID {
	return a.alloc(Node{Kind: SymbolTerm, Op: name, Sort: sort})
}

// App allocates an application of an operator to one or more arguments.
func (a *Arena) App(op string, sort Sort, args ...TermID) TermID {
	return a.alloc(Node{Kind: ApplyTerm, Op: op, Args: slices.Clone(args), Sort: sort})
}

// Quantified allocates a forall or exists over a given body.
func (a *Arena) Quantified(quantifier string, bound []Binder, body TermID) TermID {
	return a.alloc(Node{QuantifiedTerm, quantifier, []TermID{body}, BoolSort, slices.Clone(bound)})
}

// Let allocates a let-binding of a given set of values within a body.
func (a *Arena) Let(names []string, values []TermID, body TermID) TermID {
	var (
		bound = make([]Binder, len(names))
		args  = make([]TermID, 0, len(values)+1)
	)
	//
	for i, name := range names {
		bound[i] = Binder{name, a.Sort(values[i])}
	}
	//
	args = append(args, values...)
	args = append(args, body)
	//
	return a.alloc(Node{LetTerm, "let", args, a.Sort(body), bound})
}

// True allocates the Boolean constant true.
func (a *Arena) True() TermID {
	return a.Literal("true", BoolSort)
}

// False allocates the Boolean constant false.
func (a *Arena) False() TermID {
	return a.Literal("false", BoolSort)
}

// Int allocates an integer constant.  Negative values are written as an
// application of unary minus, as SMT-LIB has no negative numerals.
func (a *Arena) Int(value int) TermID {
	if value < 0 {
		return a.App("-", IntSort, a.Literal(fmt.Sprintf("%d", -value), IntSort))
	}
	//
	return a.Literal(fmt.Sprintf("%d", value), IntSort)
}

// StringLit allocates a string constant from its unquoted contents.
func (a *Arena) StringLit(contents string) TermID {
	return a.Literal(QuoteString(contents), StringSort)
}

// Copy allocates a deep copy of a given term.
func (a *Arena) Copy(id TermID) TermID {
	return a.Import(a, id)
}

// Import allocates a deep copy of a term held in another arena.
func (a *Arena) Import(src *Arena, id TermID) TermID {
	node := src.nodes[id].clone()
	//
	for i, arg := range node.Args {
		node.Args[i] = a.Import(src, arg)
	}
	//
	return a.alloc(node)
}

// Relocate moves the contents of a given slot into a freshly allocated slot,
// returning the new handle.  The original slot keeps its contents until it is
// overwritten, which the caller is expected to do.  This is used to wrap a
// term in place, e.g. turning t into (or t u) without disturbing handles to
// t.
func (a *Arena) Relocate(id TermID) TermID {
	return a.alloc(a.nodes[id].clone())
}

// Overwrite replaces the contents of dst with a deep copy of src.  This is
// safe even when src is a subterm of dst.
func (a *Arena) Overwrite(dst TermID, src TermID) {
	c := a.Copy(src)
	a.nodes[dst] = a.nodes[c]
}

// Collapse replaces the contents of a slot with the contents of one of its
// direct subterms, without copying.
func (a *Arena) Collapse(id TermID, child TermID) {
	a.nodes[id] = a.nodes[child].clone()
}

// Clone returns a deep copy of this arena.  Handles into the original arena
// identify the corresponding terms in the clone.
func (a *Arena) Clone() *Arena {
	nodes := make([]Node, len(a.nodes))
	//
	for i := range a.nodes {
		nodes[i] = a.nodes[i].clone()
	}
	//
	return &Arena{nodes}
}

// Subterms returns every term reachable from a given root, including the
// root itself, in pre-order.
func (a *Arena) Subterms(root TermID) []TermID {
	var (
		terms    []TermID
		worklist = stack.NewStack[TermID]()
	)
	//
	worklist.Push(root)
	//
	for !worklist.IsEmpty() {
		id := worklist.Pop()
		terms = append(terms, id)
		worklist.PushReversed(a.nodes[id].Args)
	}
	//
	return terms
}

// FreeVariables returns, for each variable occurring free in a given term, the
// handles of its free occurrences.
func (a *Arena) FreeVariables(id TermID) map[string][]TermID {
	free := make(map[string][]TermID)
	a.freeVariables(id, nil, free)
	//
	return free
}

func (a *Arena) freeVariables(id TermID, bound []string, free map[string][]TermID) {
	node := &a.nodes[id]
	//
	switch node.Kind {
	case SymbolTerm:
		if !slices.Contains(bound, node.Op) {
			free[node.Op] = append(free[node.Op], id)
		}
	case QuantifiedTerm:
		inner := slices.Clone(bound)
		for _, b := range node.Bound {
			inner = append(inner, b.Name)
		}
		//
		a.freeVariables(node.Args[0], inner, free)
	case LetTerm:
		// bound values are evaluated in the enclosing scope
		for _, value := range node.Args[:len(node.Args)-1] {
			a.freeVariables(value, bound, free)
		}
		//
		inner := slices.Clone(bound)
		for _, b := range node.Bound {
			inner = append(inner, b.Name)
		}
		//
		a.freeVariables(node.Body(), inner, free)
	default:
		for _, arg := range node.Args {
			a.freeVariables(arg, bound, free)
		}
	}
}

// FreshVariable returns a name of the form xN which occurs free in none of
// the given terms and is not in the given exclusion list.
func (a *Arena) FreshVariable(exclude []string, terms ...TermID) string {
	used := make(map[string]bool)
	//
	for _, name := range exclude {
		used[name] = true
	}
	//
	for _, t := range terms {
		for name := range a.FreeVariables(t) {
			used[name] = true
		}
	}
	//
	for i := 0; ; i++ {
		if name := fmt.Sprintf("x%d", i); !used[name] {
			return name
		}
	}
}

// Equal checks whether two terms are structurally identical.
func (a *Arena) Equal(lhs TermID, rhs TermID) bool {
	l, r := &a.nodes[lhs], &a.nodes[rhs]
	//
	if l.Kind != r.Kind || l.Op != r.Op || l.Sort != r.Sort || len(l.Args) != len(r.Args) ||
		!slices.Equal(l.Bound, r.Bound) {
		return false
	}
	//
	for i := range l.Args {
		if !a.Equal(l.Args[i], r.Args[i]) {
			return false
		}
	}
	//
	return true
}

// String renders a given term as SMT-LIB text.
func (a *Arena) String(id TermID) string {
	var builder strings.Builder
	//
	a.write(&builder, id)
	//
	return builder.String()
}

func (a *Arena) write(builder *strings.Builder, id TermID) {
	node := &a.nodes[id]
	//
	switch node.Kind {
	case LiteralTerm, SymbolTerm:
		builder.WriteString(node.Op)
	case ApplyTerm:
		if len(node.Args) == 0 {
			builder.WriteString(node.Op)
			return
		}
		//
		builder.WriteString("(")
		builder.WriteString(node.Op)
		//
		for _, arg := range node.Args {
			builder.WriteString(" ")
			a.write(builder, arg)
		}
		//
		builder.WriteString(")")
	case QuantifiedTerm:
		builder.WriteString("(")
		builder.WriteString(node.Op)
		builder.WriteString(" (")
		//
		for i, b := range node.Bound {
			if i != 0 {
				builder.WriteString(" ")
			}
			//
			fmt.Fprintf(builder, "(%s %s)", b.Name, b.Sort)
		}
		//
		builder.WriteString(") ")
		a.write(builder, node.Args[0])
		builder.WriteString(")")
	case LetTerm:
		builder.WriteString("(let (")
		//
		for i, b := range node.Bound {
			if i != 0 {
				builder.WriteString(" ")
			}
			//
			fmt.Fprintf(builder, "(%s ", b.Name)
			a.write(builder, node.Args[i])
			builder.WriteString(")")
		}
		//
		builder.WriteString(") ")
		a.write(builder, node.Body())
		builder.WriteString(")")
	}
}

func (a *Arena) alloc(node Node) TermID {
	id := TermID(len(a.nodes))
	a.nodes = append(a.nodes, node)
	//
	return id
}

// QuoteString converts the contents of a string into an SMT-LIB string
// literal, doubling any embedded quotes.
func QuoteString(contents string) string {
	return "\"" + strings.ReplaceAll(contents, "\"", "\"\"") + "\""
}

// UnquoteString converts an SMT-LIB string literal back into its contents.
// The second result is false if the text is not a string literal.
func UnquoteString(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	//
	return strings.ReplaceAll(text[1:len(text)-1], "\"\"", "\""), true
}
