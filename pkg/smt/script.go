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
	"slices"
	"strings"
)

// Command is a single top-level command of a script.
type Command interface {
	// Text renders this command as SMT-LIB text.
	Text(arena *Arena) string
}

// Assert is an (assert t) command.  Asserted terms are the targets of
// mutation.
type Assert struct {
	Term TermID
}

// Text implementation for Command interface.
func (p *Assert) Text(arena *Arena) string {
	return "(assert " + arena.String(p.Term) + ")"
}

// Directive is any command other than an assertion.  Directives are kept
// verbatim.
type Directive struct {
	Contents string
}

// Text implementation for Command interface.
func (p *Directive) Text(arena *Arena) string {
	return p.Contents
}

// Script is an ordered sequence of commands whose terms live in a single
// arena.
type Script struct {
	Arena    *Arena
	Commands []Command
}

// NewScript constructs an empty script.
func NewScript() *Script {
	return &Script{NewArena(), nil}
}

// Assert appends an assertion of a given term.
func (p *Script) Assert(term TermID) {
	p.Commands = append(p.Commands, &Assert{term})
}

// Directive appends a verbatim command.
func (p *Script) Directive(contents string) {
	p.Commands = append(p.Commands, &Directive{contents})
}

// Asserts returns the asserted terms, in declaration order.
func (p *Script) Asserts() []TermID {
	var terms []TermID
	//
	for _, cmd := range p.Commands {
		if a, ok := cmd.(*Assert); ok {
			terms = append(terms, a.Term)
		}
	}
	//
	return terms
}

// Clone returns a deep copy of this script.  Handles valid for this script
// identify the same terms in the clone.
func (p *Script) Clone() *Script {
	commands := slices.Clone(p.Commands)
	//
	for i, cmd := range commands {
		switch c := cmd.(type) {
		case *Assert:
			commands[i] = &Assert{c.Term}
		case *Directive:
			commands[i] = &Directive{c.Contents}
		}
	}
	//
	return &Script{p.Arena.Clone(), commands}
}

// String renders this script as SMT-LIB text, one command per line.
func (p *Script) String() string {
	var builder strings.Builder
	//
	for _, cmd := range p.Commands {
		builder.WriteString(cmd.Text(p.Arena))
		builder.WriteString("\n")
	}
	//
	return builder.String()
}
