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
package source

import "fmt"

// Span identifies a contiguous range of characters within a source file, from
// its start up to (but not including) its end.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span, panicking if it ends before it starts.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span [%d,%d)", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the index of the first character of this span.
func (p Span) Start() int {
	return p.start
}

// End returns the index one past the last character of this span.
func (p Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span.
func (p Span) Length() int {
	return p.end - p.start
}

func (p Span) String() string {
	return fmt.Sprintf("[%d,%d)", p.start, p.end)
}

// Map records the span of text from which each node of a syntax tree was
// parsed, such that errors found later (e.g. ill-sorted terms) can be
// reported against the original text.
type Map[T comparable] struct {
	srcfile *File
	spans   map[T]Span
}

// NewSourceMap constructs an empty source map over a given file.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{srcfile, make(map[T]Span)}
}

// Put records the span of a given node.  Each node can be recorded at most
// once.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.spans[item]; ok {
		panic(fmt.Sprintf("duplicate source map entry %v", any(item)))
	}
	//
	p.spans[item] = span
}

// Lookup returns the span recorded for a given node, if any.
func (p *Map[T]) Lookup(item T) (Span, bool) {
	span, ok := p.spans[item]
	return span, ok
}

// SyntaxError constructs a syntax error for a given node.  Nodes without a
// recorded span are reported against the start of the file.
func (p *Map[T]) SyntaxError(item T, msg string) *SyntaxError {
	span, _ := p.Lookup(item)
	return p.srcfile.SyntaxError(span, msg)
}
