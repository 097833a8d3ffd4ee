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

import (
	"fmt"
	"os"
	"sort"
)

// File is the text of an SMT-LIB script, along with the name it was read
// from.  The start of every line is indexed, such that positions can be
// reported as line numbers.
type File struct {
	filename string
	contents []rune
	// Index of the first character of each line
	lines []int
}

// ReadFile reads a source file from disk.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// NewSourceFile constructs a source file with given contents.
func NewSourceFile(filename string, bytes []byte) *File {
	var (
		contents = []rune(string(bytes))
		lines    = []int{0}
	)
	//
	for i, c := range contents {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	//
	return &File{filename, contents, lines}
}

// Filename returns the name of this file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the characters of this file.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// FindFirstEnclosingLine returns the line containing the start of a given
// span.  Positions beyond the end of the file belong to its last line.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	var (
		index = min(span.start, len(s.contents))
		// Number of lines starting at or before index
		n     = sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > index })
		start = s.lines[n-1]
		end   = len(s.contents)
	)
	//
	if n < len(s.lines) {
		// Exclude the newline itself
		end = s.lines[n] - 1
	}
	//
	return Line{string(s.contents[start:end]), start, n}
}

// Line is a single line of a source file.
type Line struct {
	text   string
	start  int
	number int
}

// String returns the text of this line, without its newline.
func (p Line) String() string {
	return p.text
}

// Number returns the number of this line, where the first line is numbered 1.
func (p Line) Number() int {
	return p.number
}

// Start returns the index of the first character of this line.
func (p Line) Start() int {
	return p.start
}

// Length returns the number of characters in this line.
func (p Line) Length() int {
	return len([]rune(p.text))
}

// SyntaxError is an error arising from a given span of a source file, such as
// a malformed S-expression or an ill-sorted term.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the file in which this error arose.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message of this error, without any position.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error returns the message of this error, prefixed by the file name and line
// number.
func (p *SyntaxError) Error() string {
	if p.srcfile == nil {
		return p.msg
	}
	//
	line := p.FirstEnclosingLine()
	//
	return fmt.Sprintf("%s:%d: %s", p.srcfile.filename, line.Number(), p.msg)
}

// FirstEnclosingLine returns the line on which this error starts.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}
