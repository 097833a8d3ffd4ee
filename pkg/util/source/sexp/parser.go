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
	"unicode"

	"github.com/consensys/go-smtfuzz/pkg/util/source"
)

// Parse exactly one S-expression from a given file, returning nil for a file
// containing only whitespace and comments.  A source map giving the span of
// every node is also returned.
func Parse(srcfile *source.File) (SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(srcfile)
	//
	e, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	//
	if next, err := p.scan(); err != nil {
		return nil, nil, err
	} else if next.kind != endOfFile {
		return nil, nil, p.errorAt(next.span, "unexpected remainder")
	}
	//
	return e, p.srcmap, nil
}

// ParseAll parses every S-expression of a given file, such as the commands of
// an SMT-LIB script.
func ParseAll(srcfile *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	var (
		p        = NewParser(srcfile)
		commands []SExp
	)
	//
	for {
		e, err := p.Parse()
		//
		if err != nil {
			return commands, p.srcmap, err
		} else if e == nil {
			return commands, p.srcmap, nil
		}
		//
		commands = append(commands, e)
	}
}

// Parser reads S-expressions from a source file one at a time.
type Parser struct {
	srcfile *source.File
	text    []rune
	// Position of the next character to scan
	index  int
	srcmap *source.Map[SExp]
}

// NewParser constructs a parser positioned at the start of a given file.
func NewParser(srcfile *source.File) *Parser {
	return &Parser{srcfile, srcfile.Contents(), 0, source.NewSourceMap[SExp](srcfile)}
}

// SourceMap returns the span of every S-expression parsed so far.
func (p *Parser) SourceMap() *source.Map[SExp] {
	return p.srcmap
}

// Parse the next S-expression, returning nil at the end of the file.
func (p *Parser) Parse() (SExp, *source.SyntaxError) {
	tok, err := p.scan()
	if err != nil {
		return nil, err
	}
	//
	return p.parse(tok)
}

func (p *Parser) parse(tok token) (SExp, *source.SyntaxError) {
	switch tok.kind {
	case endOfFile:
		return nil, nil
	case closeParen:
		return nil, p.errorAt(tok.span, "unexpected end-of-list")
	case atom:
		symbol := &Symbol{string(p.text[tok.span.Start():tok.span.End()])}
		p.srcmap.Put(symbol, tok.span)
		//
		return symbol, nil
	}
	// Opening bracket, so parse elements until the matching close.
	var elements []SExp
	//
	for {
		next, err := p.scan()
		//
		switch {
		case err != nil:
			return nil, err
		case next.kind == endOfFile:
			return nil, p.errorAt(next.span, "unexpected end-of-file")
		case next.kind == closeParen:
			list := &List{elements}
			p.srcmap.Put(list, source.NewSpan(tok.span.Start(), next.span.End()))
			//
			return list, nil
		}
		//
		element, err := p.parse(next)
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, element)
	}
}

type tokenKind uint8

const (
	endOfFile tokenKind = iota
	openParen
	closeParen
	// Symbols, keywords, numerals, string literals, etc.
	atom
)

type token struct {
	kind tokenKind
	span source.Span
}

// Scan the next token, skipping whitespace and comments.
func (p *Parser) scan() (token, *source.SyntaxError) {
	p.skipLayout()
	//
	start := p.index
	//
	if start == len(p.text) {
		return token{endOfFile, source.NewSpan(start, start)}, nil
	}
	//
	switch p.text[start] {
	case '(':
		p.index++
		return token{openParen, source.NewSpan(start, p.index)}, nil
	case ')':
		p.index++
		return token{closeParen, source.NewSpan(start, p.index)}, nil
	case '"':
		return p.scanDelimited('"', "unterminated string literal")
	case '|':
		return p.scanDelimited('|', "unterminated quoted symbol")
	}
	//
	for p.index < len(p.text) && !isDelimiter(p.text[p.index]) {
		p.index++
	}
	//
	return token{atom, source.NewSpan(start, p.index)}, nil
}

// Scan a string literal or quoted symbol, including its delimiters.  Within a
// string literal, two consecutive quotes denote a single quote.
func (p *Parser) scanDelimited(delim rune, msg string) (token, *source.SyntaxError) {
	start := p.index
	//
	for p.index++; p.index < len(p.text); p.index++ {
		if p.text[p.index] != delim {
			continue
		} else if delim == '"' && p.index+1 < len(p.text) && p.text[p.index+1] == '"' {
			p.index++
			continue
		}
		//
		p.index++
		//
		return token{atom, source.NewSpan(start, p.index)}, nil
	}
	//
	return token{}, p.errorAt(source.NewSpan(start, p.index), msg)
}

// Skip whitespace and comments, which run from a semicolon to the end of the
// line.
func (p *Parser) skipLayout() {
	for p.index < len(p.text) {
		switch c := p.text[p.index]; {
		case c == ';':
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		case unicode.IsSpace(c):
			p.index++
		default:
			return
		}
	}
}

func isDelimiter(c rune) bool {
	return c == '(' || c == ')' || c == ';' || c == '"' || c == '|' || unicode.IsSpace(c)
}

func (p *Parser) errorAt(span source.Span, msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(span, msg)
}
