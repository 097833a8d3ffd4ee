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
package termio

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TablePrinter lays out rows of cells in aligned columns, such as the rule
// catalog or the statistics of a fuzzing campaign.
type TablePrinter struct {
	widths  []int
	rows    [][]string
	escapes [][]string
	// Columns which are left aligned (rather than right aligned)
	left          []bool
	enableEscapes bool
}

// NewTablePrinter constructs a table with a given number of columns.
func NewTablePrinter(columns uint) *TablePrinter {
	return &TablePrinter{widths: make([]int, columns), left: make([]bool, columns), enableEscapes: true}
}

// AddRow appends a row to this table, which must have one value per column.
func (p *TablePrinter) AddRow(vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	//
	for i, val := range vals {
		p.widths[i] = max(p.widths[i], utf8.RuneCountInString(val))
	}
	//
	p.rows = append(p.rows, vals)
	p.escapes = append(p.escapes, make([]string, len(vals)))
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetEscape sets the escape used when printing a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape.Build()
}

// AlignLeft aligns a given column to the left.
func (p *TablePrinter) AlignLeft(col uint) {
	p.left[col] = true
}

// AnsiEscapes enables or disables escapes, which should be disabled when not
// printing to a terminal.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth puts an upper bound on the width of a column.  Longer values are
// truncated.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(int(width), 3))
}

// Print this table to a given writer.
func (p *TablePrinter) Print(w io.Writer) {
	var builder strings.Builder
	//
	for i, row := range p.rows {
		for j, val := range row {
			width := p.widths[j]
			//
			if utf8.RuneCountInString(val) > width {
				val = string([]rune(val)[:width-2]) + ".."
			}
			//
			if p.enableEscapes && p.escapes[i][j] != "" {
				builder.WriteString(p.escapes[i][j])
			}
			//
			if p.left[j] {
				fmt.Fprintf(&builder, " %-*s", width, val)
			} else {
				fmt.Fprintf(&builder, " %*s", width, val)
			}
			//
			if p.enableEscapes && p.escapes[i][j] != "" {
				builder.WriteString(ResetAnsiEscape().Build())
			}
			//
			builder.WriteString(" |")
		}
		//
		builder.WriteString("\n")
	}
	//
	fmt.Fprint(w, builder.String())
}
