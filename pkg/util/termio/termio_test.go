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
	"strings"
	"testing"
	"time"
)

func TestTable_0(t *testing.T) {
	var (
		out   strings.Builder
		table = NewTablePrinter(2)
	)
	//
	table.AddRow("ORTOIMP", "core-logic")
	table.AddRow("STRTOINT", "")
	table.AlignLeft(0)
	table.Print(&out)
	//
	expected := " ORTOIMP  | core-logic |\n STRTOINT |            |\n"
	if out.String() != expected {
		t.Errorf("expected %q, found %q", expected, out.String())
	}
}

func TestTable_1(t *testing.T) {
	var (
		out   strings.Builder
		table = NewTablePrinter(1)
	)
	//
	table.AddRow("RE_DISTRIBUTE_UNION_CONCAT")
	table.SetMaxWidth(0, 8)
	table.SetEscape(0, 0, BoldAnsiEscape())
	table.AnsiEscapes(false)
	table.Print(&out)
	//
	if out.String() != " RE_DIS.. |\n" {
		t.Errorf("unexpected table %q", out.String())
	}
}

func TestEscape_0(t *testing.T) {
	if e := BoldAnsiEscape().FgColour(TERM_RED).Build(); e != "\033[1;31m" {
		t.Errorf("unexpected escape %q", e)
	}
	//
	if e := NewAnsiEscape().BgColour(TERM_GREEN).Wrap("ok"); e != "\033[42mok\033[0m" {
		t.Errorf("unexpected escape %q", e)
	}
}

func TestStatusBar_0(t *testing.T) {
	var out strings.Builder
	//
	bar := NewStatusBarOn(&out, 10, time.Hour)
	bar.Update(func() string { return "seeds: 1" })
	bar.Update(func() string { return "seeds: 2" })
	bar.Finish("done, all seeds processed")
	//
	if expected := "\rseeds: 1 \rdone, all\n"; out.String() != expected {
		t.Errorf("expected %q, found %q", expected, out.String())
	}
}
