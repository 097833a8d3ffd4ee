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

import "testing"

func TestFile_0(t *testing.T) {
	file := NewSourceFile("test.smt2", []byte("(declare-const x Int)\n(assert (> x y))\n"))
	//
	CheckLine(t, file, 0, 1, "(declare-const x Int)")
	CheckLine(t, file, 21, 1, "(declare-const x Int)")
	CheckLine(t, file, 22, 2, "(assert (> x y))")
	CheckLine(t, file, 35, 2, "(assert (> x y))")
	// End of file is on the (empty) last line
	CheckLine(t, file, 39, 3, "")
	CheckLine(t, file, 100, 3, "")
}

func TestFile_1(t *testing.T) {
	file := NewSourceFile("test.smt2", []byte("(assert\n  \"été\")"))
	CheckLine(t, file, 10, 2, "  \"été\")")
	//
	line := file.FindFirstEnclosingLine(NewSpan(10, 11))
	if line.Start() != 8 || line.Length() != 8 {
		t.Errorf("unexpected line start %d, length %d", line.Start(), line.Length())
	}
}

func TestFile_2(t *testing.T) {
	var (
		file   = NewSourceFile("test.smt2", []byte("(assert\n(> x y))"))
		srcmap = NewSourceMap[string](file)
	)
	//
	srcmap.Put("y", NewSpan(13, 14))
	//
	if err := srcmap.SyntaxError("y", "unknown symbol y"); err.Error() != "test.smt2:2: unknown symbol y" {
		t.Errorf("unexpected error %q", err.Error())
	} else if span := err.Span(); span.Start() != 13 || span.Length() != 1 {
		t.Errorf("unexpected span %s", span)
	}
	// Unknown items are reported at the start
	if err := srcmap.SyntaxError("x", "oops"); err.Error() != "test.smt2:1: oops" {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestSpan_0(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	//
	NewSpan(2, 1)
}

func CheckLine(t *testing.T, file *File, index int, number int, text string) {
	line := file.FindFirstEnclosingLine(NewSpan(index, index))
	//
	if line.Number() != number || line.String() != text {
		t.Errorf("index %d: expected line %d %q, found line %d %q", index, number, text, line.Number(), line.String())
	}
}
