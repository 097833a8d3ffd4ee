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
package solver

import (
	"bufio"
	"fmt"
	"slices"
	"strings"
)

// Verdict is a single answer given by a solver to a check-sat command.
type Verdict uint8

const (
	// UNKNOWN indicates the solver gave up.
	UNKNOWN Verdict = iota
	// SAT indicates the formula is satisfiable.
	SAT
	// UNSAT indicates the formula is unsatisfiable.
	UNSAT
)

// ParseVerdict parses "sat", "unsat" or "unknown".
func ParseVerdict(text string) (Verdict, error) {
	switch text {
	case "sat":
		return SAT, nil
	case "unsat":
		return UNSAT, nil
	case "unknown":
		return UNKNOWN, nil
	}
	//
	return UNKNOWN, fmt.Errorf("invalid verdict %q", text)
}

// Decided checks whether this verdict is sat or unsat.
func (v Verdict) Decided() bool {
	return v != UNKNOWN
}

func (v Verdict) String() string {
	switch v {
	case SAT:
		return "sat"
	case UNSAT:
		return "unsat"
	default:
		return "unknown"
	}
}

// Result holds the verdicts printed by a solver, one for each check-sat of an
// incremental script.
type Result []Verdict

// ParseResult extracts every verdict from the output of a solver.  Only lines
// consisting of a verdict alone are considered.
func ParseResult(stdout string) Result {
	var (
		result  Result
		scanner = bufio.NewScanner(strings.NewReader(stdout))
	)
	//
	for scanner.Scan() {
		if v, err := ParseVerdict(strings.TrimSpace(scanner.Text())); err == nil {
			result = append(result, v)
		}
	}
	//
	return result
}

// Empty checks whether no verdict was found at all.
func (r Result) Empty() bool {
	return len(r) == 0
}

// Solved checks whether this result is a single decided verdict.
func (r Result) Solved() bool {
	return len(r) == 1 && r[0].Decided()
}

// Unknown checks whether any verdict of this result is unknown.
func (r Result) Unknown() bool {
	for _, v := range r {
		if !v.Decided() {
			return true
		}
	}
	//
	return false
}

// Agrees checks whether every verdict of this result matches a given verdict,
// ignoring unknowns.
func (r Result) Agrees(expected Verdict) bool {
	for _, v := range r {
		if v.Decided() && v != expected {
			return false
		}
	}
	//
	return true
}

// Equals checks whether two results are identical.
func (r Result) Equals(other Result) bool {
	return slices.Equal(r, other)
}

func (r Result) String() string {
	verdicts := make([]string, len(r))
	//
	for i, v := range r {
		verdicts[i] = v.String()
	}
	//
	return strings.Join(verdicts, " ")
}
