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
package fuzz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/solver"
	"github.com/google/uuid"
)

// BugKind classifies the bugs found by a fuzzer.
type BugKind string

const (
	// CRASH indicates the solver output matched a crash pattern.
	CRASH BugKind = "crash"
	// SEGFAULT indicates the solver died from a segmentation fault.
	SEGFAULT BugKind = "segfault"
	// INCORRECT indicates the solver contradicted the known verdict.
	INCORRECT BugKind = "incorrect"
	// REGRESSION indicates the solver gave up where the baseline solver did
	// not.
	REGRESSION BugKind = "regression"
	// IMPLICATION indicates the solver gave up on a mutant, despite having
	// decided the mutant from which it was derived.
	IMPLICATION BugKind = "implication"
)

// Event returns the event counted for this kind of bug.
func (k BugKind) Event() Event {
	switch k {
	case CRASH:
		return CRASHES
	case SEGFAULT:
		return SEGFAULTS
	case INCORRECT:
		return SOUNDNESS
	case REGRESSION:
		return REGRESSIONS
	default:
		return IMPLICATIONS
	}
}

// Bug is a mutant exposing unexpected solver behaviour.
type Bug struct {
	Kind   BugKind
	Seed   string
	Solver solver.Solver
	// Rule whose application produced the mutant
	Rule    string
	Mutant  *smt.Script
	Outcome solver.Outcome
	// Mutant from which this was derived, for implication incompleteness.
	Previous *smt.Script
}

func (b *Bug) String() string {
	return fmt.Sprintf("%s bug in %s (seed %s, rule %s)", b.Kind, b.Solver.Name, b.Seed, b.Rule)
}

// Reporter writes bugs into a folder.  Every bug is given a unique name of the
// form "<kind>-<solver>-<seed>-<id>", and consists of the mutant itself, the
// solver output and (if applicable) the previous mutant.
type Reporter struct {
	folder string
}

// NewReporter constructs a reporter for a given folder, which is created if
// it does not exist.
func NewReporter(folder string) (*Reporter, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, err
	}
	//
	return &Reporter{folder}, nil
}

// Report writes a given bug, returning the file containing the mutant.
func (r *Reporter) Report(bug *Bug) (string, error) {
	var (
		name = fmt.Sprintf("%s-%s-%s-%s", bug.Kind, bug.Solver.Name, Stem(bug.Seed), uuid.NewString())
		base = filepath.Join(r.folder, name)
	)
	//
	if err := os.WriteFile(base+SeedExtension, []byte(bug.Mutant.String()), 0644); err != nil {
		return "", err
	}
	//
	if bug.Previous != nil {
		if err := os.WriteFile(base+"-previous"+SeedExtension, []byte(bug.Previous.String()), 0644); err != nil {
			return "", err
		}
	}
	//
	if err := os.WriteFile(base+".output", []byte(output(bug)), 0644); err != nil {
		return "", err
	}
	//
	return base + SeedExtension, nil
}

func output(bug *Bug) string {
	var builder strings.Builder
	//
	fmt.Fprintf(&builder, "seed: %s\n", bug.Seed)
	fmt.Fprintf(&builder, "rule: %s\n", bug.Rule)
	fmt.Fprintf(&builder, "command: %s\n", bug.Solver)
	fmt.Fprintf(&builder, "exit code: %d\n", bug.Outcome.ExitCode)
	fmt.Fprintf(&builder, "elapsed: %s\n", bug.Outcome.Elapsed)
	builder.WriteString("--- stdout ---\n")
	builder.WriteString(bug.Outcome.Stdout)
	builder.WriteString("--- stderr ---\n")
	builder.WriteString(bug.Outcome.Stderr)
	//
	return builder.String()
}
