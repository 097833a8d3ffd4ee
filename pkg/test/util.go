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
package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/fuzz"
	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/solver"
	"github.com/consensys/go-smtfuzz/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the seed scripts (sat / unsat) and invalid scripts are found.
const TestDir = "../../testdata"

// SolverVariable names the environment variable which, when set, gives the
// command line of a solver used to confirm the verdict of every mutant.
const SolverVariable = "SMTFUZZ_SOLVER"

// Groups of rules with which every seed is mutated.
var groups = []string{ibws.AllRules, "basic", "core-logic", "operator-replacement", "reglan"}

// Number of random walks per group, and their length.
const (
	WALKS  = 4
	LENGTH = 8
)

// Check a given seed can be repeatedly mutated using every group of rules,
// such that each mutant remains a well-typed script with the same
// declarations.  Where a solver is available, it must agree with the verdict
// of the seed on every mutant it decides.
func Check(t *testing.T, test string) {
	var (
		filename        = fmt.Sprintf("%s/seeds/%s.smt2", TestDir, test)
		script, globals = readSeed(t, filename)
		oracle          = fuzz.OracleFromPath(filename)
		checker         = solverChecker(t)
	)
	// Enable testing each seed in parallel
	t.Parallel()
	//
	if oracle.IsEmpty() {
		t.Fatalf("%s: no verdict", filename)
	}
	//
	for _, group := range groups {
		for walk := range uint64(WALKS) {
			cfg := ibws.Config{Oracle: oracle.Unwrap().String(), RuleSet: group, Seed: walk}
			//
			session, err := ibws.NewSession(script.Clone(), globals, cfg)
			if err != nil {
				t.Fatal(err)
			}
			//
			for step := range LENGTH {
				mutant, ok, rule := session.Mutate()
				if !ok {
					break
				}
				//
				name := fmt.Sprintf("%s (%s, walk %d, step %d, %s)", test, group, walk, step, rule.Unwrap())
				checkMutant(t, name, mutant, globals)
				//
				if checker != nil {
					checker(name, mutant, oracle.Unwrap())
				}
			}
		}
	}
}

// CheckInvalid checks a given script is rejected with a syntax error.
func CheckInvalid(t *testing.T, test string) {
	filename := fmt.Sprintf("%s/invalid/%s.smt2", TestDir, test)
	//
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	if _, _, serr := smt.Read(srcfile); serr == nil {
		t.Errorf("%s: expected syntax error", filename)
	} else if line := serr.FirstEnclosingLine(); line.Number() < 1 {
		t.Errorf("%s: syntax error without line", filename)
	}
}

func readSeed(t *testing.T, filename string) (*smt.Script, *smt.Globals) {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	//
	script, globals, serr := smt.Read(srcfile)
	if serr != nil {
		t.Fatalf("%s: %s", filename, serr.Error())
	}
	//
	return script, globals
}

// A mutant must read back in, declaring exactly the same symbols.
func checkMutant(t *testing.T, name string, mutant *smt.Script, globals *smt.Globals) {
	_, decls, err := smt.ReadString(mutant.String())
	//
	if err != nil {
		t.Errorf("%s: %s\n%s", name, err.Message(), mutant.String())
	} else if !slices.Equal(decls.Names(), globals.Names()) {
		t.Errorf("%s: declarations %v changed to %v", name, globals.Names(), decls.Names())
	}
}

// Construct a function to confirm verdicts using the solver given by the
// environment (if any).
func solverChecker(t *testing.T) func(string, *smt.Script, ibws.Oracle) {
	cli := os.Getenv(SolverVariable)
	if cli == "" {
		return nil
	}
	//
	s, err := solver.Parse(cli)
	if err != nil {
		t.Fatal(err)
	}
	//
	dir := t.TempDir()
	//
	return func(name string, mutant *smt.Script, oracle ibws.Oracle) {
		file := filepath.Join(dir, "mutant.smt2")
		//
		if err := os.WriteFile(file, []byte(mutant.String()), 0644); err != nil {
			t.Fatal(err)
		}
		//
		outcome, err := s.Run(context.Background(), file, 10*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		//
		expected := solver.SAT
		if oracle == ibws.UNSAT {
			expected = solver.UNSAT
		}
		//
		if result := outcome.Result(); !result.Agrees(expected) {
			t.Errorf("%s: %s gave %s, expected %s\n%s", name, s.Name, result, expected, mutant.String())
		}
	}
}
