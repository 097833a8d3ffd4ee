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
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/config"
	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/solver"
)

const satSeed = "(declare-const x Int)\n(assert (>= x 5))\n(check-sat)\n"

// ============================================================================
// Seeds
// ============================================================================

func TestSeeds_0(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/x.smt2", satSeed)
	writeFile(t, dir, "a/b/y.smt2", satSeed)
	writeFile(t, dir, "a/notes.txt", "")
	writeFile(t, dir, "z.txt", satSeed)
	//
	seeds, err := CollectSeeds([]string{filepath.Join(dir, "z.txt"), filepath.Join(dir, "a"), dir})
	if err != nil {
		t.Fatal(err)
	}
	//
	expected := []string{
		filepath.Join(dir, "a", "b", "y.smt2"), filepath.Join(dir, "a", "x.smt2"), filepath.Join(dir, "z.txt"),
	}
	//
	if !slices.Equal(seeds, expected) {
		t.Errorf("expected %v, found %v", expected, seeds)
	}
}

func TestSeeds_1(t *testing.T) {
	if _, err := CollectSeeds([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Errorf("expected error for missing seed")
	}
}

func TestSeeds_2(t *testing.T) {
	CheckOracle(t, "bench/sat/x.smt2", "sat")
	CheckOracle(t, "bench/unsat/x.smt2", "unsat")
	CheckOracle(t, "sat/qf/unsat/x.smt2", "unsat")
	CheckOracle(t, "bench/x.smt2", "")
	CheckOracle(t, "bench/sat.smt2", "")
}

func TestSeeds_3(t *testing.T) {
	if s := Stem("bench/qf_s/x.y.smt2"); s != "x.y" {
		t.Errorf("unexpected stem %q", s)
	}
}

// ============================================================================
// Stats
// ============================================================================

func TestStats_0(t *testing.T) {
	stats := NewStats("test")
	stats.Inc(MUTANTS)
	stats.Inc(MUTANTS)
	stats.Inc(SOUNDNESS)
	stats.Inc(CRASHES)
	stats.Observe("z3", time.Second)
	//
	if n := stats.Count(MUTANTS); n != 2 {
		t.Errorf("expected 2 mutants, found %d", n)
	} else if n := stats.Bugs(); n != 2 {
		t.Errorf("expected 2 bugs, found %d", n)
	} else if n := stats.Count(TIMEOUTS); n != 0 {
		t.Errorf("expected no timeouts, found %d", n)
	}
	//
	var out strings.Builder
	//
	table := stats.Table()
	table.AnsiEscapes(false)
	table.Print(&out)
	//
	if row := " soundness" + strings.Repeat(" ", 18) + "| 1 |\n"; !strings.Contains(out.String(), row) {
		t.Errorf("unexpected table:\n%s", out.String())
	}
}

func TestStats_1(t *testing.T) {
	stats := NewStats("test")
	//
	families, err := stats.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	// Every event is exported, even before it occurs.
	for _, family := range families {
		if family.GetName() == "smtfuzz_events_total" && len(family.GetMetric()) != len(events) {
			t.Errorf("expected %d counters, found %d", len(events), len(family.GetMetric()))
		}
	}
}

// ============================================================================
// Fuzzing
// ============================================================================

func TestFuzz_0(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(MUTANTS); n != uint64(cfg.Iterations) {
		t.Errorf("expected %d mutants, found %d", cfg.Iterations, n)
	}
	//
	CheckBugs(t, fuzzer, cfg)
	CheckScratchEmpty(t, cfg)
}

func TestFuzz_1(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"), fakeSolver(t, "bad", "echo unsat"))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	// The first mutant already exposes the bug.
	if n := fuzzer.Stats().Count(MUTANTS); n != 1 {
		t.Errorf("expected 1 mutant, found %d", n)
	}
	//
	CheckBugs(t, fuzzer, cfg, "incorrect-bad-seed-")
	//
	output, err := os.ReadFile(strings.TrimSuffix(fuzzer.Bugs()[0], SeedExtension) + ".output")
	if err != nil {
		t.Fatal(err)
	} else if !strings.Contains(string(output), "--- stdout ---\nunsat\n") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestFuzz_2(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "crashy", "echo 'Segmentation fault' >&2; exit 1"))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	CheckBugs(t, fuzzer, cfg, "crash-crashy-seed-")
}

func TestFuzz_3(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "crashy", "echo 'Segmentation fault' >&2; exit 1"))
	cfg.DuplicateList = []string{"Segmentation"}
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(DUPLICATES); n != uint64(cfg.Iterations) {
		t.Errorf("expected %d duplicates, found %d", cfg.Iterations, n)
	}
	//
	CheckBugs(t, fuzzer, cfg)
}

func TestFuzz_4(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "picky", `echo '(error "line 1: unsupported")'`))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(INVALID); n != uint64(cfg.Iterations) {
		t.Errorf("expected %d invalid mutants, found %d", cfg.Iterations, n)
	}
	//
	CheckBugs(t, fuzzer, cfg)
}

func TestFuzz_5(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "faulty", "kill -SEGV $$"))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	CheckBugs(t, fuzzer, cfg, "segfault-faulty-seed-")
}

func TestFuzz_6(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "slow", "exec sleep 10"))
	cfg.Iterations = 2
	cfg.Timeout = 200 * time.Millisecond
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(TIMEOUTS); n != 2 {
		t.Errorf("expected 2 timeouts, found %d", n)
	}
	//
	CheckBugs(t, fuzzer, cfg)
}

func TestFuzz_7(t *testing.T) {
	// Decides the first mutant, but not the second.
	marker := filepath.Join(t.TempDir(), "seen")
	script := "if [ -f " + marker + " ]; then echo unknown; else touch " + marker + "; echo sat; fi"
	cfg := testConfig(t, fakeSolver(t, "flaky", script))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(MUTANTS); n != 2 {
		t.Errorf("expected 2 mutants, found %d", n)
	}
	//
	CheckBugs(t, fuzzer, cfg, "implication-flaky-seed-")
	//
	previous := strings.TrimSuffix(fuzzer.Bugs()[0], SeedExtension) + "-previous" + SeedExtension
	if _, err := os.Stat(previous); err != nil {
		t.Errorf("missing previous mutant: %v", err)
	}
}

func TestFuzz_8(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "weak", "echo unknown"))
	cfg.Baseline = fakeSolver(t, "strong", "echo sat")
	fuzzer := CheckFuzz(t, cfg, satSeed)
	CheckBugs(t, fuzzer, cfg, "regression-weak-seed-")
}

func TestFuzz_9(t *testing.T) {
	// Solvers giving up is not a bug by itself.
	cfg := testConfig(t, fakeSolver(t, "weak", "echo unknown"))
	fuzzer := CheckFuzz(t, cfg, satSeed)
	CheckBugs(t, fuzzer, cfg)
}

func TestFuzz_10(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	cfg.Oracle = config.UnknownOracle
	fuzzer := CheckFuzz(t, cfg, satSeed)
	// Verdict obtained from the solver
	if n := fuzzer.Stats().Count(MUTANTS); n != uint64(cfg.Iterations) {
		t.Errorf("expected %d mutants, found %d", cfg.Iterations, n)
	}
}

func TestFuzz_11(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "weak", "echo unknown"))
	cfg.Oracle = config.UnknownOracle
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(INVALID_SEEDS); n != 1 {
		t.Errorf("expected 1 invalid seed, found %d", n)
	} else if n := fuzzer.Stats().Count(MUTANTS); n != 0 {
		t.Errorf("expected no mutants, found %d", n)
	}
}

func TestFuzz_12(t *testing.T) {
	// Verdict obtained from the path, which the solver then contradicts.
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	cfg.Oracle = config.UnknownOracle
	//
	fuzzer, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	//
	dir := t.TempDir()
	writeFile(t, dir, "unsat/seed.smt2", "(declare-const x Int)\n(assert (< x x))\n")
	//
	if err := fuzzer.Run(context.Background(), []string{dir}); err != nil {
		t.Fatal(err)
	}
	//
	CheckBugs(t, fuzzer, cfg, "incorrect-good-seed-")
}

func TestFuzz_13(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	fuzzer := CheckFuzz(t, cfg, "(assert (>= x 5))\n")
	//
	if n := fuzzer.Stats().Count(INVALID_SEEDS); n != 1 {
		t.Errorf("expected 1 invalid seed, found %d", n)
	}
}

func TestFuzz_14(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	cfg.FileSizeLimit = 10
	fuzzer := CheckFuzz(t, cfg, satSeed)
	//
	if n := fuzzer.Stats().Count(INVALID_SEEDS); n != 1 {
		t.Errorf("expected 1 invalid seed, found %d", n)
	}
}

func TestFuzz_15(t *testing.T) {
	cfg := testConfig(t, fakeSolver(t, "good", "echo sat"))
	//
	fuzzer, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	seed := writeFile(t, t.TempDir(), "seed.smt2", satSeed)
	//
	if err := fuzzer.Run(ctx, []string{seed}); !errors.Is(err, context.Canceled) || !IsCancelled(err) {
		t.Errorf("expected cancellation, found %v", err)
	}
}

func TestFuzz_16(t *testing.T) {
	cfg := testConfig(t)
	//
	if _, err := New(cfg); err == nil {
		t.Errorf("expected error for missing solvers")
	}
}

func TestFuzz_17(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	//
	fuzzer, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	//
	seed := writeFile(t, t.TempDir(), "seed.smt2", satSeed)
	//
	if err := fuzzer.Run(context.Background(), []string{seed}); err == nil {
		t.Errorf("expected error for missing solver")
	}
}

// ============================================================================
// Replay
// ============================================================================

const orSeed = "(declare-const p Bool)\n(declare-const q Bool)\n(assert (or p q))\n(check-sat)\n"

func TestReplay_0(t *testing.T) {
	replay := CheckReplay(t, fakeSolver(t, "good", "echo sat"), "ORTOIMP", orSeed)
	//
	if replay.Candidates != 1 {
		t.Errorf("expected 1 candidate, found %d", replay.Candidates)
	} else if replay.Unknown.HasValue() {
		t.Errorf("unexpected unknown at candidate %d", replay.Unknown.Unwrap())
	}
}

func TestReplay_1(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "seen")
	script := "if [ -f " + marker + " ]; then echo unknown; else touch " + marker + "; echo sat; fi"
	replay := CheckReplay(t, fakeSolver(t, "flaky", script), "ORTOIMP", orSeed)
	//
	if replay.Verdict.String() != "sat" {
		t.Errorf("unexpected verdict %s", replay.Verdict)
	} else if !replay.Unknown.HasValue() || replay.Unknown.Unwrap() != 0 {
		t.Errorf("expected unknown at candidate 0, found %s", replay.Unknown)
	} else if !strings.Contains(replay.Mutant.String(), "=>") {
		t.Errorf("unexpected mutant %s", replay.Mutant)
	}
}

func TestReplay_2(t *testing.T) {
	script, globals := readScript(t, orSeed)
	s := parseSolver(t, fakeSolver(t, "weak", "echo unknown"))
	//
	if _, err := ReplayCandidates(context.Background(), script, globals, s, "ORTOIMP", time.Second,
		t.TempDir()); err == nil {
		t.Errorf("expected error for undecided script")
	}
}

func TestReplay_3(t *testing.T) {
	script, globals := readScript(t, orSeed)
	s := parseSolver(t, fakeSolver(t, "good", "echo sat"))
	//
	if _, err := ReplayCandidates(context.Background(), script, globals, s, "NOSUCHRULE", time.Second,
		t.TempDir()); err == nil {
		t.Errorf("expected error for unknown rule")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func CheckOracle(t *testing.T, path string, expected string) {
	oracle := OracleFromPath(path)
	//
	switch {
	case expected == "" && oracle.HasValue():
		t.Errorf("%s: unexpected oracle %s", path, oracle.Unwrap())
	case expected != "" && (oracle.IsEmpty() || oracle.Unwrap().String() != expected):
		t.Errorf("%s: expected oracle %s, found %s", path, expected, oracle)
	}
}

// CheckFuzz fuzzes a single seed named "seed.smt2" with a given configuration.
func CheckFuzz(t *testing.T, cfg config.Config, seed string) *Fuzzer {
	fuzzer, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	//
	file := writeFile(t, t.TempDir(), "seed.smt2", seed)
	//
	if err := fuzzer.Run(context.Background(), []string{file}); err != nil {
		t.Fatal(err)
	}
	//
	return fuzzer
}

// CheckBugs checks the bugs reported have the given prefixes, in order.
func CheckBugs(t *testing.T, fuzzer *Fuzzer, cfg config.Config, prefixes ...string) {
	bugs := fuzzer.Bugs()
	//
	if len(bugs) != len(prefixes) {
		t.Fatalf("expected %d bug(s), found %v", len(prefixes), bugs)
	}
	//
	for i, bug := range bugs {
		if filepath.Dir(bug) != cfg.BugsFolder {
			t.Errorf("bug %s not in %s", bug, cfg.BugsFolder)
		} else if !strings.HasPrefix(filepath.Base(bug), prefixes[i]) {
			t.Errorf("expected bug %s to start with %s", bug, prefixes[i])
		} else if _, err := os.Stat(bug); err != nil {
			t.Error(err)
		}
	}
	//
	if n := fuzzer.Stats().Bugs(); n != uint64(len(prefixes)) {
		t.Errorf("expected %d bug(s) counted, found %d", len(prefixes), n)
	}
}

// CheckScratchEmpty checks every mutant was removed from the scratch folder.
func CheckScratchEmpty(t *testing.T, cfg config.Config) {
	entries, err := os.ReadDir(cfg.ScratchFolder)
	if err != nil {
		t.Fatal(err)
	} else if len(entries) != 0 {
		t.Errorf("scratch folder not empty: %v", entries)
	}
}

func CheckReplay(t *testing.T, cli string, rule string, input string) Replay {
	script, globals := readScript(t, input)
	//
	replay, err := ReplayCandidates(context.Background(), script, globals, parseSolver(t, cli), rule,
		5*time.Second, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	//
	return replay
}

func readScript(t *testing.T, input string) (*smt.Script, *smt.Globals) {
	script, globals, err := smt.ReadString(input)
	if err != nil {
		t.Fatal(err.Error())
	}
	//
	return script, globals
}

func parseSolver(t *testing.T, cli string) solver.Solver {
	s, err := solver.Parse(cli)
	if err != nil {
		t.Fatal(err)
	}
	//
	return s
}

func testConfig(t *testing.T, solvers ...string) config.Config {
	var (
		cfg = config.Default()
		dir = t.TempDir()
	)
	//
	cfg.Solvers = solvers
	cfg.Oracle = "sat"
	cfg.Iterations = 6
	cfg.WalkLength = 3
	cfg.Timeout = 5 * time.Second
	cfg.Seed = 1
	cfg.ScratchFolder = filepath.Join(dir, "scratch")
	cfg.BugsFolder = filepath.Join(dir, "bugs")
	//
	return cfg
}

// Write an executable shell script acting as a solver, returning its path.
func fakeSolver(t *testing.T, name string, body string) string {
	file := filepath.Join(t.TempDir(), name)
	//
	if err := os.WriteFile(file, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	//
	return file
}

func writeFile(t *testing.T, dir string, name string, contents string) string {
	file := filepath.Join(dir, name)
	//
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	} else if err := os.WriteFile(file, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	//
	return file
}
