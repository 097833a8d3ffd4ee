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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/solver"
	"github.com/consensys/go-smtfuzz/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Replay summarises the outcome of applying a rule at each of its candidate
// sites in turn.
type Replay struct {
	// Verdict of the solver on the original script
	Verdict solver.Verdict
	// Number of candidate sites found
	Candidates int
	// Index of the first candidate on which the solver gave up (if any)
	Unknown util.Option[int]
	// Script obtained by applying the rule at that candidate (if any)
	Mutant *smt.Script
}

// ReplayCandidates applies a given rule at each of its candidate sites within
// a script, one at a time and always starting from the original script.  A
// solver is run on each result, stopping at the first on which it gives up
// (or times out).  The solver must decide the original script, which
// determines the direction of rewriting.  Files are written into a given
// folder.
func ReplayCandidates(ctx context.Context, script *smt.Script, globals *smt.Globals, s solver.Solver,
	rule string, timeout time.Duration, folder string) (Replay, error) {
	var replay Replay
	//
	outcome, err := runOn(ctx, s, script, filepath.Join(folder, "original"+SeedExtension), timeout)
	if err != nil {
		return replay, err
	}
	//
	result := outcome.Result()
	if !result.Solved() || outcome.Stderr != "" {
		return replay, fmt.Errorf("%s does not decide the original script (%q)", s.Name, result.String())
	}
	//
	replay.Verdict = result[0]
	//
	cfg := ibws.Config{Oracle: toOracle(replay.Verdict).String(), RuleSet: ibws.AllRules}
	//
	session, err := ibws.NewSession(script.Clone(), globals, cfg)
	if err != nil {
		return replay, err
	}
	//
	r, err := session.Rule(rule)
	if err != nil {
		return replay, err
	}
	//
	var candidates []ibws.Candidate
	//
	for _, f := range ibws.Formulas(session.Script()) {
		candidates = append(candidates, session.Candidates(f, r, ibws.POSITIVE)...)
	}
	//
	replay.Candidates = len(candidates)
	log.Infof("rule %s has %d candidate(s)", r.Name(), len(candidates))
	// Cloning preserves term identifiers, hence candidates of the original
	// script remain candidates of every clone.
	for i, c := range candidates {
		cfg.Seed = uint64(i)
		//
		attempt, err := ibws.NewSession(script.Clone(), globals, cfg)
		if err != nil {
			return replay, err
		}
		//
		attempt.Apply(r, c)
		//
		file := filepath.Join(folder, fmt.Sprintf("candidate-%d%s", i, SeedExtension))
		//
		outcome, err := runOn(ctx, s, attempt.Script(), file, timeout)
		if err != nil {
			return replay, err
		}
		//
		log.Debugf("candidate %d: %s", i, outcome.Result().String())
		//
		if outcome.TimedOut || outcome.Result().Unknown() {
			replay.Unknown = util.Some(i)
			replay.Mutant = attempt.Script()
			//
			return replay, nil
		}
	}
	//
	return replay, nil
}

func runOn(ctx context.Context, s solver.Solver, script *smt.Script, file string,
	timeout time.Duration) (solver.Outcome, error) {
	if err := os.WriteFile(file, []byte(script.String()), 0644); err != nil {
		return solver.Outcome{}, err
	}
	//
	return s.Run(ctx, file, timeout)
}
