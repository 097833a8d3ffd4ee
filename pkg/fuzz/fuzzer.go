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
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/config"
	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/solver"
	"github.com/consensys/go-smtfuzz/pkg/util"
	"github.com/consensys/go-smtfuzz/pkg/util/source"
	"github.com/consensys/go-smtfuzz/pkg/util/termio"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Fuzzer repeatedly mutates seed scripts, runs a set of solvers on each mutant
// and reports those mutants on which the solvers misbehave.  Since every
// mutation preserves the verdict of the seed, any solver contradicting it is
// unsound.
type Fuzzer struct {
	config   config.Config
	patterns config.Patterns
	pool     *solver.Pool
	baseline util.Option[solver.Solver]
	reporter *Reporter
	stats    *Stats
	status   *termio.StatusBar
	rand     *rand.Rand
	name     string
	start    time.Time
	bugs     []string
}

// New constructs a fuzzer from a given configuration, which is validated
// first.  This creates the scratch and bugs folders if necessary.
func New(cfg config.Config) (*Fuzzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	patterns, err := cfg.Patterns()
	if err != nil {
		return nil, err
	}
	//
	solvers, err := solver.ParseAll(cfg.Solvers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ibws.ErrConfig, err)
	}
	//
	baseline := util.None[solver.Solver]()
	//
	if cfg.Baseline != "" {
		s, err := solver.Parse(cfg.Baseline)
		if err != nil {
			return nil, fmt.Errorf("%w: baseline %w", ibws.ErrConfig, err)
		}
		//
		baseline = util.Some(s)
	}
	//
	if err := os.MkdirAll(cfg.ScratchFolder, 0755); err != nil {
		return nil, err
	}
	//
	reporter, err := NewReporter(cfg.BugsFolder)
	if err != nil {
		return nil, err
	}
	//
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	//
	name := uuid.NewString()
	log.Debugf("fuzzer %s using seed %d", name, seed)
	//
	return &Fuzzer{
		config:   cfg,
		patterns: patterns,
		pool:     solver.NewPool(cfg.Timeout, solvers...),
		baseline: baseline,
		reporter: reporter,
		stats:    NewStats(name),
		status:   termio.NewStatusBar(time.Second),
		rand:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		name:     name,
	}, nil
}

// Name returns the unique name of this fuzzer instance.
func (f *Fuzzer) Name() string {
	return f.name
}

// Stats returns the statistics gathered so far.
func (f *Fuzzer) Stats() *Stats {
	return f.stats
}

// Bugs returns the files of every bug reported so far.
func (f *Fuzzer) Bugs() []string {
	return f.bugs
}

// Run fuzzes every seed found under the given paths, in a random order.
// Cancelling the context stops the campaign after the current solver runs,
// in which case the context error is returned.
func (f *Fuzzer) Run(ctx context.Context, paths []string) error {
	seeds, err := CollectSeeds(paths)
	if err != nil {
		return err
	}
	//
	if f.config.MetricsAddr != "" {
		server, err := ServeMetrics(f.config.MetricsAddr, f.stats)
		if err != nil {
			return err
		}
		//
		defer server.Shutdown() //nolint:errcheck
	}
	//
	f.start = time.Now()
	f.rand.Shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
	log.Infof("fuzzing %d seed(s) with %d solver(s)", len(seeds), f.pool.Len())
	//
	for _, seed := range seeds {
		if err := f.Fuzz(ctx, seed); err != nil {
			f.status.Finish(f.stats.Summary(time.Since(f.start)))
			return err
		}
	}
	//
	f.status.Finish(f.stats.Summary(time.Since(f.start)))
	//
	return nil
}

// Fuzz a single seed file.  Seeds which cannot be read, parsed or given a
// verdict are counted as invalid and skipped.  Fuzzing stops at the first bug
// found.  An error is returned only if the context is cancelled, or a solver
// cannot be run at all.
func (f *Fuzzer) Fuzz(ctx context.Context, path string) error {
	perf := util.NewPerfStats()
	defer perf.Log(fmt.Sprintf("fuzzing %s", path))
	//
	f.stats.Inc(SEEDS)
	//
	script, globals, ok := f.readSeed(path)
	if !ok {
		f.stats.Inc(INVALID_SEEDS)
		return nil
	}
	//
	oracle, err := f.oracle(ctx, path)
	if err != nil {
		return err
	} else if oracle.IsEmpty() {
		log.Debugf("skipping %s (no verdict)", path)
		f.stats.Inc(INVALID_SEEDS)
		//
		return nil
	}
	//
	return f.walk(ctx, path, script, globals, oracle.Unwrap())
}

func (f *Fuzzer) readSeed(path string) (*smt.Script, *smt.Globals, bool) {
	if info, err := os.Stat(path); err != nil {
		log.Debugf("skipping %s (%v)", path, err)
		return nil, nil, false
	} else if f.config.FileSizeLimit > 0 && info.Size() > f.config.FileSizeLimit {
		log.Debugf("skipping %s (%d bytes exceeds limit)", path, info.Size())
		return nil, nil, false
	}
	//
	srcfile, err := source.ReadFile(path)
	if err != nil {
		log.Debugf("skipping %s (%v)", path, err)
		return nil, nil, false
	}
	//
	script, globals, serr := smt.Read(srcfile)
	if serr != nil {
		log.Debugf("skipping %s (%s)", path, serr.Error())
		return nil, nil, false
	}
	//
	return script, globals, true
}

// Determine the verdict of a seed, either from the configuration, from its
// path or, failing that, by asking the first solver.
func (f *Fuzzer) oracle(ctx context.Context, path string) (util.Option[ibws.Oracle], error) {
	if f.config.Oracle != config.UnknownOracle {
		oracle, err := ibws.ParseOracle(f.config.Oracle)
		if err != nil {
			return util.None[ibws.Oracle](), err
		}
		//
		return util.Some(oracle), nil
	} else if oracle := OracleFromPath(path); oracle.HasValue() {
		return oracle, nil
	}
	//
	outcome, err := f.pool.Solvers()[0].Run(ctx, path, f.config.Timeout)
	if err != nil {
		return util.None[ibws.Oracle](), err
	}
	//
	if result := outcome.Result(); result.Solved() && outcome.Stderr == "" {
		return util.Some(toOracle(result[0])), nil
	}
	//
	return util.None[ibws.Oracle](), nil
}

// Perform random walks from a given seed.  Every walk starts afresh from the
// seed, and continues for a fixed number of steps.
func (f *Fuzzer) walk(ctx context.Context, path string, seed *smt.Script, globals *smt.Globals,
	oracle ibws.Oracle) error {
	var (
		session  *ibws.Session
		previous []solver.Result
		err      error
	)
	//
	for i := uint(0); i < f.config.Iterations; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		//
		if i%f.config.WalkLength == 0 {
			cfg := ibws.Config{Oracle: oracle.String(), RuleSet: f.config.RuleSet, Seed: f.rand.Uint64()}
			//
			if session, err = ibws.NewSession(seed.Clone(), globals, cfg); err != nil {
				return err
			}
			//
			previous = nil
		}
		//
		before := session.Script().Clone()
		//
		mutant, ok, rule := session.Mutate()
		if !ok {
			log.Debugf("no rule applies to %s", path)
			return nil
		}
		//
		f.stats.Inc(MUTANTS)
		//
		bug, results, err := f.check(ctx, path, i, mutant, oracle, previous)
		if err != nil {
			return err
		} else if bug != nil {
			bug.Rule = rule.Unwrap()
			//
			if bug.Kind == IMPLICATION {
				bug.Previous = before
			}
			//
			return f.report(bug)
		}
		//
		previous = results
		//
		f.status.Update(func() string { return f.stats.Summary(time.Since(f.start)) })
	}
	//
	return nil
}

// Run every solver on a given mutant, and classify their outcomes.  This
// returns the first bug found (if any), along with the result of each solver
// (or nil where the solver gave no usable result).  Implication
// incompleteness is checked against the results on the immediately preceding
// mutant, when given.
func (f *Fuzzer) check(ctx context.Context, path string, iteration uint, mutant *smt.Script,
	oracle ibws.Oracle, previous []solver.Result) (*Bug, []solver.Result, error) {
	name := fmt.Sprintf("%s-%s-%d%s", Stem(path), f.name, iteration, SeedExtension)
	file := filepath.Join(f.config.ScratchFolder, name)
	//
	if err := os.WriteFile(file, []byte(mutant.String()), 0644); err != nil {
		return nil, nil, err
	}
	//
	defer os.Remove(file) //nolint:errcheck
	//
	outcomes, err := f.pool.RunAll(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	//
	baseline := util.None[solver.Result]()
	//
	if f.baseline.HasValue() {
		outcome, err := f.baseline.Unwrap().Run(ctx, file, f.config.Timeout)
		if err != nil {
			return nil, nil, err
		}
		//
		baseline = util.Some(outcome.Result())
	}
	//
	var (
		results = make([]solver.Result, len(outcomes))
		invalid bool
	)
	//
	for i, outcome := range outcomes {
		s := f.pool.Solvers()[i]
		f.stats.Observe(s.Name, outcome.Elapsed)
		//
		var before solver.Result
		if previous != nil {
			before = previous[i]
		}
		//
		kind, result, ok := f.classify(outcome, baseline, before, oracle)
		//
		switch {
		case kind.HasValue():
			return &Bug{Kind: kind.Unwrap(), Seed: path, Solver: s, Mutant: mutant, Outcome: outcome}, nil, nil
		case !ok:
			invalid = true
		default:
			results[i] = result
		}
	}
	//
	if invalid {
		f.stats.Inc(INVALID)
	}
	//
	return nil, results, nil
}

// Classify the outcome of a single solver run on a mutant, given the result of
// the baseline solver (if any) and that of the same solver on the previous
// mutant (or nil).  This returns the kind of bug exposed (if any), or the
// result of the solver along with a flag indicating whether the mutant was
// valid.  Timeouts and runs without a result give a nil result.
func (f *Fuzzer) classify(outcome solver.Outcome, baseline util.Option[solver.Result], previous solver.Result,
	oracle ibws.Oracle) (util.Option[BugKind], solver.Result, bool) {
	var (
		none   = util.None[BugKind]()
		result = outcome.Result()
	)
	//
	switch {
	case config.Matches(f.patterns.Crash, outcome.Stdout, outcome.Stderr):
		if config.Matches(f.patterns.Duplicate, outcome.Stdout, outcome.Stderr) {
			f.stats.Inc(DUPLICATES)
			return none, nil, true
		}
		//
		return util.Some(CRASH), nil, true
	case config.Matches(f.patterns.Ignore, outcome.Stdout, outcome.Stderr):
		return none, nil, false
	case outcome.Segfault():
		return util.Some(SEGFAULT), nil, true
	case outcome.TimedOut:
		f.stats.Inc(TIMEOUTS)
		return none, nil, true
	case result.Empty():
		log.Debugf("no verdict (exit code %d)", outcome.ExitCode)
		return none, nil, false
	case baseline.HasValue() && baseline.Unwrap().Solved() && result.Unknown():
		return util.Some(REGRESSION), result, true
	case previous.Solved() && result.Unknown():
		return util.Some(IMPLICATION), result, true
	case !result.Agrees(toVerdict(oracle)):
		return util.Some(INCORRECT), result, true
	}
	//
	return none, result, true
}

func (f *Fuzzer) report(bug *Bug) error {
	f.stats.Inc(bug.Kind.Event())
	//
	file, err := f.reporter.Report(bug)
	if err != nil {
		return err
	}
	//
	f.bugs = append(f.bugs, file)
	log.Infof("found %s, written to %s", bug.String(), file)
	//
	return nil
}

func toVerdict(oracle ibws.Oracle) solver.Verdict {
	if oracle == ibws.SAT {
		return solver.SAT
	}
	//
	return solver.UNSAT
}

func toOracle(verdict solver.Verdict) ibws.Oracle {
	if verdict == solver.SAT {
		return ibws.SAT
	}
	//
	return ibws.UNSAT
}

// IsCancelled checks whether an error arises from cancelling a campaign.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
