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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// ExitTimeout is the exit code reported when a solver run is killed for
// exceeding its time limit.
const ExitTimeout = 137

// ExitNotFound is the exit code reported when a solver command cannot be found.
const ExitNotFound = 127

// Grace period between killing a solver and abandoning its output pipes.
const waitDelay = time.Second

// Solver is an external SMT solver, invoked as a command line to which the
// file being solved is appended.
type Solver struct {
	// Short name used in reports
	Name string
	// Command line, with the executable first
	Command []string
}

// Parse a solver command line, such as "z3 -smt2".
func Parse(cli string) (Solver, error) {
	fields := strings.Fields(cli)
	//
	if len(fields) == 0 {
		return Solver{}, errors.New("empty solver command")
	}
	//
	return Solver{filepath.Base(fields[0]), fields}, nil
}

// ParseAll parses a list of solver command lines.
func ParseAll(clis []string) ([]Solver, error) {
	solvers := make([]Solver, len(clis))
	//
	for i, cli := range clis {
		s, err := Parse(cli)
		if err != nil {
			return nil, fmt.Errorf("solver %d: %w", i+1, err)
		}
		//
		solvers[i] = s
	}
	//
	return solvers, nil
}

func (s Solver) String() string {
	return strings.Join(s.Command, " ")
}

// Outcome captures everything observed from a single solver run.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Set when the run was killed for exceeding its time limit
	TimedOut bool
	Elapsed  time.Duration
}

// Result returns the verdicts printed by the solver.
func (o Outcome) Result() Result {
	return ParseResult(o.Stdout)
}

// Segfault checks whether the solver died from a segmentation fault.
func (o Outcome) Segfault() bool {
	return o.ExitCode == -int(syscall.SIGSEGV) || o.ExitCode == 245
}

// Run a solver on a given file, killing it once a timeout has elapsed.  A
// timeout is not an error, and instead is reported in the outcome.  An error is
// returned only when the solver could not be started, or the given context
// was cancelled.
func (s Solver) Run(ctx context.Context, file string, timeout time.Duration) (Outcome, error) {
	var (
		stdout, stderr bytes.Buffer
		outcome        Outcome
	)
	//
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	//
	cmd := exec.CommandContext(runCtx, s.Command[0], append(s.Command[1:], file)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	//
	start := time.Now()
	err := cmd.Run()
	outcome.Elapsed = time.Since(start)
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()
	//
	var exitErr *exec.ExitError
	//
	switch {
	case ctx.Err() != nil:
		return outcome, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.TimedOut = true
		outcome.ExitCode = ExitTimeout
	case errors.As(err, &exitErr):
		outcome.ExitCode = exitCode(exitErr)
	case err != nil:
		outcome.ExitCode = ExitNotFound
		return outcome, fmt.Errorf("running %s: %w", s.Name, err)
	}
	//
	log.Debugf("%s finished in %0.2fs (exit code %d)", s.Name, outcome.Elapsed.Seconds(), outcome.ExitCode)
	//
	return outcome, nil
}

// Exit code of a process, where death by a signal is reported as the negated
// signal number.
func exitCode(err *exec.ExitError) int {
	if status, ok := err.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}
	//
	return err.ExitCode()
}
