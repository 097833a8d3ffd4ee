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
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool runs a fixed set of solvers on the same file, in parallel.
type Pool struct {
	solvers []Solver
	timeout time.Duration
}

// NewPool constructs a pool of solvers sharing a given timeout.
func NewPool(timeout time.Duration, solvers ...Solver) *Pool {
	return &Pool{solvers, timeout}
}

// Solvers returns the solvers of this pool, in configuration order.
func (p *Pool) Solvers() []Solver {
	return p.solvers
}

// Len returns the number of solvers in this pool.
func (p *Pool) Len() int {
	return len(p.solvers)
}

// RunAll runs every solver on a given file, returning their outcomes in
// configuration order.  If any solver fails to start, the remaining runs are
// cancelled and the first error is returned.
func (p *Pool) RunAll(ctx context.Context, file string) ([]Outcome, error) {
	var (
		outcomes = make([]Outcome, len(p.solvers))
		g, gctx  = errgroup.WithContext(ctx)
	)
	//
	for i, s := range p.solvers {
		g.Go(func() error {
			outcome, err := s.Run(gctx, file, p.timeout)
			outcomes[i] = outcome
			//
			return err
		})
	}
	//
	if err := g.Wait(); err != nil {
		return nil, err
	}
	//
	return outcomes, nil
}
