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
package ibws

import (
	"errors"
	"fmt"
)

// ErrConfig is the error wrapped by every configuration error reported when
// constructing a mutation session.
var ErrConfig = errors.New("invalid mutation configuration")

// Direction indicates whether a rewrite must make the enclosing formula easier
// to satisfy (weakening) or harder to satisfy (strengthening).
type Direction int

// WEAKENING replaces a formula with one it implies.
const WEAKENING Direction = 1

// STRENGTHENING replaces a formula with one that implies it.
const STRENGTHENING Direction = -1

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	return -d
}

func (d Direction) String() string {
	if d == WEAKENING {
		return "weakening"
	}
	//
	return "strengthening"
}

// Parity records whether a subterm occurs in a monotone (positive) or
// antitone (negative) position of its enclosing formula.
type Parity int

// POSITIVE parity means making the subterm true more often makes the formula
// true more often.
const POSITIVE Parity = 1

// NEGATIVE parity means making the subterm true more often makes the formula
// true less often.
const NEGATIVE Parity = -1

// Flip returns the opposite parity.
func (p Parity) Flip() Parity {
	return -p
}

// Oracle is the known satisfiability verdict of the seed formula.
type Oracle int

// SAT indicates the seed is satisfiable.
const SAT Oracle = 1

// UNSAT indicates the seed is unsatisfiable.
const UNSAT Oracle = -1

// ParseOracle converts "sat" or "unsat" into an oracle.
func ParseOracle(text string) (Oracle, error) {
	switch text {
	case "sat":
		return SAT, nil
	case "unsat":
		return UNSAT, nil
	}
	//
	return 0, fmt.Errorf("%w: oracle must be sat or unsat, found %q", ErrConfig, text)
}

// Direction determines the direction in which a subterm of a given parity
// must be rewritten.  For a satisfiable seed, positive positions are weakened
// and negative positions strengthened, and vice-versa for an unsatisfiable
// seed.
func (o Oracle) Direction(p Parity) Direction {
	return Direction(int(o) * int(p))
}

func (o Oracle) String() string {
	if o == SAT {
		return "sat"
	}
	//
	return "unsat"
}
