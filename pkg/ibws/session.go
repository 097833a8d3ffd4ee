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
	"fmt"
	"math/rand/v2"

	"github.com/consensys/go-smtfuzz/pkg/smt"
	"github.com/consensys/go-smtfuzz/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Config determines how a mutation session behaves.
type Config struct {
	// Oracle is the known verdict of the script ("sat" or "unsat").
	Oracle string
	// RuleSet selects the active rules (see Catalog.Resolve).
	RuleSet string
	// Seed for the source of randomness.
	Seed uint64
}

// Candidate is a site at which a rule can be applied, along with the parity
// of that site within its top-level formula.
type Candidate struct {
	Term   TermID
	Parity Parity
}

// Session repeatedly mutates a given script using the active rules.  Each
// mutation preserves satisfiability when applied to a satisfiable script, or
// unsatisfiability when applied to an unsatisfiable one.  The script is
// mutated in place.
type Session struct {
	script *smt.Script
	env    *Env
	oracle Oracle
	rules  []Rule
}

// NewSession constructs a mutation session for a given (typechecked) script.
// This fails with a configuration error if the oracle is invalid or the rule
// set selector is unknown.
func NewSession(script *smt.Script, globals *smt.Globals, config Config) (*Session, error) {
	oracle, err := ParseOracle(config.Oracle)
	if err != nil {
		return nil, err
	}
	//
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("rule catalog: %w", err)
	}
	//
	rules, err := catalog.Resolve(config.RuleSet)
	if err != nil {
		return nil, err
	}
	//
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15))
	env := NewEnv(script.Arena, Formulas(script), globals, rng)
	//
	return &Session{script, env, oracle, rules}, nil
}

// Formulas returns the currently asserted formulas of a script, in order.
func Formulas(script *smt.Script) []TermID {
	return script.Asserts()
}

// Env returns the environment in which rules are applied.
func (s *Session) Env() *Env {
	return s.env
}

// Script returns the script being mutated.
func (s *Session) Script() *smt.Script {
	return s.script
}

// Oracle returns the verdict this session preserves.
func (s *Session) Oracle() Oracle {
	return s.oracle
}

// Rules returns the active rules of this session.
func (s *Session) Rules() []Rule {
	return s.rules
}

// Candidates returns every site within a given term at which a given rule
// can be applied, where the term itself has a given parity.  Sites are found
// by descending through the boolean connectives, quantifiers and lets,
// tracking the parity.
func (s *Session) Candidates(term TermID, rule Rule, parity Parity) []Candidate {
	return s.candidates(term, rule, parity, nil)
}

func (s *Session) candidates(term TermID, rule Rule, parity Parity, sites []Candidate) []Candidate {
	var (
		a    = s.env.arena
		node = a.Node(term)
	)
	//
	if rule.IsApplicable(s.env, term, s.oracle.Direction(parity)) {
		sites = append(sites, Candidate{term, parity})
	}
	//
	switch {
	case node.Kind == smt.QuantifiedTerm || node.Kind == smt.LetTerm:
		for _, arg := range node.Args {
			sites = s.candidates(arg, rule, parity, sites)
		}
	case node.IsOp("not") && node.Arity() == 1:
		sites = s.candidates(node.Args[0], rule, parity.Flip(), sites)
	case node.IsOp("and", "or"):
		for _, arg := range node.Args {
			sites = s.candidates(arg, rule, parity, sites)
		}
	case node.IsOp("implies") || (node.IsOp("=>") && node.Arity() > 0 && a.Sort(node.Args[0]) == smt.BoolSort):
		last := node.Arity() - 1
		// Antecedents are negative, the consequent positive
		for i, arg := range node.Args {
			if i == last {
				sites = s.candidates(arg, rule, parity, sites)
			} else {
				sites = s.candidates(arg, rule, parity.Flip(), sites)
			}
		}
	case node.IsOp("ite") && node.Arity() == 3:
		sites = s.candidates(node.Args[1], rule, parity, sites)
		sites = s.candidates(node.Args[2], rule, parity, sites)
	}
	//
	return sites
}

// Mutate applies a single rewrite to the script.  The active rules are
// considered in a random order, and the first which has any candidate site
// amongst the asserted formulas is applied at one such site, chosen
// uniformly.  When no rule has any candidate, the script is left untouched
// and false is returned.  The returned script is that of the session.
func (s *Session) Mutate() (*smt.Script, bool, util.Option[string]) {
	formulas := Formulas(s.script)
	//
	for _, i := range s.env.rand.Perm(len(s.rules)) {
		var (
			rule  = s.rules[i]
			sites []Candidate
		)
		//
		for _, f := range formulas {
			sites = s.candidates(f, rule, POSITIVE, sites)
		}
		//
		if len(sites) == 0 {
			continue
		}
		//
		log.Debugf("rule %s has %d candidate(s)", rule.Name(), len(sites))
		//
		site := sites[s.env.rand.IntN(len(sites))]
		s.Apply(rule, site)
		//
		return s.script, true, util.Some(rule.Name())
	}
	//
	return s.script, false, util.None[string]()
}

// Apply a given rule at a given candidate site, in the direction determined
// by the parity of the site.
func (s *Session) Apply(rule Rule, site Candidate) {
	rule.Apply(s.env, site.Term, s.oracle.Direction(site.Parity))
}

// Rule looks up a rule of the catalog by name (or alias).  This need not be
// one of the active rules.
func (s *Session) Rule(name string) (Rule, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	//
	if rule, ok := catalog.Lookup(name); ok {
		return rule, nil
	}
	//
	return nil, fmt.Errorf("%w: unknown rule %q", ErrConfig, name)
}
