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
	"slices"
	"strings"
	"sync"

	"github.com/consensys/go-smtfuzz/pkg/smt"
)

// Names of the predefined rule groups.
const (
	OperatorReplacementGroup = "operator-replacement"
	CoreLogicGroup           = "core-logic"
	RegLanGroup              = "reglan"
	BasicGroup               = "basic"
	// AllRules selects every rule in the catalog.
	AllRules = "all"
)

// Catalog is the registry of named rules, along with the predefined groups
// and the aliases by which operator replacements can also be selected.
type Catalog struct {
	rules   map[string]Rule
	groups  map[string][]string
	aliases map[string]string
}

// DefaultCatalog returns the catalog of every known rule.  This is
// constructed once, and is immutable thereafter.
var DefaultCatalog = sync.OnceValues(buildCatalog)

// Names returns the names of every rule in the catalog, in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.rules))
	//
	for name := range c.rules {
		names = append(names, name)
	}
	//
	slices.Sort(names)
	//
	return names
}

// Groups returns the names of the predefined groups, in sorted order.
func (c *Catalog) Groups() []string {
	names := make([]string, 0, len(c.groups))
	//
	for name := range c.groups {
		names = append(names, name)
	}
	//
	slices.Sort(names)
	//
	return names
}

// Group returns the (sorted) names of the rules in a given group.
func (c *Catalog) Group(name string) ([]string, bool) {
	group, ok := c.groups[name]
	return group, ok
}

// Aliases returns the map from aliases to the rule names they stand for.
func (c *Catalog) Aliases() map[string]string {
	return c.aliases
}

// Lookup a rule by its name, or by an alias.
func (c *Catalog) Lookup(name string) (Rule, bool) {
	if rule, ok := c.rules[name]; ok {
		return rule, true
	} else if alias, ok := c.aliases[name]; ok {
		return c.rules[alias], true
	}
	//
	return nil, false
}

// Resolve a rule set selector into the rules it denotes, ordered by name.  A
// selector is either empty or "all" (every rule), the name of a group, the
// alias of a rule or the name of a rule.
func (c *Catalog) Resolve(selector string) ([]Rule, error) {
	var names []string
	//
	selector = strings.TrimSpace(selector)
	//
	if group, ok := c.groups[selector]; ok {
		names = group
	} else if selector == "" || selector == AllRules {
		names = c.Names()
	} else if alias, ok := c.aliases[selector]; ok {
		names = []string{alias}
	} else if _, ok := c.rules[selector]; ok {
		names = []string{selector}
	} else {
		return nil, fmt.Errorf("%w: not a valid rule set: %q", ErrConfig, selector)
	}
	//
	rules := make([]Rule, len(names))
	//
	for i, name := range names {
		rules[i] = c.rules[name]
	}
	//
	return rules, nil
}

func (c *Catalog) add(rule Rule) error {
	if _, ok := c.rules[rule.Name()]; ok {
		return fmt.Errorf("duplicate rule %s", rule.Name())
	}
	//
	c.rules[rule.Name()] = rule
	//
	return nil
}

func (c *Catalog) alias(alias string, name string) error {
	if other, ok := c.aliases[alias]; ok {
		return fmt.Errorf("alias %s already used by %s", alias, other)
	}
	//
	c.aliases[alias] = name
	//
	return nil
}

func (c *Catalog) group(name string, members ...string) error {
	for _, member := range members {
		if _, ok := c.rules[member]; !ok {
			return fmt.Errorf("group %s has unknown rule %s", name, member)
		}
	}
	//
	members = slices.Clone(members)
	slices.Sort(members)
	c.groups[name] = slices.Compact(members)
	//
	return nil
}

// Named homomorphisms of the catalog.  Operator replacements are listed
// separately, since they are also given aliases.
func homomorphisms() map[string]*Homomorphism {
	var (
		str = []smt.Sort{smt.StringSort}
		num = []smt.Sort{smt.IntSort, smt.RealSort}
	)
	//
	return map[string]*Homomorphism{
		"SUFFIXLEN":         homomorphism("str.suffixof", smt.StringSort, "<=", smt.IntSort, Named("str.len")),
		"PREFIXLEN":         homomorphism("str.prefixof", smt.StringSort, "<=", smt.IntSort, Named("str.len")),
		"CONTAINSLEN":       homomorphism("str.contains", smt.StringSort, ">=", smt.IntSort, Named("str.len")),
		"HOM_PREFIX_STRLEN": homomorphism("str.prefixof", smt.StringSort, "<=", smt.IntSort, Named("str.len")),
		"SUFFIX-STRLEN":     homomorphism("str.suffixof", smt.StringSort, "<=", smt.IntSort, Named("str.len")),
		"CONTAINS-STRLEN":   homomorphism("str.contains", smt.StringSort, ">=", smt.IntSort, Named("str.len")),
		//
		"INT-LEQ-SUBSTR-PREFIX": substring("<=", "str.prefixof", substrPrefix),
		"INT-LE-SUBSTR-PREFIX":  substring("<", "str.prefixof", substrPrefix),
		"INT-GEQ-SUBSTR-SUFFIX": substring(">=", "str.suffixof", substrSuffix),
		"INT-GE-SUBSTR-SUFFIX":  substring(">", "str.suffixof", substrSuffix),
		//
		"STR-EQ-ISDIGIT-EQ":        homomorphism("=", smt.StringSort, "=", smt.BoolSort, Named("str.is_digit")),
		"STR-EQ-TOCODE-EQ":         homomorphism("=", smt.StringSort, "=", smt.IntSort, Named("str.to_code")),
		"STR-EQ-TOINT-EQ":          homomorphism("=", smt.StringSort, "=", smt.IntSort, Named("str.to_int")),
		"INT-EQ-FROM_CODE-EQ":      homomorphism("=", smt.IntSort, "=", smt.StringSort, Named("str.from_code")),
		"INT-EQ-FROM_INT-EQ":       homomorphism("=", smt.IntSort, "=", smt.StringSort, Named("str.from_int")),
		"INT-LE-FROM_INT-DISTINCT": guarded(homomorphism("<", smt.IntSort, "distinct", smt.StringSort, Named("str.from_int"))),
		"INT-GE-FROM_INT-DISTINCT": guarded(homomorphism(">", smt.IntSort, "distinct", smt.StringSort, Named("str.from_int"))),
		//
		"EQ-ABS-INT":    RelationPreservingAutomorphism("=", Named("abs"), smt.IntSort),
		"EQ-NEG-INT":    RelationPreservingAutomorphism("=", Named("-"), smt.IntSort),
		"EQ-NEG-REAL":   RelationPreservingAutomorphism("=", Named("-"), smt.RealSort),
		"EQ-SUB-INT-L":  RelationPreservingAutomorphism("=", binary("-", smt.IntSort, true), smt.IntSort),
		"EQ-SUB-INT-R":  RelationPreservingAutomorphism("=", binary("-", smt.IntSort, false), smt.IntSort),
		"EQ-ADD-INT-L":  RelationPreservingAutomorphism("=", binary("+", smt.IntSort, true), smt.IntSort),
		"EQ-ADD-INT-R":  RelationPreservingAutomorphism("=", binary("+", smt.IntSort, false), smt.IntSort),
		"LEQ-ADD-INT-L": RelationPreservingAutomorphism("<=", binary("+", smt.IntSort, true), smt.IntSort),
		"GEQ-ADD-INT-R": RelationPreservingAutomorphism(">=", binary("+", smt.IntSort, false), smt.IntSort),
		"LE-ADD-INT-L":  RelationPreservingAutomorphism("<", binary("+", smt.IntSort, true), smt.IntSort),
		"GE-ADD-INT-R":  RelationPreservingAutomorphism(">", binary("+", smt.IntSort, false), smt.IntSort),
		//
		"EQ-STR-CONCAT-L": RelationPreservingAutomorphism("=", binary("str.++", smt.StringSort, true), smt.StringSort),
		"EQ-STR-CONCAT-R": RelationPreservingAutomorphism("=", binary("str.++", smt.StringSort, false), smt.StringSort),
		"PRE-STR-CONCAT":  RelationPreservingAutomorphism("str.prefixof", binary("str.++", smt.StringSort, true), smt.StringSort),
		"SUF-STR-CONCAT":  RelationPreservingAutomorphism("str.suffixof", binary("str.++", smt.StringSort, false), smt.StringSort),
		"EQ-STR-SUBSTR":   RelationPreservingAutomorphism("=", trailing("str.substr", smt.IntSort, smt.IntSort), smt.StringSort),
		"EQ-STR-REP":      RelationPreservingAutomorphism("=", trailing("str.replace", smt.StringSort, smt.StringSort), smt.StringSort),
		"EQ-STR-REPALL":   RelationPreservingAutomorphism("=", trailing("str.replace_all", smt.StringSort, smt.StringSort), smt.StringSort),
		"EQ-STR-REPRE":    RelationPreservingAutomorphism("=", trailing("str.replace_re", smt.RegLanSort, smt.StringSort), smt.StringSort),
		"EQ-STR-REPREALL": RelationPreservingAutomorphism("=", trailing("str.replace_re_all", smt.RegLanSort, smt.StringSort), smt.StringSort),
		//
		"OPREP_STR_EQ_LEQ":          OperatorReplacement("=", "str.<=", str, false),
		"OPREP_STR_EQ_PREFIX":       OperatorReplacement("=", "str.prefixof", str, false),
		"OPREP_STR_EQ_SUFFIX":       OperatorReplacement("=", "str.suffixof", str, false),
		"OPREP_STR_EQ_CONTAINS":     OperatorReplacement("=", "str.contains", str, false),
		"OPREP_STR_LE_LEQ":          OperatorReplacement("str.<", "str.<=", str, false),
		"OPREP_STR_LE_DIST":         OperatorReplacement("str.<", "distinct", str, false),
		"OPREP_STR_PREFIX_LEQ":      OperatorReplacement("str.prefixof", "str.<=", str, false),
		"OPREP_STR_PREFIX_CONTAINS": OperatorReplacement("str.prefixof", "str.contains", str, true),
		"OPREP_STR_SUFFIX_CONTAINS": OperatorReplacement("str.suffixof", "str.contains", str, true),
		"OPREP_NUM_EQ_GEQ":          OperatorReplacement("=", ">=", num, false),
		"OPREP_NUM_GE_GEQ":          OperatorReplacement(">", ">=", num, false),
		"OPREP_NUM_LE_LEQ":          OperatorReplacement("<", "<=", num, false),
		"OPREP_NUM_EQ_LEQ":          OperatorReplacement("=", "<=", num, false),
		"OPREP_NUM_GE_DIST":         OperatorReplacement(">", "distinct", num, false),
		"OPREP_NUM_LE_DIST":         OperatorReplacement("<", "distinct", num, false),
		"OPREP_AND_OR":              OperatorReplacement("and", "or", []smt.Sort{smt.BoolSort}, false),
		"OPREP_XOR_OR":              OperatorReplacement("xor", "or", []smt.Sort{smt.BoolSort}, false),
	}
}

func homomorphism(r string, from smt.Sort, s string, to smt.Sort, f Transform) *Homomorphism {
	return &Homomorphism{R: r, S: s, Sorts: []SortPair{{from, to}}, F: f}
}

// Map integer arguments to substrings of a random string, guarded by every
// argument being non-negative.
func substring(r string, s string, body ParametricBody) *Homomorphism {
	h := homomorphism(r, smt.IntSort, s, smt.StringSort, Parametric([]smt.Sort{smt.StringSort}, body))
	h.Arity = 2
	//
	return guarded(h)
}

// (str.substr w 0 t)
func substrPrefix(a *smt.Arena, randoms []TermID, t TermID) TermID {
	return a.App("str.substr", smt.StringSort, randoms[0], a.Int(0), t)
}

// (str.substr w t (str.len w))
func substrSuffix(a *smt.Arena, randoms []TermID, t TermID) TermID {
	length := a.App("str.len", smt.IntSort, a.Copy(randoms[0]))
	return a.App("str.substr", smt.StringSort, randoms[0], t, length)
}

// Guard a homomorphism over integers by all arguments being non-negative.
func guarded(h *Homomorphism) *Homomorphism {
	h.Side = func(a *smt.Arena, args []TermID) TermID {
		conjuncts := make([]TermID, len(args))
		//
		for i, t := range args {
			conjuncts[i] = a.App(">=", smt.BoolSort, t, a.Int(0))
		}
		//
		if len(conjuncts) == 1 {
			return conjuncts[0]
		}
		//
		return a.App("and", smt.BoolSort, conjuncts...)
	}
	//
	return h
}

// Apply a binary operator to each argument and a random value, placed either
// on the left or the right.
func binary(op string, sort smt.Sort, left bool) Transform {
	return Parametric([]smt.Sort{sort}, func(a *smt.Arena, randoms []TermID, t TermID) TermID {
		if left {
			return a.App(op, sort, randoms[0], t)
		}
		//
		return a.App(op, sort, t, randoms[0])
	})
}

// Apply a string operator to each argument followed by random values of the
// given sorts.
func trailing(op string, sorts ...smt.Sort) Transform {
	return Parametric(sorts, func(a *smt.Arena, randoms []TermID, t TermID) TermID {
		return a.App(op, smt.StringSort, append([]TermID{t}, randoms...)...)
	})
}

// Alias an operator replacement by the operators it rewrites when weakening,
// as in OPREP[>=][=].
func oprepAlias(from string, to string) string {
	return fmt.Sprintf("OPREP[%s][%s]", from, to)
}

func buildCatalog() (*Catalog, error) {
	c := &Catalog{make(map[string]Rule), make(map[string][]string), make(map[string]string)}
	//
	for name, h := range homomorphisms() {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		} else if err := c.add(NewImplication(name, h)); err != nil {
			return nil, err
		}
		//
		if strings.HasPrefix(name, "OPREP_") {
			if err := c.alias(oprepAlias(h.R, h.S), name); err != nil {
				return nil, err
			}
		}
	}
	//
	regexOpReps := map[string]RegexOperatorReplacement{
		"OPREP_RE_PLUS_STAR":   {Weak: "re.+", Strong: "re.*"},
		"OPREP_RE_INTER_UNION": {Weak: "re.inter", Strong: "re.union"},
	}
	//
	for name, r := range regexOpReps {
		if err := c.add(NewRegexRule(name, r)); err != nil {
			return nil, err
		} else if err := c.alias(oprepAlias(r.Strong, r.Weak), name); err != nil {
			return nil, err
		}
	}
	//
	rules := []Rule{
		NewImplication("STRLEQSUBSTR", StringLeqSubstr{}),
		NewImplication("STRLEQAPP", StringLeqAppend{}),
		NewImplication("ORTOIMP", OrToImp{}),
		NewImplication("ADDDISJ", AddDisjunct{}),
		NewImplication("DROPCONJ", DropConjunct{}),
		NewImplication("REGEXAPP", RegexAppend{}),
		NewImplication("INSTQUANT", InstantiateQuantifier{}),
		NewImplication("IMPLIFTTOFORALL", ImpLiftToForall{}),
		NewImplication("IMPTOITEFALSE", ImpToIteFalse{}),
		NewImplication("IMPTOITETRUE", ImpToIteTrue{}),
		NewImplication("ITETOIMPFALSE", IteToImpFalse{}),
		NewImplication("ITETOIMPTRUE", IteToImpTrue{}),
		NewImplication("ORTOITE", OrToIte{}),
		NewImplication("STRCONTOEX", StringContainsToExists{}),
		NewImplication("STRSUFTOEX", StringSuffixToExists{}),
		NewImplication("STRPRETOEX", StringPrefixToExists{}),
		NewImplication("STREQDISTAPP", StringEqualityDistinctAppend{}),
		NewImplication("STRCONTAINSPRESUF", StringContainsPrefixSuffix{}),
		NewEquivalence("STREQSUFFIXSUFFIX", StringEqualitySuffixSuffix{}),
		NewEquivalence("STREQPREFIXPREFIX", StringEqualityPrefixPrefix{}),
		NewImplication("STREQPREFIXSUFFIX", StringEqualityPrefixSuffix{}),
		NewImplication("UNINFUNEQ", UninterpretedFunctionEquality{}),
		NewImplication("QUANTSWP", QuantifierSwap{}),
		NewEquivalence("NUMRELSHIFTBALANCED", NumberRelationShiftBalanced{}),
		NewImplication("NUMRELSHIFTSKEWED", NumberRelationShiftSkewed{}),
		// Regular languages
		NewRegexRule("RE_DISTRIBUTE_UNION_CONCAT", RegexDistributeUnionConcat{}),
		NewRegexRule("RE_CHANGE_RANGE", RegexChangeRange{}),
		NewRegexRule("RE_UNION_IDEMPOTENT", RegexIdempotent{"re.union"}),
		NewRegexRule("RE_INTER_IDEMPOTENT", RegexIdempotent{"re.inter"}),
		NewRegexRule("RE_ADD_LOOP", RegexAddLoop{}),
		NewRegexRule("RE_ADD_OPT", RegexWrap{"re.opt"}),
		NewRegexRule("RE_ADD_PLUS", RegexWrap{"re.+"}),
		NewRegexRule("RE_CONCAT_TO_OPTION_POWER", RegexConcatToOptionPower{}),
		NewRegexRule("RE_ADD_FREE_UNION", RegexAddFreeUnion{}),
		// Equalities between terms of any sort
		NewCongruence(NewEquality("EMPTYSTRREP", EmptyStringReplace{})),
		NewCongruence(NewEquality("STRPRETOEMPTREP", StringPrependToEmptyReplace{})),
		NewCongruence(NewEquality("STRTOINT", StringToInt{})),
	}
	//
	for _, rule := range rules {
		if err := c.add(rule); err != nil {
			return nil, err
		}
	}
	//
	opreps := []string{
		"OPREP_STR_EQ_LEQ", "OPREP_STR_EQ_PREFIX", "OPREP_STR_EQ_SUFFIX", "OPREP_STR_EQ_CONTAINS",
		"OPREP_STR_LE_LEQ", "OPREP_STR_LE_DIST", "OPREP_STR_PREFIX_LEQ", "OPREP_STR_PREFIX_CONTAINS",
		"OPREP_STR_SUFFIX_CONTAINS", "OPREP_RE_PLUS_STAR", "OPREP_RE_INTER_UNION", "OPREP_NUM_EQ_GEQ",
		"OPREP_NUM_GE_GEQ", "OPREP_NUM_LE_LEQ", "OPREP_NUM_EQ_LEQ", "OPREP_NUM_GE_DIST",
		"OPREP_NUM_LE_DIST", "OPREP_AND_OR", "OPREP_XOR_OR",
	}
	core := []string{
		"ORTOIMP", "ADDDISJ", "DROPCONJ", "INSTQUANT", "IMPLIFTTOFORALL", "IMPTOITEFALSE",
		"IMPTOITETRUE", "ITETOIMPFALSE", "ITETOIMPTRUE", "ORTOITE", "QUANTSWP", "OPREP_AND_OR",
		"OPREP_XOR_OR",
	}
	reglan := []string{
		"REGEXAPP", "OPREP_RE_PLUS_STAR", "OPREP_RE_INTER_UNION", "RE_DISTRIBUTE_UNION_CONCAT",
		"RE_CHANGE_RANGE", "RE_UNION_IDEMPOTENT", "RE_INTER_IDEMPOTENT", "RE_ADD_LOOP", "RE_ADD_OPT",
		"RE_ADD_PLUS", "RE_CONCAT_TO_OPTION_POWER", "RE_ADD_FREE_UNION",
	}
	// Everything in operator replacement or core logic, except quantifier
	// instantiation.
	basic := slices.DeleteFunc(slices.Concat(opreps, core), func(name string) bool {
		return name == "INSTQUANT"
	})
	//
	for name, members := range map[string][]string{
		OperatorReplacementGroup: opreps,
		CoreLogicGroup:           core,
		RegLanGroup:              reglan,
		BasicGroup:               basic,
	} {
		if err := c.group(name, members...); err != nil {
			return nil, err
		}
	}
	//
	return c, nil
}
