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
	"slices"
	"strings"
	"testing"
)

func TestCatalog_0(t *testing.T) {
	catalog := checkCatalog(t)
	//
	if groups := catalog.Groups(); !slices.Equal(groups, []string{"basic", "core-logic", "operator-replacement", "reglan"}) {
		t.Errorf("unexpected groups %v", groups)
	}
}

func TestCatalog_1(t *testing.T) {
	catalog := checkCatalog(t)
	basic, _ := catalog.Group(BasicGroup)
	//
	if len(basic) != 29 {
		t.Errorf("expected 29 basic rules, found %d", len(basic))
	} else if slices.Contains(basic, "INSTQUANT") {
		t.Errorf("basic rules include INSTQUANT")
	}
	//
	core, _ := catalog.Group(CoreLogicGroup)
	if !slices.Contains(core, "INSTQUANT") {
		t.Errorf("core logic rules exclude INSTQUANT")
	}
}

func TestCatalog_2(t *testing.T) {
	catalog := checkCatalog(t)
	names := catalog.Names()
	//
	for _, selector := range []string{"", "all", " all "} {
		rules, err := catalog.Resolve(selector)
		//
		if err != nil {
			t.Fatal(err)
		} else if len(rules) != len(names) {
			t.Errorf("selector %q gave %d rules, expected %d", selector, len(rules), len(names))
		}
		// Resolved rules are ordered by name
		for i, r := range rules {
			if r.Name() != names[i] {
				t.Errorf("expected rule %s at %d, found %s", names[i], i, r.Name())
			}
		}
	}
	//
	if !slices.IsSorted(names) || len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Errorf("rule names not sorted or not unique")
	}
}

func TestCatalog_3(t *testing.T) {
	catalog := checkCatalog(t)
	//
	for alias, name := range map[string]string{
		"OPREP[>=][=]":                      "OPREP_NUM_EQ_GEQ",
		"OPREP[or][and]":                    "OPREP_AND_OR",
		"OPREP[str.contains][str.prefixof]": "OPREP_STR_PREFIX_CONTAINS",
		"OPREP[re.*][re.+]":                 "OPREP_RE_PLUS_STAR",
		"OPREP[re.union][re.inter]":         "OPREP_RE_INTER_UNION",
	} {
		if r, ok := catalog.Lookup(alias); !ok || r.Name() != name {
			t.Errorf("alias %s does not denote %s", alias, name)
		}
	}
	//
	for alias, name := range catalog.Aliases() {
		if rules, err := catalog.Resolve(alias); err != nil || len(rules) != 1 || rules[0].Name() != name {
			t.Errorf("alias %s does not resolve to %s", alias, name)
		}
	}
}

func TestCatalog_4(t *testing.T) {
	catalog := checkCatalog(t)
	//
	if _, ok := catalog.Lookup("NOT_A_RULE"); ok {
		t.Errorf("unknown rule found")
	}
	//
	if _, err := catalog.Resolve("NOT_A_RULE"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected configuration error, found %v", err)
	}
}

// Every group member is a rule
func TestCatalog_5(t *testing.T) {
	catalog := checkCatalog(t)
	//
	for _, group := range catalog.Groups() {
		members, _ := catalog.Group(group)
		//
		for _, name := range members {
			if _, ok := catalog.Lookup(name); !ok {
				t.Errorf("group %s has unknown member %s", group, name)
			}
		}
	}
}

func TestCatalog_6(t *testing.T) {
	reglan, _ := checkCatalog(t).Group(RegLanGroup)
	//
	for _, name := range reglan {
		if name != "REGEXAPP" && !strings.HasPrefix(name, "RE_") && !strings.HasPrefix(name, "OPREP_RE_") {
			t.Errorf("unexpected reglan rule %s", name)
		}
	}
}

func checkCatalog(t *testing.T) *Catalog {
	t.Helper()
	//
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	//
	return catalog
}
