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
package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/util/termio"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [rule_set]",
	Short: "List the available rewrite rules.",
	Long: `List the available rewrite rules, along with the groups they belong to
	and any aliases they have.  If a rule set is given, only its rules are
	listed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		catalog, err := ibws.DefaultCatalog()
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		selector := ibws.AllRules
		if len(args) == 1 {
			selector = args[0]
		}
		//
		rules, err := catalog.Resolve(selector)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		var (
			groups  = ruleGroups(catalog)
			aliases = ruleAliases(catalog)
			table   = termio.NewTablePrinter(3)
			heading = termio.BoldAnsiEscape()
		)
		//
		table.AddRow("rule", "groups", "aliases")
		//
		for i := range 3 {
			table.SetEscape(uint(i), 0, heading)
			table.AlignLeft(uint(i))
		}
		//
		for _, rule := range rules {
			name := rule.Name()
			table.AddRow(name, strings.Join(groups[name], ","), strings.Join(aliases[name], ","))
		}
		//
		table.AnsiEscapes(term.IsTerminal(int(os.Stdout.Fd())))
		table.Print(os.Stdout)
	},
}

// Determine the groups of each rule, in order.
func ruleGroups(catalog *ibws.Catalog) map[string][]string {
	groups := make(map[string][]string)
	//
	for _, group := range catalog.Groups() {
		members, _ := catalog.Group(group)
		//
		for _, name := range members {
			groups[name] = append(groups[name], group)
		}
	}
	//
	return groups
}

// Determine the aliases of each rule, in order.
func ruleAliases(catalog *ibws.Catalog) map[string][]string {
	aliases := make(map[string][]string)
	//
	for alias, name := range catalog.Aliases() {
		aliases[name] = append(aliases[name], alias)
	}
	//
	for _, list := range aliases {
		slices.Sort(list)
	}
	//
	return aliases
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
