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

	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/util/termio"
	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates [flags] rule smt2_file",
	Short: "List the sites at which a rule can be applied.",
	Long: `List the sites at which a rule can be applied, for each assertion of a
	script in turn.  The parity of a site determines whether it is weakened or
	strengthened.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			script, globals = readScript(args[1])
			cfg             = ibws.Config{Oracle: getString(cmd, "oracle"), RuleSet: ibws.AllRules}
			session         = newSession(script, globals, cfg)
			table           = termio.NewTablePrinter(4)
			arena           = script.Arena
		)
		//
		rule, err := session.Rule(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		table.AddRow("assert", "site", "direction", "term")
		//
		for i, formula := range ibws.Formulas(script) {
			for j, c := range session.Candidates(formula, rule, ibws.POSITIVE) {
				direction := session.Oracle().Direction(c.Parity)
				table.AddRow(fmt.Sprintf("%d", i), fmt.Sprintf("%d", j), direction.String(), arena.String(c.Term))
			}
		}
		//
		table.AlignLeft(2)
		table.AlignLeft(3)
		table.SetMaxWidth(3, getUint(cmd, "width"))
		table.Print(os.Stdout)
		//
		fmt.Printf("%d candidate(s) for %s\n", table.Height()-1, rule.Name())
	},
}

func init() {
	candidatesCmd.Flags().String("oracle", "sat", "verdict of the script (sat or unsat)")
	candidatesCmd.Flags().Uint("width", 80, "maximum width of terms printed")
	rootCmd.AddCommand(candidatesCmd)
}
