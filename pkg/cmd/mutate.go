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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mutateCmd = &cobra.Command{
	Use:   "mutate [flags] smt2_file",
	Short: "Mutate a given script, printing the result.",
	Long: `Mutate a given script a fixed number of times, printing the result.
	The verdict of the script must be known, since it determines the direction
	in which formulas are rewritten.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			steps           = getUint(cmd, "steps")
			script, globals = readScript(args[0])
			cfg             = ibws.Config{
				Oracle:  getString(cmd, "oracle"),
				RuleSet: getString(cmd, "rules"),
				Seed:    getUint64(cmd, "seed"),
			}
			session         = newSession(script, globals, cfg)
		)
		//
		for i := uint(0); i < steps; i++ {
			_, ok, rule := session.Mutate()
			if !ok {
				log.Warnf("no rule applicable after %d step(s)", i)
				break
			}
			//
			log.Infof("step %d: applied %s", i+1, rule.Unwrap())
		}
		//
		fmt.Print(session.Script().String())
	},
}

func init() {
	mutateCmd.Flags().String("oracle", "sat", "verdict of the script (sat or unsat)")
	mutateCmd.Flags().String("rules", ibws.AllRules, "rule set (all, a group, a rule or an alias)")
	mutateCmd.Flags().UintP("steps", "n", 1, "number of mutations to apply")
	mutateCmd.Flags().Uint64("seed", 0, "seed for randomness")
	rootCmd.AddCommand(mutateCmd)
}
