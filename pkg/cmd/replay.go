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
	"context"
	"fmt"
	"os"

	"github.com/consensys/go-smtfuzz/pkg/config"
	"github.com/consensys/go-smtfuzz/pkg/fuzz"
	"github.com/consensys/go-smtfuzz/pkg/solver"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] rule smt2_file",
	Short: "Find a single rewrite on which a solver gives up.",
	Long: `Apply a rule at each of its candidate sites in turn, and run a solver on
	each result.  This stops at the first candidate on which the solver gives up,
	despite having decided the original script.  Each mutant is derived directly
	from the original script.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		s, err := solver.Parse(getString(cmd, "solver"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		folder, err := os.MkdirTemp("", "smtfuzz-replay-")
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		defer os.RemoveAll(folder) //nolint:errcheck
		//
		script, globals := readScript(args[1])
		//
		replay, err := fuzz.ReplayCandidates(context.Background(), script, globals, s, args[0],
			getDuration(cmd, "timeout"), folder)
		if err != nil {
			os.RemoveAll(folder) //nolint:errcheck
			fmt.Println(err)
			os.Exit(1)
		}
		//
		fmt.Printf("%s decides %s, %d candidate(s)\n", s.Name, replay.Verdict, replay.Candidates)
		//
		if replay.Unknown.IsEmpty() {
			fmt.Println("no candidate gave unknown")
			return
		}
		//
		fmt.Printf("candidate %d gave unknown:\n", replay.Unknown.Unwrap())
		fmt.Print(replay.Mutant.String())
	},
}

func init() {
	replayCmd.Flags().StringP("solver", "s", "z3", "solver command line")
	replayCmd.Flags().Duration("timeout", config.Default().Timeout, "time limit for each solver run")
	rootCmd.AddCommand(replayCmd)
}
