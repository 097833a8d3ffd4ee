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
	"os/signal"
	"syscall"

	"github.com/consensys/go-smtfuzz/pkg/config"
	"github.com/consensys/go-smtfuzz/pkg/fuzz"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var fuzzCmd = &cobra.Command{
	Use:   "fuzz [flags] seed_file_or_dir ...",
	Short: "Fuzz one or more solvers using a set of seed formulas.",
	Long: `Fuzz one or more solvers using a set of seed formulas.
	Directories are searched recursively for *.smt2 files.  Settings are read
	from a YAML configuration file (if given), and then overridden by any flags.
	Bugs found are written into the bugs folder.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg := fuzzConfig(cmd)
		//
		if getFlag(cmd, "print-config") {
			bytes, err := cfg.Encode()
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			//
			fmt.Print(string(bytes))
			//
			return
		}
		//
		fuzzer, err := fuzz.New(cfg)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		// Stop gracefully on interrupt
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		//
		log.Infof("fuzzer %s started", fuzzer.Name())
		//
		if err := fuzzer.Run(ctx, args); err != nil && !fuzz.IsCancelled(err) {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		table := fuzzer.Stats().Table()
		table.AnsiEscapes(term.IsTerminal(int(os.Stdout.Fd())))
		table.Print(os.Stdout)
		//
		for _, bug := range fuzzer.Bugs() {
			fmt.Printf("bug: %s\n", bug)
		}
	},
}

// Construct the fuzzing configuration from the configuration file (if any)
// and the flags given.
func fuzzConfig(cmd *cobra.Command) config.Config {
	var (
		cfg   = config.Default()
		err   error
		flags = cmd.Flags()
	)
	//
	if file := getString(cmd, "config"); file != "" {
		if cfg, err = config.Load(file); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	//
	if flags.Changed("solver") {
		cfg.Solvers = getStringArray(cmd, "solver")
	}
	//
	if flags.Changed("baseline") {
		cfg.Baseline = getString(cmd, "baseline")
	}
	//
	if flags.Changed("oracle") {
		cfg.Oracle = getString(cmd, "oracle")
	}
	//
	if flags.Changed("rules") {
		cfg.RuleSet = getString(cmd, "rules")
	}
	//
	if flags.Changed("iterations") {
		cfg.Iterations = getUint(cmd, "iterations")
	}
	//
	if flags.Changed("walk-length") {
		cfg.WalkLength = getUint(cmd, "walk-length")
	}
	//
	if flags.Changed("timeout") {
		cfg.Timeout = getDuration(cmd, "timeout")
	}
	//
	if flags.Changed("scratch") {
		cfg.ScratchFolder = getString(cmd, "scratch")
	}
	//
	if flags.Changed("bugs") {
		cfg.BugsFolder = getString(cmd, "bugs")
	}
	//
	if flags.Changed("seed") {
		cfg.Seed = getUint64(cmd, "seed")
	}
	//
	if flags.Changed("metrics") {
		cfg.MetricsAddr = getString(cmd, "metrics")
	}
	//
	return cfg
}

func init() {
	defaults := config.Default()
	//
	fuzzCmd.Flags().StringP("config", "c", "", "YAML configuration file")
	fuzzCmd.Flags().Bool("print-config", false, "print the configuration and exit")
	fuzzCmd.Flags().StringArrayP("solver", "s", nil, "solver command line, such as \"z3 -smt2\" (repeatable)")
	fuzzCmd.Flags().String("baseline", "", "baseline solver command line, for regression incompleteness")
	fuzzCmd.Flags().String("oracle", defaults.Oracle, "verdict of every seed (sat, unsat or unknown)")
	fuzzCmd.Flags().String("rules", defaults.RuleSet, "rule set (all, a group, a rule or an alias)")
	fuzzCmd.Flags().Uint("iterations", defaults.Iterations, "number of mutants per seed")
	fuzzCmd.Flags().Uint("walk-length", defaults.WalkLength, "number of mutations before restarting from the seed")
	fuzzCmd.Flags().Duration("timeout", defaults.Timeout, "time limit for each solver run")
	fuzzCmd.Flags().String("scratch", defaults.ScratchFolder, "folder for mutants being solved")
	fuzzCmd.Flags().String("bugs", defaults.BugsFolder, "folder into which bugs are written")
	fuzzCmd.Flags().Uint64("seed", defaults.Seed, "seed for randomness (0 picks one at random)")
	fuzzCmd.Flags().String("metrics", "", "address on which to serve metrics, such as \":9090\"")
	rootCmd.AddCommand(fuzzCmd)
}
