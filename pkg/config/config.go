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
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"gopkg.in/yaml.v3"
)

// UnknownOracle indicates the verdict of each seed should be inferred, either
// from its path or by running the solvers on it.
const UnknownOracle = "unknown"

// Config holds every setting of a fuzzing campaign.  A configuration file
// provides some or all of these fields, with the rest taken from Default().
type Config struct {
	// Command lines of the solvers under test
	Solvers []string `yaml:"solvers"`
	// Command line of a solver against which completeness regressions are
	// detected (optional)
	Baseline string `yaml:"baseline"`
	// Verdict preserved by mutation: sat, unsat or unknown
	Oracle string `yaml:"oracle"`
	// Rule set selector, such as "all" or "OPREP[>=][=]"
	RuleSet string `yaml:"rule_set"`
	// Mutants generated per seed
	Iterations uint `yaml:"iterations"`
	// Mutants generated before restarting from the seed
	WalkLength uint `yaml:"walk_length"`
	// Time limit for each solver run
	Timeout time.Duration `yaml:"timeout"`
	// Folder to which mutants are written for solving
	ScratchFolder string `yaml:"scratch_folder"`
	// Folder to which bugs are reported
	BugsFolder string `yaml:"bugs_folder"`
	// Seeds larger than this (in bytes) are skipped
	FileSizeLimit int64 `yaml:"file_size_limit"`
	// Seed for all random choices (0 picks one from the clock)
	Seed uint64 `yaml:"seed"`
	// Patterns in solver output indicating a crash
	CrashList []string `yaml:"crash_list"`
	// Patterns in solver output indicating an already known crash
	DuplicateList []string `yaml:"duplicate_list"`
	// Patterns in solver output indicating an invalid mutant
	IgnoreList []string `yaml:"ignore_list"`
	// Address on which to serve metrics, such as ":9090" (optional)
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the default configuration, which has no solvers.
func Default() Config {
	return Config{
		Oracle:        UnknownOracle,
		RuleSet:       ibws.AllRules,
		Iterations:    300,
		WalkLength:    20,
		Timeout:       8 * time.Second,
		ScratchFolder: "scratch",
		BugsFolder:    "bugs",
		FileSizeLimit: 100000,
		CrashList: []string{
			"Exception", "lang.AssertionError", "lang.Error", "runtime error", "LEAKED", "Leaked",
			"Segmentation fault", "segmentation fault", "SEGFAULT", "ASSERTION VIOLATION",
			"Assertion failed", "Fatal failure within", "Unreachable code",
		},
		IgnoreList: []string{
			`\(error `, "unsupported", "not supported", "unknown constant", "out of memory",
			"Cannot get model", "model is not available",
		},
	}
}

// Load reads a configuration file, filling in defaults for any fields it does
// not mention.  Unknown fields are rejected.
func Load(filename string) (Config, error) {
	config := Default()
	//
	text, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	//
	if err := config.Decode(text); err != nil {
		return config, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return config, nil
}

// Decode YAML text over this configuration.
func (c *Config) Decode(text []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(text))
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	//
	return nil
}

// Encode this configuration as YAML text.
func (c *Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks this configuration is usable, returning a configuration
// error otherwise.
func (c *Config) Validate() error {
	if len(c.Solvers) == 0 {
		return fmt.Errorf("%w: no solvers given", ibws.ErrConfig)
	} else if c.WalkLength == 0 {
		return fmt.Errorf("%w: walk length must be positive", ibws.ErrConfig)
	} else if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ibws.ErrConfig)
	} else if c.Oracle != UnknownOracle {
		if _, err := ibws.ParseOracle(c.Oracle); err != nil {
			return err
		}
	}
	//
	catalog, err := ibws.DefaultCatalog()
	if err != nil {
		return err
	} else if _, err := catalog.Resolve(c.RuleSet); err != nil {
		return err
	}
	//
	_, err = c.Patterns()
	//
	return err
}

// Patterns holds the compiled output patterns of a configuration.
type Patterns struct {
	Crash     []*regexp.Regexp
	Duplicate []*regexp.Regexp
	Ignore    []*regexp.Regexp
}

// Patterns compiles the crash, duplicate and ignore lists, whose entries are
// regular expressions.
func (c *Config) Patterns() (Patterns, error) {
	var (
		p   Patterns
		err error
	)
	//
	if p.Crash, err = compile("crash", c.CrashList); err != nil {
		return p, err
	} else if p.Duplicate, err = compile("duplicate", c.DuplicateList); err != nil {
		return p, err
	}
	//
	p.Ignore, err = compile("ignore", c.IgnoreList)
	//
	return p, err
}

func compile(list string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	//
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s list: %s", ibws.ErrConfig, list, err)
		}
		//
		compiled[i] = re
	}
	//
	return compiled, nil
}

// Matches checks whether any of a set of patterns occurs in either of the
// given outputs.
func Matches(patterns []*regexp.Regexp, stdout string, stderr string) bool {
	for _, re := range patterns {
		if re.MatchString(stdout) || re.MatchString(stderr) {
			return true
		}
	}
	//
	return false
}
