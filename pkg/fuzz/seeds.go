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
package fuzz

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/consensys/go-smtfuzz/pkg/ibws"
	"github.com/consensys/go-smtfuzz/pkg/util"
)

// SeedExtension is the extension of seed files found within directories.
const SeedExtension = ".smt2"

// CollectSeeds expands a list of files and directories into the list of seed
// files they contain.  Directories are searched recursively for files with the
// seed extension, whilst files given explicitly are always included.  The
// result is sorted and free of duplicates.
func CollectSeeds(paths []string) ([]string, error) {
	var seeds []string
	//
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		} else if !info.IsDir() {
			seeds = append(seeds, filepath.Clean(path))
			continue
		}
		//
		err = filepath.WalkDir(path, func(file string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			} else if !entry.IsDir() && strings.HasSuffix(file, SeedExtension) {
				seeds = append(seeds, file)
			}
			//
			return nil
		})
		//
		if err != nil {
			return nil, err
		}
	}
	//
	slices.Sort(seeds)
	//
	return slices.Compact(seeds), nil
}

// Stem returns the name of a seed file without its directory or extension.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OracleFromPath determines the verdict of a seed from its location, as
// benchmark collections typically separate satisfiable and unsatisfiable
// instances by directory (e.g. "benchmarks/sat/x.smt2").  The innermost
// matching directory wins.
func OracleFromPath(path string) util.Option[ibws.Oracle] {
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	//
	for i := len(dirs) - 1; i >= 0; i-- {
		if oracle, err := ibws.ParseOracle(dirs[i]); err == nil {
			return util.Some(oracle)
		}
	}
	//
	return util.None[ibws.Oracle]()
}
