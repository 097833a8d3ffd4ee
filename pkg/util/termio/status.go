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
package termio

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// StatusBar repeatedly overwrites a single line of a terminal with a status
// message, at most once per interval.  Nothing is printed when the output is
// not a terminal.
type StatusBar struct {
	out      io.Writer
	enabled  bool
	width    int
	interval time.Duration
	last     time.Time
}

// NewStatusBar constructs a status bar on standard output.
func NewStatusBar(interval time.Duration) *StatusBar {
	var (
		fd      = int(os.Stdout.Fd())
		enabled = term.IsTerminal(fd)
		width   = 80
	)
	//
	if w, _, err := term.GetSize(fd); enabled && err == nil && w > 0 {
		width = w
	}
	//
	return &StatusBar{os.Stdout, enabled, width, interval, time.Time{}}
}

// NewStatusBarOn constructs an enabled status bar on a given writer.
func NewStatusBarOn(out io.Writer, width int, interval time.Duration) *StatusBar {
	return &StatusBar{out, true, width, interval, time.Time{}}
}

// Enabled checks whether this status bar prints anything.
func (p *StatusBar) Enabled() bool {
	return p.enabled
}

// Update the status line, unless it was updated too recently.  The message is
// computed lazily.
func (p *StatusBar) Update(message func() string) {
	if !p.enabled || time.Since(p.last) < p.interval {
		return
	}
	//
	p.last = time.Now()
	p.print(message())
}

// Finish prints a final status, followed by a newline.
func (p *StatusBar) Finish(message string) {
	if p.enabled {
		p.print(message)
		fmt.Fprintln(p.out)
	}
}

func (p *StatusBar) print(message string) {
	runes := []rune(message)
	//
	if len(runes) >= p.width {
		runes = runes[:p.width-1]
	}
	//
	fmt.Fprintf(p.out, "\r%s%s", string(runes), strings.Repeat(" ", p.width-1-len(runes)))
}
