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
	"fmt"
	"strings"
	"time"

	"github.com/consensys/go-smtfuzz/pkg/util/termio"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Event is something counted during a fuzzing campaign.
type Event string

// Events counted by a fuzzer, in the order they are summarised.
const (
	SEEDS         Event = "seeds"
	INVALID_SEEDS Event = "invalid_seeds"
	MUTANTS       Event = "mutants"
	INVALID       Event = "invalid_mutants"
	TIMEOUTS      Event = "timeouts"
	DUPLICATES    Event = "duplicates"
	CRASHES       Event = "crashes"
	SEGFAULTS     Event = "segfaults"
	SOUNDNESS     Event = "soundness"
	REGRESSIONS   Event = "regression_incompleteness"
	IMPLICATIONS  Event = "implication_incompleteness"
)

const metricsPrefix = "smtfuzz"

var events = []Event{
	SEEDS, INVALID_SEEDS, MUTANTS, INVALID, TIMEOUTS, DUPLICATES, CRASHES, SEGFAULTS, SOUNDNESS, REGRESSIONS,
	IMPLICATIONS,
}

// Stats holds the counters of a fuzzing campaign.  These are registered on a
// private registry, which can be served over HTTP.
type Stats struct {
	registry *prometheus.Registry
	counts   *prometheus.CounterVec
	solving  *prometheus.HistogramVec
}

// NewStats constructs the statistics for a fuzzer instance with a given name.
func NewStats(instance string) *Stats {
	var (
		registry = prometheus.NewRegistry()
		labels   = prometheus.Labels{"instance": instance}
	)
	//
	counts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   metricsPrefix,
		Name:        "events_total",
		Help:        "Number of seeds, mutants and bugs encountered.",
		ConstLabels: labels,
	}, []string{"event"})
	//
	solving := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   metricsPrefix,
		Name:        "solver_seconds",
		Help:        "Time taken by each solver on a mutant.",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"solver"})
	//
	registry.MustRegister(counts, solving)
	// Initialise every counter, so they are all exported from the outset.
	for _, e := range events {
		counts.WithLabelValues(string(e))
	}
	//
	return &Stats{registry, counts, solving}
}

// Registry returns the registry holding these statistics.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Inc increments the count of a given event.
func (s *Stats) Inc(e Event) {
	s.counts.WithLabelValues(string(e)).Inc()
}

// Observe records the time taken by a given solver on a single run.
func (s *Stats) Observe(solver string, elapsed time.Duration) {
	s.solving.WithLabelValues(solver).Observe(elapsed.Seconds())
}

// Count returns the number of times a given event has occurred.
func (s *Stats) Count(e Event) uint64 {
	var metric dto.Metric
	//
	if err := s.counts.WithLabelValues(string(e)).Write(&metric); err != nil {
		return 0
	}
	//
	return uint64(metric.GetCounter().GetValue())
}

// Bugs returns the total number of bugs found.
func (s *Stats) Bugs() uint64 {
	return s.Count(CRASHES) + s.Count(SEGFAULTS) + s.Count(SOUNDNESS) + s.Count(REGRESSIONS) +
		s.Count(IMPLICATIONS)
}

// Summary returns a one line summary, as shown in the status bar.
func (s *Stats) Summary(elapsed time.Duration) string {
	var (
		mutants = s.Count(MUTANTS)
		rate    float64
	)
	//
	if elapsed > 0 {
		rate = float64(mutants) / elapsed.Seconds()
	}
	//
	return fmt.Sprintf("[%s] seeds: %d, mutants: %d (%.1f/s), invalid: %d, timeouts: %d, bugs: %d",
		elapsed.Truncate(time.Second), s.Count(SEEDS), mutants, rate, s.Count(INVALID), s.Count(TIMEOUTS), s.Bugs())
}

// Table lays out every count, one per row.
func (s *Stats) Table() *termio.TablePrinter {
	table := termio.NewTablePrinter(2)
	table.AlignLeft(0)
	//
	for i, e := range events {
		count := s.Count(e)
		table.AddRow(strings.ReplaceAll(string(e), "_", " "), fmt.Sprintf("%d", count))
		//
		if i >= len(events)-5 && count > 0 {
			table.SetEscape(1, uint(i), termio.BoldAnsiEscape().FgColour(termio.TERM_RED))
		}
	}
	//
	return table
}
