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
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// MetricsServer exposes the statistics of a fuzzer over HTTP, at "/metrics".
type MetricsServer struct {
	server   *http.Server
	listener net.Listener
}

// ServeMetrics starts serving a given set of statistics on a given address,
// such as ":9090".
func ServeMetrics(addr string, stats *Stats) (*MetricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	//
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(stats.Registry(), promhttp.HandlerOpts{}))
	//
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	//
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	//
	log.Infof("serving metrics on http://%s/metrics", listener.Addr())
	//
	return &MetricsServer{server, listener}, nil
}

// Addr returns the address being served.
func (p *MetricsServer) Addr() string {
	return p.listener.Addr().String()
}

// Shutdown stops serving, waiting briefly for active requests to finish.
func (p *MetricsServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	//
	return p.server.Shutdown(ctx)
}
