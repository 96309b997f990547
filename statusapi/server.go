//
// Copyright © 2017 Solus Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package statusapi exposes the scheduler over HTTP: a status snapshot,
// recent telemetry, and control endpoints for the background consumer
// budget. It is additive to the core scheduler contract and never changes
// scheduling semantics.
package statusapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/solus-project/multijobd/scheduler"
	"github.com/solus-project/multijobd/telemetrylog"
)

// Server wraps a scheduler.Scheduler with an httprouter-routed HTTP API.
type Server struct {
	srv    *http.Server
	router *httprouter.Router

	sched       *scheduler.Scheduler
	telemetry   *telemetrylog.Log
	timeStarted time.Time
}

// New constructs an unbound Server. telemetry may be nil, in which case
// the recent-telemetry endpoint reports an empty history.
func New(sched *scheduler.Scheduler, telemetry *telemetrylog.Log) *Server {
	router := httprouter.New()
	s := &Server{
		srv:         &http.Server{Handler: router},
		router:      router,
		sched:       sched,
		telemetry:   telemetry,
		timeStarted: time.Now().UTC(),
	}

	router.GET("/api/v1/status", s.getStatus)
	router.GET("/api/v1/telemetry/recent", s.getRecentTelemetry)
	router.POST("/api/v1/background/limit/:n", s.setBackgroundLimit)
	router.POST("/api/v1/background/terminate", s.terminateBackground)
	router.POST("/api/v1/process/:class", s.processClass)

	return s
}

// Serve blocks, accepting connections on listener until the server is shut
// down.
func (s *Server) Serve(listener net.Listener) error {
	if e := s.srv.Serve(listener); e != http.ErrServerClosed {
		return e
	}
	return nil
}

// Close shuts down the HTTP server.
func (s *Server) Close() error {
	return s.srv.Shutdown(context.Background())
}
