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

package statusapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/solus-project/multijobd/schedclient"
)

// getMethodCaller returns the name of the calling handler, used to
// annotate error logs.
func getMethodCaller() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	if details := runtime.FuncForPC(pc); details != nil {
		return details.Name()
	}
	return ""
}

func (s *Server) sendStockError(err error, w http.ResponseWriter, r *http.Request) {
	response := schedclient.Response{
		Error:       true,
		ErrorString: err.Error(),
	}
	log.WithFields(log.Fields{
		"error":  err,
		"method": getMethodCaller(),
	}).Error("client communication error")
	buf := bytes.Buffer{}
	if e2 := json.NewEncoder(&buf).Encode(&response); e2 != nil {
		http.Error(w, e2.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	w.Write(buf.Bytes())
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(buf.Bytes())
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := schedclient.Status{
		Uptime:                     time.Since(s.timeStarted).String(),
		PendingJobs:                s.sched.PendingJobs(),
		PendingBackgroundJobs:      s.sched.PendingBackgroundJobs(),
		RunningBackgroundConsumers: s.sched.RunningBackgroundConsumers(),
	}
	s.writeJSON(w, &status)
}

func (s *Server) getRecentTelemetry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.telemetry == nil {
		s.writeJSON(w, &schedclient.TelemetryListing{})
		return
	}
	events, err := s.telemetry.Tail(50)
	if err != nil {
		s.sendStockError(err, w, r)
		return
	}
	listing := schedclient.TelemetryListing{}
	for _, ev := range events {
		listing.Events = append(listing.Events, schedclient.TelemetryEvent{
			Time:            ev.Time,
			ActiveDelta:     ev.ActiveDelta,
			PotentialDelta:  ev.PotentialDelta,
			BackgroundDepth: ev.BackgroundDepth,
		})
	}
	s.writeJSON(w, &listing)
}

func (s *Server) setBackgroundLimit(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := strconv.Atoi(p.ByName("n"))
	if err != nil {
		s.sendStockError(err, w, r)
		return
	}
	log.WithFields(log.Fields{
		"limit": n,
	}).Info("background consumer limit change requested")
	s.sched.SetMaxConcurrentBackgroundConsumers(n)
	s.writeJSON(w, &schedclient.Response{})
}

func (s *Server) terminateBackground(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log.Info("background consumer termination requested")
	s.sched.TerminateBackgroundConsumers()
	s.writeJSON(w, &schedclient.Response{})
}

func (s *Server) processClass(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	class, err := strconv.Atoi(p.ByName("class"))
	if err != nil {
		s.sendStockError(err, w, r)
		return
	}
	s.sched.ProcessJobs(class, -1)
	s.writeJSON(w, &schedclient.Response{})
}
