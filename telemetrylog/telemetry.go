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

package telemetrylog

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Sink adapts a Log to the scheduler.Telemetry interface. It is best-effort
// by construction: write failures are logged and otherwise ignored, since
// telemetry must never affect scheduling correctness.
type Sink struct {
	Log *Log
}

// NewSink wraps l as a scheduler.Telemetry implementation.
func NewSink(l *Log) *Sink {
	return &Sink{Log: l}
}

// ConcurrencyDelta implements scheduler.Telemetry.
func (s *Sink) ConcurrencyDelta(active, potential int) {
	s.append(Event{
		Time:           time.Now(),
		Kind:           EventConcurrencyDelta,
		ActiveDelta:    active,
		PotentialDelta: potential,
	})
}

// BackgroundQueueDepth implements scheduler.Telemetry.
func (s *Sink) BackgroundQueueDepth(depth int) {
	s.append(Event{
		Time:            time.Now(),
		Kind:            EventBackgroundDepth,
		BackgroundDepth: depth,
	})
}

func (s *Sink) append(ev Event) {
	if err := s.Log.Append(ev); err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Warning("failed to persist telemetry event")
	}
}
