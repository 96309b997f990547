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

package scheduler

import log "github.com/sirupsen/logrus"

// Telemetry is a one-way, best-effort reporting sink for fork/join
// concurrency changes and background-queue pressure. Its absence, or any
// failure within it, must never alter scheduler correctness; the core only
// ever calls it, never waits on it or branches on its return value.
type Telemetry interface {
	// ConcurrencyDelta reports a signed change in active/potential
	// concurrency, fired at the start and end of a parallel
	// SpawnAndWait.
	ConcurrencyDelta(active, potential int)

	// BackgroundQueueDepth reports the current approximate depth of the
	// background queue, fired on every background spawn and on every
	// background consumer entry.
	BackgroundQueueDepth(depth int)
}

// NoopTelemetry discards every event. It is the zero-cost default used
// when a Scheduler is constructed without an explicit sink.
type NoopTelemetry struct{}

// ConcurrencyDelta implements Telemetry.
func (NoopTelemetry) ConcurrencyDelta(active, potential int) {}

// BackgroundQueueDepth implements Telemetry.
func (NoopTelemetry) BackgroundQueueDepth(depth int) {}

// LogrusTelemetry reports every event as a structured logrus entry.
type LogrusTelemetry struct {
	Log *log.Logger
}

// NewLogrusTelemetry returns a LogrusTelemetry using logger, or the
// logrus standard logger when logger is nil.
func NewLogrusTelemetry(logger *log.Logger) *LogrusTelemetry {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogrusTelemetry{Log: logger}
}

// ConcurrencyDelta implements Telemetry.
func (t *LogrusTelemetry) ConcurrencyDelta(active, potential int) {
	t.Log.WithFields(log.Fields{
		"activeDelta":    active,
		"potentialDelta": potential,
	}).Debug("concurrency level changed")
}

// BackgroundQueueDepth implements Telemetry.
func (t *LogrusTelemetry) BackgroundQueueDepth(depth int) {
	t.Log.WithFields(log.Fields{
		"depth": depth,
	}).Debug("background queue depth changed")
}

// MultiTelemetry fans a single event out to several sinks, so that (for
// example) logging and durable event history can be wired independently.
type MultiTelemetry []Telemetry

// ConcurrencyDelta implements Telemetry.
func (m MultiTelemetry) ConcurrencyDelta(active, potential int) {
	for _, t := range m {
		if t != nil {
			t.ConcurrencyDelta(active, potential)
		}
	}
}

// BackgroundQueueDepth implements Telemetry.
func (m MultiTelemetry) BackgroundQueueDepth(depth int) {
	for _, t := range m {
		if t != nil {
			t.BackgroundQueueDepth(depth)
		}
	}
}
