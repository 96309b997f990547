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

// Package telemetrylog is an append-only history of scheduler concurrency
// events, backed by LevelDB. It exists purely for post-mortem inspection
// and the status API's recent-activity view; nothing in the scheduler core
// reads it back.
package telemetrylog

import "time"

// EventKind classifies a recorded Event.
type EventKind uint8

const (
	// EventConcurrencyDelta records a SpawnAndWait fork or join.
	EventConcurrencyDelta EventKind = iota
	// EventBackgroundDepth records a background queue depth sample.
	EventBackgroundDepth
)

// Event is a single durable telemetry record.
type Event struct {
	Time            time.Time
	Kind            EventKind
	ActiveDelta     int
	PotentialDelta  int
	BackgroundDepth int
}
