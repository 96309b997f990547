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

// Package schedclient is a thin JSON-over-Unix-socket client for the
// statusapi HTTP surface, used by jobsctl. The wire types follow a common
// base-Response envelope convention so every reply can be checked for an
// error generically.
package schedclient

import "time"

// Response is the base portion of every multijobd response, carrying any
// error information.
type Response struct {
	Error       bool   `json:"error"`
	ErrorString string `json:"errorString,omitempty"`
}

// Status is the response body of GET /api/v1/status.
type Status struct {
	Response
	Uptime                     string `json:"uptime"`
	PendingJobs                int    `json:"pendingJobs"`
	PendingBackgroundJobs      int    `json:"pendingBackgroundJobs"`
	RunningBackgroundConsumers int    `json:"runningBackgroundConsumers"`
}

// TelemetryEvent is one entry of GET /api/v1/telemetry/recent.
type TelemetryEvent struct {
	Time            time.Time `json:"time"`
	ActiveDelta     int       `json:"activeDelta,omitempty"`
	PotentialDelta  int       `json:"potentialDelta,omitempty"`
	BackgroundDepth int       `json:"backgroundDepth,omitempty"`
}

// TelemetryListing is the response body of GET /api/v1/telemetry/recent.
type TelemetryListing struct {
	Response
	Events []TelemetryEvent `json:"events,omitempty"`
}
