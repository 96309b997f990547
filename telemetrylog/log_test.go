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
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "telemetry.ldb"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAppendAndTailOrder(t *testing.T) {
	l := openTestLog(t)

	for i := 0; i < 5; i++ {
		if err := l.Append(Event{Kind: EventConcurrencyDelta, ActiveDelta: i}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tail, err := l.Tail(3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(tail) != 3 {
		t.Fatalf("expected 3 events, got %d", len(tail))
	}
	if tail[0].ActiveDelta != 2 || tail[1].ActiveDelta != 3 || tail[2].ActiveDelta != 4 {
		t.Fatalf("expected oldest-first order [2 3 4], got %+v", tail)
	}
}

func TestTailOnEmptyLog(t *testing.T) {
	l := openTestLog(t)
	tail, err := l.Tail(10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(tail) != 0 {
		t.Fatalf("expected no events, got %d", len(tail))
	}
}

func TestSinkImplementsTelemetry(t *testing.T) {
	l := openTestLog(t)
	sink := NewSink(l)

	sink.ConcurrencyDelta(2, 2)
	sink.BackgroundQueueDepth(7)

	tail, err := l.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 events, got %d", len(tail))
	}
	if tail[0].Kind != EventConcurrencyDelta || tail[0].ActiveDelta != 2 {
		t.Fatalf("expected first event to be a concurrency delta, got %+v", tail[0])
	}
	if tail[1].Kind != EventBackgroundDepth || tail[1].BackgroundDepth != 7 {
		t.Fatalf("expected second event to be a background depth sample, got %+v", tail[1])
	}
}
