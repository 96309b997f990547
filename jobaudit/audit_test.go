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

package jobaudit

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	for i := 0; i < 3; i++ {
		err := l.Record(Entry{
			FinishedAt: time.Now(),
			ClassID:    i,
			Kind:       "Background",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].ClassID != 2 || recent[1].ClassID != 1 {
		t.Fatalf("expected most-recent-first order, got %+v", recent)
	}
}

func TestRecentOnEmptyLog(t *testing.T) {
	l := openTestLog(t)
	recent, err := l.Recent(5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected no entries, got %d", len(recent))
	}
}

func TestCountByClass(t *testing.T) {
	l := openTestLog(t)

	classes := []int{1, 1, 2, 3, 3, 3}
	for _, c := range classes {
		if err := l.Record(Entry{FinishedAt: time.Now(), ClassID: c}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	counts, err := l.CountByClass()
	if err != nil {
		t.Fatalf("CountByClass: %v", err)
	}
	if counts[1] != 2 || counts[2] != 1 || counts[3] != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestRecordPreservesPanicMessage(t *testing.T) {
	l := openTestLog(t)
	if err := l.Record(Entry{
		FinishedAt:   time.Now(),
		ClassID:      9,
		Kind:         "Background",
		PanicMessage: "boom",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err := l.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].PanicMessage != "boom" {
		t.Fatalf("expected panic message preserved, got %+v", recent)
	}
}
