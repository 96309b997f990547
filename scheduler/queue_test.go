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

import "testing"

func TestPopEmpty(t *testing.T) {
	q := NewJobQueue()
	_, ok := q.Pop()
	if ok {
		t.Errorf("Pop on an empty queue should report false")
	}
}

func TestPushPop(t *testing.T) {
	q := NewJobQueue()
	j1 := NewJob(1, func() bool { return false })
	q.Push(j1)
	j2, ok := q.Pop()
	if !ok {
		t.Fatalf("expected a job, found none")
	}
	if j2 != j1 {
		t.Errorf("Pop returned a different job than was pushed")
	}
}

func TestFIFOOrder(t *testing.T) {
	q := NewJobQueue()
	j1 := NewJob(1, func() bool { return false })
	j2 := NewJob(1, func() bool { return false })
	q.Push(j1)
	q.Push(j2)

	out1, ok := q.Pop()
	if !ok || out1 != j1 {
		t.Errorf("expected j1 first, single-consumer FIFO order violated")
	}
	out2, ok := q.Pop()
	if !ok || out2 != j2 {
		t.Errorf("expected j2 second, single-consumer FIFO order violated")
	}
}

func TestApproxSizeNeverNegative(t *testing.T) {
	q := NewJobQueue()
	if q.ApproxSize() != 0 {
		t.Errorf("expected 0 size on an empty queue")
	}
	q.Pop()
	if q.ApproxSize() < 0 {
		t.Errorf("size must never go negative")
	}
}

func TestApproxSizeDecreasesOnPop(t *testing.T) {
	q := NewJobQueue()
	q.Push(NewJob(1, func() bool { return false }))
	q.Push(NewJob(1, func() bool { return false }))
	before := q.ApproxSize()
	q.Pop()
	after := q.ApproxSize()
	if before-after != 1 {
		t.Errorf("expected size to drop by exactly one, before=%d after=%d", before, after)
	}
}

func TestPopChunkBounded(t *testing.T) {
	q := NewJobQueue()
	for i := 0; i < 10; i++ {
		q.Push(NewJob(1, func() bool { return false }))
	}
	chunk := q.PopChunk(4)
	if len(chunk) != 4 {
		t.Fatalf("expected a chunk of 4, got %d", len(chunk))
	}
	if q.ApproxSize() != 6 {
		t.Errorf("expected 6 remaining, got %d", q.ApproxSize())
	}
}

func TestQueueMapStableAcrossCalls(t *testing.T) {
	m := NewQueueMap()
	q1 := m.QueueFor(7)
	q2 := m.QueueFor(7)
	if q1 != q2 {
		t.Errorf("concurrent callers for the same class must alias the same queue")
	}
}

func TestQueueMapPendingTotal(t *testing.T) {
	m := NewQueueMap()
	m.Push(1, NewJob(1, func() bool { return false }))
	m.Push(2, NewJob(2, func() bool { return false }))
	m.Push(2, NewJob(2, func() bool { return false }))
	if got := m.PendingTotal(); got != 3 {
		t.Errorf("expected pending total 3, got %d", got)
	}
}
