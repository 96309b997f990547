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

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Scenario 1: serial sequencing.
func TestSpawnAndWaitSerialSequencing(t *testing.T) {
	s := New()
	var out []int
	var mu sync.Mutex

	f := func() bool {
		mu.Lock()
		out = append(out, 1)
		mu.Unlock()
		return false
	}
	g := func() bool {
		mu.Lock()
		out = append(out, 2)
		mu.Unlock()
		return false
	}

	s.SpawnAndWait(false, JobSpecFor(0, f), JobSpecFor(0, g))

	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Fatalf("expected [1 2] in argument order, got %v", out)
	}
}

// Scenario 2: fork-join reduction. Each callable increments a shared atomic
// a bounded number of times, reduced here to keep the unit test fast
// without weakening the property being checked (exact completion, no lost
// or double updates).
func TestSpawnAndWaitForkJoinReduction(t *testing.T) {
	s := New()
	var counter int64
	const perJob = 100000

	makeIncrementer := func() RunFunc {
		remaining := perJob
		return func() bool {
			atomic.AddInt64(&counter, 1)
			remaining--
			return remaining > 0
		}
	}

	s.SpawnAndWait(true,
		JobSpecFor(1, makeIncrementer()),
		JobSpecFor(2, makeIncrementer()),
	)

	if got := atomic.LoadInt64(&counter); got != 2*perJob {
		t.Fatalf("expected exactly %d increments, got %d", 2*perJob, got)
	}
}

// Scenario 3: cross-class dependency. Job A in class 1 writes into a
// channel; job B in class 2 reads from it. Spawned together, completion
// must not deadlock. The consumer never blocks on the channel: like any
// other job it checks readiness and asks to be rescheduled if its
// dependency isn't there yet, since a sub-job runs inline on the single
// waiting goroutine and a blocking read would stall the producer
// alongside it regardless of which class is drained first.
func TestSpawnAndWaitCrossClassDependency(t *testing.T) {
	s := New()
	ch := make(chan int, 1)

	producer := func() bool {
		ch <- 42
		return false
	}
	var received int
	consumer := func() bool {
		select {
		case v := <-ch:
			received = v
			return false
		default:
			return true
		}
	}

	done := make(chan struct{})
	go func() {
		s.SpawnAndWait(true, JobSpecFor(1, producer), JobSpecFor(2, consumer))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("spawn-and-wait deadlocked on a cross-class dependency")
	}

	if received != 42 {
		t.Fatalf("expected consumer to observe 42, got %d", received)
	}
}

// Scenario 4: background throttle. With a budget of 2, ten background jobs
// sleeping briefly must never show more than budget+1 concurrent
// consumers, and all must complete.
func TestBackgroundThrottleBound(t *testing.T) {
	s := New(WithMaxConcurrentBackgroundConsumers(2))

	var completed int32
	var maxObserved int32
	var mu sync.Mutex

	for i := 0; i < 10; i++ {
		s.Spawn(NewBackgroundJob(KindBackground, func() bool {
			mu.Lock()
			if cur := int32(s.RunningBackgroundConsumers()); cur > maxObserved {
				maxObserved = cur
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return false
		}))
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&completed) < 10 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&completed); got != 10 {
		t.Fatalf("expected all 10 background jobs to complete, got %d", got)
	}
	if maxObserved > 3 {
		t.Fatalf("observed %d concurrent background consumers, budget was 2", maxObserved)
	}
}

// At the tier-0 budget, long-running background jobs each get a dedicated
// consumer only if none is already live: at most one consumer may ever be
// running at this tier, even when several long-running jobs are spawned at
// once, and every one of them must still complete off the single shared
// consumer.
func TestLongRunningBackgroundBoundAtTierZero(t *testing.T) {
	s := New(WithMaxConcurrentBackgroundConsumers(0))

	const jobs = 5
	var completed int32
	var maxObserved int32
	var mu sync.Mutex

	for i := 0; i < jobs; i++ {
		s.Spawn(NewBackgroundJob(KindLongRunningBackground, func() bool {
			mu.Lock()
			if cur := int32(s.RunningBackgroundConsumers()); cur > maxObserved {
				maxObserved = cur
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return false
		}))
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&completed) < jobs && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&completed); got != jobs {
		t.Fatalf("expected all %d long-running jobs to complete, got %d", jobs, got)
	}
	if maxObserved > 1 {
		t.Fatalf("observed %d concurrent background consumers at tier 0, budget allows at most 1", maxObserved)
	}
}

// Scenario 5: a persistent background job counts invocations and stops
// itself after five.
func TestPersistentBackgroundJob(t *testing.T) {
	s := New(WithMaxConcurrentBackgroundConsumers(1))

	var invocations int32
	done := make(chan struct{})

	s.Spawn(NewBackgroundJob(KindPersistentBackground, func() bool {
		n := atomic.AddInt32(&invocations, 1)
		if n >= 5 {
			close(done)
			return false
		}
		return true
	}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("persistent background job never reached its fifth invocation")
	}

	// Give the consumer a moment to observe the final false return and
	// retire the job before asserting the exact count.
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&invocations); got != 5 {
		t.Fatalf("expected exactly 5 invocations, got %d", got)
	}
}

// Scenario 6: ProcessImmediately mode never enqueues and always runs
// inline on the spawning thread.
func TestProcessImmediatelyNeverEnqueues(t *testing.T) {
	s := New(WithMaxConcurrentBackgroundConsumers(ProcessImmediately))

	var ran int

	for i := 0; i < 100; i++ {
		executed := false
		s.Spawn(NewBackgroundJob(KindBackground, func() bool {
			executed = true
			return false
		}))
		if !executed {
			t.Fatalf("job %d did not run synchronously under ProcessImmediately", i)
		}
		ran++
		if s.PendingBackgroundJobs() != 0 {
			t.Fatalf("background queue must stay empty under ProcessImmediately, got %d", s.PendingBackgroundJobs())
		}
	}

	if ran != 100 {
		t.Fatalf("expected 100 synchronous runs, got %d", ran)
	}
}

// No loss: K spawns into the same class must eventually all observe
// their final (false) run.
func TestNoLossUnderRepeatedSpawn(t *testing.T) {
	s := New()
	const k = 500
	var finished int32

	for i := 0; i < k; i++ {
		s.Spawn(NewJob(3, func() bool {
			atomic.AddInt32(&finished, 1)
			return false
		}))
	}

	for s.ProcessJobs(3, -1) {
	}

	if got := atomic.LoadInt32(&finished); got != k {
		t.Fatalf("expected all %d jobs to finish exactly once, got %d", k, got)
	}
}

// A job that reschedules is re-appended to the same queue it came
// from, and eventually reaches its final run.
func TestRescheduleReturnsToSameQueue(t *testing.T) {
	s := New()
	remaining := 3
	var finalClass = -1

	s.Spawn(NewJob(9, func() bool {
		remaining--
		if remaining <= 0 {
			finalClass = 9
			return false
		}
		return true
	}))

	for s.ProcessJobs(9, -1) {
	}

	if finalClass != 9 {
		t.Fatalf("expected the rescheduled job to finish against class 9")
	}
	if s.PendingJobs() != 0 {
		t.Fatalf("expected no pending jobs once drained, got %d", s.PendingJobs())
	}
}

func TestSpawnAndWaitRejectsOutOfRangeCounts(t *testing.T) {
	s := New()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected SpawnAndWait to panic for an out of range job count")
		}
	}()
	s.SpawnAndWait(true, JobSpecFor(0, func() bool { return false }))
}

func TestTaskSetPhaseWait(t *testing.T) {
	s := New()
	ts := NewTaskSet(s)

	var ran int32
	for i := 0; i < 5; i++ {
		ts.SpawnTask(PhaseLoadCells, func() bool {
			atomic.AddInt32(&ran, 1)
			return false
		})
	}
	ts.WaitForLoadCells()

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Fatalf("expected 5 load-cells jobs to run, got %d", got)
	}
}
