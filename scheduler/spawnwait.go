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
	"runtime"
	"sync/atomic"
)

// JobSpec describes one sub-job passed to SpawnAndWait: its scheduling
// hint, its class (ignored for task/background kinds), and its callable.
type JobSpec struct {
	Kind    Kind
	ClassID int
	Run     RunFunc
}

// JobSpecFor is a convenience constructor for the common KindJob case.
func JobSpecFor(classID int, run RunFunc) JobSpec {
	return JobSpec{Kind: KindJob, ClassID: classID, Run: run}
}

// TaskSpec is a convenience constructor for a dependency-free sub-job.
func TaskSpec(run RunFunc) JobSpec {
	return JobSpec{Kind: KindTask, Run: run}
}

// SpawnAndWait is the fork-join primitive: it launches 2-6 heterogeneous
// jobs and blocks until all have reached their final run (the last
// invocation whose callable returned false).
//
// If parallelise is false the sub-jobs run sequentially on the caller in
// argument order.
//
// If parallelise is true, every sub-job is first handed to Spawn - so
// KindJob sub-jobs are only enqueued, never started, before any of them
// runs - and only then does the calling thread join in as a cooperative
// consumer, draining one job from each involved class queue and one from
// the background queue per pass. This ordering is deliberate: it
// guarantees every sibling reaches at least queued state before any of
// them executes, so a fork that outnumbers the available workers cannot
// leave a started job blocked on data from a sibling that never got
// scheduled. Involved classes are drained in the order their specs were
// given, not map order, so which sibling runs first within a pass is
// reproducible.
//
// A sub-job's callable runs inline on the single waiting goroutine while
// it is being drained here, so it must never suspend waiting on a
// sibling: a sub-job with a cross-class data dependency has to check
// whether that data is ready and return true to be rescheduled if it
// isn't, the same contract every other job honours. A callable that
// blocks instead can stall every sibling's progress for as long as it
// blocks.
func (s *Scheduler) SpawnAndWait(parallelise bool, specs ...JobSpec) {
	n := len(specs)
	if n < 2 || n > 6 {
		panic(ErrInvalidSpawnAndWaitCount)
	}

	if !parallelise {
		for _, spec := range specs {
			for spec.Run() {
			}
		}
		return
	}

	s.telemetry.ConcurrencyDelta(n, n)
	defer s.telemetry.ConcurrencyDelta(-n, -n)

	var remaining int32 = int32(n)
	seenClass := make(map[int]bool, n)
	var involvedClasses []int

	for _, spec := range specs {
		spec := spec
		if spec.Kind == KindJob && !seenClass[spec.ClassID] {
			seenClass[spec.ClassID] = true
			involvedClasses = append(involvedClasses, spec.ClassID)
		}
		wrapped := &Job{
			Kind:    spec.Kind,
			ClassID: spec.ClassID,
			// A panicking callable leaves more at false, so a recovered
			// panic counts as the sub-job's final run.
			Run: func() (more bool) {
				defer func() {
					if !more {
						atomic.AddInt32(&remaining, -1)
					}
				}()
				return spec.Run()
			},
		}
		s.Spawn(wrapped)
	}

	for atomic.LoadInt32(&remaining) > 0 {
		progressed := false
		for _, classID := range involvedClasses {
			if s.drainQueueOne(s.classes.QueueFor(classID)) {
				progressed = true
			}
		}
		if s.drainQueueOne(s.bg.queue) {
			progressed = true
		}
		if !progressed {
			runtime.Gosched()
		}
	}
}
