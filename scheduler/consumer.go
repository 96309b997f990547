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
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
)

const minConsumerChunk = 4

// chunkSize picks a bounded batch size to amortise contention:
// approxSize/workerCount, raised to minConsumerChunk when smaller, and
// never more than approxSize.
func chunkSize(approxSize int) int {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	c := approxSize / workers
	if c < minConsumerChunk {
		c = minConsumerChunk
	}
	if c > approxSize {
		c = approxSize
	}
	return c
}

// runJobSafely invokes job.Run, recovering a panicking user callable so it
// cannot poison the queue: a panic is logged and treated as "do not
// re-enqueue". panicMsg is non-empty only when a panic was recovered.
func (s *Scheduler) runJobSafely(j *Job) (reschedule bool, panicMsg string) {
	defer func() {
		if r := recover(); r != nil {
			reschedule = false
			panicMsg = fmt.Sprintf("%v", r)
			s.log().WithFields(log.Fields{
				"class": j.ClassID,
				"kind":  j.Kind.String(),
				"job":   j.describe(),
				"panic": panicMsg,
			}).Error("job panicked, dropping it")
		}
	}()
	return j.Run(), ""
}

// drainQueueChunk pops a bounded chunk from q and runs each job, re-pushing
// any that ask to be rescheduled. It returns the number of jobs touched.
func (s *Scheduler) drainQueueChunk(q *JobQueue) int {
	chunk := q.PopChunk(chunkSize(q.ApproxSize()))
	for _, j := range chunk {
		if more, _ := s.runJobSafely(j); more {
			q.Push(j)
		}
	}
	return len(chunk)
}

// drainQueueOne pops and runs a single job from q, used by the
// spawn-and-wait drain loop's one-per-pass tie-break policy. It reports
// whether a job was found.
func (s *Scheduler) drainQueueOne(q *JobQueue) bool {
	j, ok := q.Pop()
	if !ok {
		return false
	}
	if more, _ := s.runJobSafely(j); more {
		q.Push(j)
	}
	return true
}

// runToCompletion repeatedly invokes a job's Run until it asks to be
// destroyed, used for ProcessImmediately dispatch and the serial-runtime
// fallback paths.
func (s *Scheduler) runToCompletion(j *Job) {
	for {
		more, _ := s.runJobSafely(j)
		if !more {
			return
		}
	}
}
