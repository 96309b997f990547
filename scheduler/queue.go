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

import "sync"

// JobQueue is an unbounded multi-producer multi-consumer FIFO queue of
// Jobs. Push is O(1) amortised; Pop takes a short critical section to
// splice the front element out.
type JobQueue struct {
	mu   sync.Mutex
	jobs []*Job
}

// NewJobQueue creates a fully initialised, empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{
		jobs: make([]*Job, 0, 16),
	}
}

// Push places a new job at the end of the queue. Ownership of the job
// moves to the queue.
func (q *JobQueue) Push(j *Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
}

// Pop attempts a non-blocking dequeue from the front of the queue.
func (q *JobQueue) Pop() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, false
	}
	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j, true
}

// PopChunk removes up to max jobs from the front of the queue in a single
// critical section, amortising lock contention for consumers that want to
// process a batch.
func (q *JobQueue) PopChunk(max int) []*Job {
	if max <= 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil
	}
	if max > len(q.jobs) {
		max = len(q.jobs)
	}
	chunk := make([]*Job, max)
	copy(chunk, q.jobs[:max])
	for i := 0; i < max; i++ {
		q.jobs[i] = nil
	}
	q.jobs = q.jobs[max:]
	return chunk
}

// ApproxSize returns a hint at the current queue depth. Callers may not
// rely on the exact value under concurrent access.
func (q *JobQueue) ApproxSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Empty reports whether the queue was observed empty at call time.
func (q *JobQueue) Empty() bool {
	return q.ApproxSize() == 0
}
