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

// QueueMap maps a caller-supplied job-class integer to its JobQueue. Queues
// are created lazily on first reference; once inserted a key's queue is
// never replaced or torn down until the map itself is discarded.
type QueueMap struct {
	mu     sync.RWMutex
	queues map[int]*JobQueue
}

// NewQueueMap returns an empty, ready to use QueueMap.
func NewQueueMap() *QueueMap {
	return &QueueMap{
		queues: make(map[int]*JobQueue),
	}
}

// QueueFor returns a stable reference to the queue for classID, creating it
// on first use. Concurrent callers requesting the same classID observe the
// same *JobQueue.
func (m *QueueMap) QueueFor(classID int) *JobQueue {
	m.mu.RLock()
	q, ok := m.queues[classID]
	m.mu.RUnlock()
	if ok {
		return q
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[classID]; ok {
		return q
	}
	q = NewJobQueue()
	m.queues[classID] = q
	return q
}

// Push appends j to the queue for classID.
func (m *QueueMap) Push(classID int, j *Job) {
	m.QueueFor(classID).Push(j)
}

// Pop attempts a non-blocking dequeue from the queue for classID. It does
// not create a queue for a class that has never been referenced.
func (m *QueueMap) Pop(classID int) (*Job, bool) {
	m.mu.RLock()
	q, ok := m.queues[classID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return q.Pop()
}

// ApproxSize is a hint at the depth of the queue for classID.
func (m *QueueMap) ApproxSize(classID int) int {
	m.mu.RLock()
	q, ok := m.queues[classID]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return q.ApproxSize()
}

// Classes returns a snapshot of every class ID that has ever been
// referenced, for status reporting.
func (m *QueueMap) Classes() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, 0, len(m.queues))
	for id := range m.queues {
		out = append(out, id)
	}
	return out
}

// PendingTotal sums the approximate size of every known class queue.
func (m *QueueMap) PendingTotal() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, q := range m.queues {
		total += q.ApproxSize()
	}
	return total
}
