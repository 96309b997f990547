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

// Sentinel values for SetMaxConcurrentBackgroundConsumers, mirroring the
// tarch::multicore::jobs throttle policy this core generalises.
const (
	// DontUseAnyBackgroundJobs means background jobs are enqueued only;
	// consumers are never launched automatically. They drain only when
	// Scheduler.ProcessBackgroundJobs is called explicitly.
	DontUseAnyBackgroundJobs = -1

	// ProcessImmediately means every background spawn executes on the
	// caller's thread; nothing is ever enqueued.
	ProcessImmediately = -2
)

// backgroundQueue is a JobQueue specialised with a consumer throttle. It
// tracks how many background consumers are currently running against a
// process-wide budget.
type backgroundQueue struct {
	queue *JobQueue

	maxConcurrent int32 // budget; may hold a sentinel from above
	running       int32 // atomic count of live background consumers
	terminated    int32 // atomic bool: queued slots were cancelled
}

func newBackgroundQueue() *backgroundQueue {
	return &backgroundQueue{
		queue:         NewJobQueue(),
		maxConcurrent: int32(runtime.NumCPU()),
	}
}

func (b *backgroundQueue) budget() int {
	return int(atomic.LoadInt32(&b.maxConcurrent))
}

func (b *backgroundQueue) setBudget(n int) {
	atomic.StoreInt32(&b.maxConcurrent, int32(n))
	// Adjusting the budget re-opens the gate for queued work.
	atomic.StoreInt32(&b.terminated, 0)
}

func (b *backgroundQueue) runningCount() int {
	return int(atomic.LoadInt32(&b.running))
}

// tryReserveSlot attempts to claim one consumer slot under the current
// budget. It returns false if the budget is exhausted, non-positive
// (Don'tUseAnyBackgroundJobs / ProcessImmediately), or queued consumers
// have been cancelled via terminateQueued.
func (b *backgroundQueue) tryReserveSlot() bool {
	if atomic.LoadInt32(&b.terminated) != 0 {
		return false
	}
	budget := b.budget()
	if budget <= 0 {
		return false
	}
	for {
		cur := atomic.LoadInt32(&b.running)
		if cur >= int32(budget) {
			return false
		}
		if atomic.CompareAndSwapInt32(&b.running, cur, cur+1) {
			return true
		}
	}
}

// forceReserveSlotIfIdle is used for long-running background jobs under the
// MaxNumberOfRunningBackgroundThreads==0 policy tier, which gets a
// dedicated consumer outside the ordinary (zero) budget. It claims that
// slot only if no tier-0 consumer is already live, so this tier can never
// run more than the one consumer its budget allows.
func (b *backgroundQueue) forceReserveSlotIfIdle() bool {
	return atomic.CompareAndSwapInt32(&b.running, 0, 1)
}

func (b *backgroundQueue) releaseSlot() {
	if atomic.AddInt32(&b.running, -1) < 0 {
		// Always a scheduler bug: panic to surface it in tests and logs,
		// after clamping the counter back to zero.
		atomic.StoreInt32(&b.running, 0)
		panic(ErrBudgetUnderflow)
	}
}

func (b *backgroundQueue) terminateQueued() {
	atomic.StoreInt32(&b.terminated, 1)
}

func (b *backgroundQueue) pendingCount() int {
	return b.queue.ApproxSize()
}
