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

// Package scheduler is the multicore job scheduling core: a typed job/task
// abstraction, per-class FIFO queues, a throttled background consumer
// subsystem, and a spawn-and-wait fork-join primitive whose waiting thread
// drains queues cooperatively instead of blocking on a worker pool.
package scheduler

import (
	"math"
	"runtime"

	log "github.com/sirupsen/logrus"
)

// Scheduler is the process-wide (or per-subsystem, if constructed more than
// once) handle to the job system: the per-class queue map, the background
// queue and its consumer budget, and the telemetry sink.
type Scheduler struct {
	classes   *QueueMap
	bg        *backgroundQueue
	telemetry Telemetry
	logger    *log.Logger

	// onBackgroundJobDone, if set, is invoked once a background job
	// reaches its terminal (non-rescheduling) run, with the class,
	// kind, and any recovered panic message. It is intended for a
	// durable audit trail and must never block or panic.
	onBackgroundJobDone func(classID int, kind Kind, panicMsg string)
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithTelemetry installs a Telemetry sink. The default is NoopTelemetry.
func WithTelemetry(t Telemetry) Option {
	return func(s *Scheduler) { s.telemetry = t }
}

// WithLogger installs a logrus logger used for job-panic reporting. The
// default is the logrus standard logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMaxConcurrentBackgroundConsumers sets the initial background consumer
// budget. The default is runtime.NumCPU().
func WithMaxConcurrentBackgroundConsumers(n int) Option {
	return func(s *Scheduler) { s.bg.setBudget(n) }
}

// WithBackgroundJobAuditor installs a callback invoked once per background
// job's terminal run, for building a durable completion trail external to
// the scheduler. The callback must not block or panic; it runs on the
// background consumer goroutine.
func WithBackgroundJobAuditor(fn func(classID int, kind Kind, panicMsg string)) Option {
	return func(s *Scheduler) { s.onBackgroundJobDone = fn }
}

// New returns a ready to use Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		classes:   NewQueueMap(),
		bg:        newBackgroundQueue(),
		telemetry: NoopTelemetry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) log() *log.Logger {
	if s.logger != nil {
		return s.logger
	}
	return log.StandardLogger()
}

// Spawn dispatches job by its Kind: ProcessImmediately runs inline on the
// caller to completion, task kinds hand off to an opportunistic goroutine,
// background kinds route through the throttled background queue, and
// KindJob is appended to its class queue without blocking.
func (s *Scheduler) Spawn(j *Job) {
	if j == nil {
		panic("scheduler: Spawn called with a nil job")
	}
	switch {
	case j.Kind == KindProcessImmediately:
		s.runToCompletion(j)
	case j.Kind.IsBackground():
		s.spawnBackground(j)
	case j.Kind.IsTask():
		go s.runToCompletion(j)
	default:
		s.classes.Push(j.ClassID, j)
	}
}

func (s *Scheduler) spawnBackground(j *Job) {
	switch s.bg.budget() {
	case ProcessImmediately:
		s.runToCompletion(j)
	case DontUseAnyBackgroundJobs:
		s.bg.queue.Push(j)
		s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
	case 0:
		s.bg.queue.Push(j)
		s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
		if j.Kind == KindLongRunningBackground {
			s.maybeSpawnBackgroundConsumer()
		}
	default:
		s.bg.queue.Push(j)
		s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
		s.maybeSpawnBackgroundConsumer()
	}
}

// maybeSpawnBackgroundConsumer claims a consumer slot and launches a
// consumer if one is available. At the tier-0 budget (long-running jobs
// only) at most one consumer may ever be live, so it claims the dedicated
// idle slot instead of the ordinary per-budget one.
func (s *Scheduler) maybeSpawnBackgroundConsumer() {
	if s.bg.budget() == 0 {
		if s.bg.forceReserveSlotIfIdle() {
			go s.backgroundConsumerLoop()
		}
		return
	}
	if s.bg.tryReserveSlot() {
		go s.backgroundConsumerLoop()
	}
}

// backgroundConsumerLoop implements the Scheduled -> Running -> Draining ->
// Terminated consumer lifecycle. It drains the background queue until
// observed empty, releases its budget slot, and - because a producer may
// have raced it - re-checks the queue and spawns a successor if work
// remains. This keeps a non-empty background queue eventually serviced
// without holding a slot indefinitely.
func (s *Scheduler) backgroundConsumerLoop() {
	s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
	for {
		j, ok := s.bg.queue.Pop()
		if !ok {
			break
		}
		more, panicMsg := s.runJobSafely(j)
		if more {
			s.bg.queue.Push(j)
		} else if s.onBackgroundJobDone != nil {
			s.onBackgroundJobDone(j.ClassID, j.Kind, panicMsg)
		}
		runtime.Gosched()
	}
	s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
	s.bg.releaseSlot()
	if s.bg.pendingCount() > 0 {
		s.maybeSpawnBackgroundConsumer()
	}
}

// ProcessJobs drains up to maxJobs jobs from the named class queue,
// synchronously on the caller. A negative maxJobs means unlimited. It
// returns whether any work was done.
func (s *Scheduler) ProcessJobs(classID int, maxJobs int) bool {
	if maxJobs < 0 {
		maxJobs = math.MaxInt
	}
	q := s.classes.QueueFor(classID)
	didWork := false
	processed := 0
	for processed < maxJobs {
		limit := maxJobs - processed
		want := chunkSize(q.ApproxSize())
		if want > limit {
			want = limit
		}
		chunk := q.PopChunk(want)
		if len(chunk) == 0 {
			break
		}
		for _, j := range chunk {
			if more, _ := s.runJobSafely(j); more {
				q.Push(j)
			}
		}
		processed += len(chunk)
		didWork = true
	}
	return didWork
}

// ProcessBackgroundJobs drains a single policy-determined chunk from the
// background queue, synchronously on the caller, and returns whether any
// work was done. This is the explicit drain path used under the
// DontUseAnyBackgroundJobs policy tier, and is safe to call under any
// tier. The chosen cap is one chunkSize()-bounded batch rather than the
// whole queue or an exact half, so a single caller cannot be starved by an
// unbounded backlog.
func (s *Scheduler) ProcessBackgroundJobs() bool {
	n := s.drainQueueChunk(s.bg.queue)
	if n > 0 {
		s.telemetry.BackgroundQueueDepth(s.bg.pendingCount())
	}
	return n > 0
}

// PendingJobs returns the approximate sum of every class queue's depth.
func (s *Scheduler) PendingJobs() int {
	return s.classes.PendingTotal()
}

// PendingBackgroundJobs returns the approximate depth of the background
// queue.
func (s *Scheduler) PendingBackgroundJobs() int {
	return s.bg.pendingCount()
}

// RunningBackgroundConsumers returns the current count of live background
// consumers, for status reporting and tests.
func (s *Scheduler) RunningBackgroundConsumers() int {
	return s.bg.runningCount()
}

// SetMaxConcurrentBackgroundConsumers sets the background consumer budget.
// It accepts the sentinels DontUseAnyBackgroundJobs and ProcessImmediately
// in addition to 0 and any positive count. Raising the budget immediately
// tries to launch consumers for any already-queued backlog.
func (s *Scheduler) SetMaxConcurrentBackgroundConsumers(n int) {
	if n < ProcessImmediately {
		panic("scheduler: invalid background consumer budget")
	}
	s.bg.setBudget(n)
	for n > 0 && s.bg.pendingCount() > 0 {
		if !s.bg.tryReserveSlot() {
			break
		}
		go s.backgroundConsumerLoop()
	}
}

// TerminateBackgroundConsumers cancels queued (not yet started) background
// consumer slots. Consumers already running drain to completion
// undisturbed; any later call to SetMaxConcurrentBackgroundConsumers
// clears the cancellation.
func (s *Scheduler) TerminateBackgroundConsumers() {
	s.bg.terminateQueued()
}
