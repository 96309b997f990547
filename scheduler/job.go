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

// Kind classifies a Job's scheduling hints. Jobs that are tasks carry no
// cross-queue dependencies and may be handed directly to an opportunistic
// runtime; everything else is only ordered by its class queue.
type Kind uint8

const (
	// KindJob may depend on other jobs producing data into shared memory,
	// so it is only ever ordered through its class queue.
	KindJob Kind = iota

	// KindTask asserts no dependencies on other jobs.
	KindTask

	// KindReceiveTask is a task awaiting data from a remote rank. It is
	// treated identically to KindTask by this core; distributed-memory
	// message buffering is an external collaborator.
	KindReceiveTask

	// KindRunAsSoonAsPossible is a task that should start on any idle
	// worker immediately.
	KindRunAsSoonAsPossible

	// KindProcessImmediately means "execute inline, never enqueue".
	KindProcessImmediately

	// KindBackground is a low-priority job routed to the background queue.
	KindBackground

	// KindLongRunningBackground is a background job the caller knows will
	// run for a long time; it may be handed a dedicated consumer even when
	// the budget would otherwise defer background work.
	KindLongRunningBackground

	// KindPersistentBackground is kept re-enqueued by its consumer until
	// its Run callable returns false.
	KindPersistentBackground

	// KindRunAsap is a background-queue job. It is queued in FIFO order
	// together with ordinary background work; it is not moved ahead of it.
	KindRunAsap
)

// IsTask reports whether a Kind carries no cross-job dependencies and may
// therefore be executed by any idle worker without queue discipline.
func (k Kind) IsTask() bool {
	switch k {
	case KindTask, KindReceiveTask, KindRunAsSoonAsPossible, KindRunAsap:
		return true
	default:
		return false
	}
}

// IsBackground reports whether a Kind belongs on the background queue.
func (k Kind) IsBackground() bool {
	switch k {
	case KindBackground, KindLongRunningBackground, KindPersistentBackground, KindRunAsap:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindJob:
		return "Job"
	case KindTask:
		return "Task"
	case KindReceiveTask:
		return "ReceiveTask"
	case KindRunAsSoonAsPossible:
		return "RunAsSoonAsPossible"
	case KindProcessImmediately:
		return "ProcessImmediately"
	case KindBackground:
		return "Background"
	case KindLongRunningBackground:
		return "LongRunningBackground"
	case KindPersistentBackground:
		return "PersistentBackground"
	case KindRunAsap:
		return "RunAsap"
	default:
		return "Unknown"
	}
}

// RunFunc is a unit of work. A return value of true means "please
// re-enqueue me"; false means "I am finished, destroy me".
type RunFunc func() bool

// Job is an owned, heap-allocated unit of work. Kind and ClassID are set at
// construction and are immutable thereafter. The scheduler never calls Run
// concurrently for the same Job.
type Job struct {
	Kind    Kind
	ClassID int
	Run     RunFunc

	// Describe is optional, used only for logging.
	Describe func() string
}

// NewJob constructs a dependent, class-queued unit of work.
func NewJob(classID int, run RunFunc) *Job {
	if run == nil {
		panic("scheduler: NewJob called with a nil callable")
	}
	return &Job{Kind: KindJob, ClassID: classID, Run: run}
}

// NewTask constructs a dependency-free unit of work suitable for immediate
// opportunistic execution.
func NewTask(run RunFunc) *Job {
	if run == nil {
		panic("scheduler: NewTask called with a nil callable")
	}
	return &Job{Kind: KindTask, Run: run}
}

// NewBackgroundJob constructs a job destined for the background queue.
func NewBackgroundJob(kind Kind, run RunFunc) *Job {
	if run == nil {
		panic("scheduler: NewBackgroundJob called with a nil callable")
	}
	if !kind.IsBackground() && kind != KindProcessImmediately {
		panic("scheduler: NewBackgroundJob called with a non-background kind")
	}
	return &Job{Kind: kind, Run: run}
}

func (j *Job) describe() string {
	if j.Describe != nil {
		return j.Describe()
	}
	return j.Kind.String()
}
