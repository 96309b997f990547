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

// Phase identifies a traversal phase in the domain the core was extracted
// from. The TaskSet façade translates a Phase into the (class, kind) pair
// the generic scheduler understands, so phase-ordering is always respected
// because identical phases always map to identical classes.
type Phase uint8

const (
	PhaseLoadCells Phase = iota
	PhaseLoadVertices
	PhaseTriggerEvents
	PhaseStoreCells
	PhaseStoreVertices
	PhaseRunAsSoonAsPossible
	PhaseRunImmediately
	PhaseBackground
	PhaseLongRunningBackground
	PhasePersistentBackground
)

const (
	classLoadCells      = 1
	classLoadVertices   = 2
	classTriggerEvents  = 3
	classStoreCells     = 4
	classStoreVertices  = 5
	classRunAsap        = 0
	classRunImmediately = -1 // unused by any queue; ProcessImmediately never enqueues
)

// classAndKind translates a traversal phase into the (class, kind) pair
// its jobs are scheduled under.
func classAndKind(phase Phase) (classID int, kind Kind) {
	switch phase {
	case PhaseLoadCells:
		return classLoadCells, KindJob
	case PhaseLoadVertices:
		return classLoadVertices, KindJob
	case PhaseTriggerEvents:
		return classTriggerEvents, KindJob
	case PhaseStoreCells:
		return classStoreCells, KindJob
	case PhaseStoreVertices:
		return classStoreVertices, KindJob
	case PhaseRunAsSoonAsPossible:
		return classRunAsap, KindTask
	case PhaseBackground:
		return 0, KindBackground
	case PhaseLongRunningBackground:
		return 0, KindLongRunningBackground
	case PhasePersistentBackground:
		return 0, KindPersistentBackground
	default: // PhaseRunImmediately
		return classRunImmediately, KindProcessImmediately
	}
}

// TaskSet is a thin adapter translating domain-level traversal-phase hints
// into (job-class, job-type) pairs, invoking Spawn on the underlying
// Scheduler and ProcessJobs for the phase waits. It has no spawn-and-wait
// entry point. It is grounded on peano::datatraversal::TaskSet's
// waitForAll* method family.
type TaskSet struct {
	Scheduler *Scheduler
}

// NewTaskSet wraps an existing Scheduler with the phase-typed façade.
func NewTaskSet(s *Scheduler) *TaskSet {
	return &TaskSet{Scheduler: s}
}

// SpawnTask classifies run by phase and spawns it.
func (t *TaskSet) SpawnTask(phase Phase, run RunFunc) {
	classID, kind := classAndKind(phase)
	t.Scheduler.Spawn(&Job{Kind: kind, ClassID: classID, Run: run})
}

// WaitForLoadCells drains the load-cells class queue until it is observed
// empty. This is cooperative: a sub-job that reschedules itself simply
// extends the drain.
func (t *TaskSet) WaitForLoadCells() {
	t.Scheduler.ProcessJobs(classLoadCells, -1)
}

// WaitForLoadVertices drains the load-vertices class queue until empty.
func (t *TaskSet) WaitForLoadVertices() {
	t.Scheduler.ProcessJobs(classLoadVertices, -1)
}

// WaitForEvents drains the trigger-events class queue until empty.
func (t *TaskSet) WaitForEvents() {
	t.Scheduler.ProcessJobs(classTriggerEvents, -1)
}

// WaitForStoreCells drains the store-cells class queue until empty.
func (t *TaskSet) WaitForStoreCells() {
	t.Scheduler.ProcessJobs(classStoreCells, -1)
}

// WaitForStoreVertices drains the store-vertices class queue until empty.
func (t *TaskSet) WaitForStoreVertices() {
	t.Scheduler.ProcessJobs(classStoreVertices, -1)
}
