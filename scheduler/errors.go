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

import "errors"

var (
	// ErrInvalidSpawnAndWaitCount is raised when SpawnAndWait is called
	// with fewer than two or more than six job specs.
	ErrInvalidSpawnAndWaitCount = errors.New("scheduler: spawn-and-wait requires between 2 and 6 jobs")

	// ErrBudgetUnderflow indicates the running-background-consumer counter
	// would drop below zero, which is always a scheduler bug; surfaced
	// rather than silently clamped so it is visible in tests and logs.
	ErrBudgetUnderflow = errors.New("scheduler: background consumer budget underflow")
)
