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

// Package filewatch watches an inbox directory for job-descriptor files
// and spawns background jobs to resolve each one into synthetic sub-jobs.
package filewatch

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/radu-munteanu/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/solus-project/multijobd/scheduler"
)

// ManifestSuffix is the extension a dropped file must carry to be treated
// as a job manifest.
const ManifestSuffix = ".jobmanifest"

// Watcher monitors a directory for closed manifest files and spawns
// background jobs that resolve each one into synthetic sub-jobs.
type Watcher struct {
	sched      *scheduler.Scheduler
	watcher    *fsnotify.Watcher
	incoming   string
	watchChan  chan bool
	watchGroup sync.WaitGroup
}

// New constructs a Watcher monitoring incomingDir.
func New(sched *scheduler.Scheduler, incomingDir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(incomingDir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		sched:     sched,
		watcher:   fw,
		incoming:  incomingDir,
		watchChan: make(chan bool),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.watchGroup.Add(1)
	go func() {
		defer w.watchGroup.Done()
		for {
			select {
			case event := <-w.watcher.Events:
				if event.Op&fsnotify.Close == fsnotify.Close {
					if strings.HasSuffix(event.Name, ManifestSuffix) {
						w.processManifest(event.Name)
					}
				}
			case <-w.watchChan:
				return
			}
		}
	}()
}

// Stop terminates the watch goroutine and blocks until it has exited.
func (w *Watcher) Stop() {
	w.watchChan <- true
	w.watchGroup.Wait()
	w.watcher.Close()
}

// processManifest is invoked when a manifest file is closed in the inbox
// directory. It spawns a background job that parses the file's (class,
// weight) pairs and resolves them into that many synthetic sub-jobs.
func (w *Watcher) processManifest(path string) {
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return
	}

	w.sched.Spawn(scheduler.NewBackgroundJob(scheduler.KindBackground, func() bool {
		if err := w.resolveManifest(path); err != nil {
			log.WithFields(log.Fields{
				"path":  path,
				"error": err,
			}).Error("failed to resolve job manifest")
		}
		return false
	}))
}

// resolveManifest reads a newline-delimited "class weight" manifest and
// turns each well-formed line into a synthetic sub-job, then removes the
// file. Two to six sub-jobs are run via SpawnAndWait; any other count is
// run sequentially on the calling goroutine.
func (w *Watcher) resolveManifest(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var specs []scheduler.JobSpec
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		fields := strings.Fields(scan.Text())
		if len(fields) != 2 {
			continue
		}
		classID, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		weight, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		specs = append(specs, scheduler.JobSpecFor(classID, weightedNoop(weight)))
	}
	if err := scan.Err(); err != nil {
		return err
	}

	if len(specs) >= 2 && len(specs) <= 6 {
		w.sched.SpawnAndWait(true, specs...)
	} else {
		for _, spec := range specs {
			for spec.Run() {
			}
		}
	}

	return os.Remove(path)
}

// weightedNoop returns a RunFunc that reschedules itself weight-1 times
// before finishing, standing in for real manifest-driven work.
func weightedNoop(weight int) scheduler.RunFunc {
	remaining := weight
	return func() bool {
		remaining--
		return remaining > 0
	}
}
