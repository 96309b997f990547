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

package filewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solus-project/multijobd/scheduler"
)

func TestProcessManifestResolvesAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	sched := scheduler.New()

	w, err := New(sched, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.watcher.Close()

	manifestPath := filepath.Join(dir, "incoming"+ManifestSuffix)
	if err := os.WriteFile(manifestPath, []byte("1 3\n2 2\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w.processManifest(manifestPath)

	deadline := time.Now().Add(2 * time.Second)
	for sched.PendingBackgroundJobs() > 0 && time.Now().Before(deadline) {
		sched.ProcessBackgroundJobs()
		time.Sleep(time.Millisecond)
	}
	sched.ProcessBackgroundJobs()

	for time.Now().Before(deadline) {
		if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := os.Stat(manifestPath); !os.IsNotExist(err) {
		t.Fatalf("expected manifest file to be removed after processing")
	}
}

func TestResolveManifestSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	sched := scheduler.New()
	w := &Watcher{sched: sched}

	manifestPath := filepath.Join(dir, "bad"+ManifestSuffix)
	if err := os.WriteFile(manifestPath, []byte("not-a-number 1\n1\n3 1\n4 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := w.resolveManifest(manifestPath); err != nil {
		t.Fatalf("resolveManifest: %v", err)
	}

	if _, err := os.Stat(manifestPath); !os.IsNotExist(err) {
		t.Fatalf("expected manifest file to be removed")
	}
}
