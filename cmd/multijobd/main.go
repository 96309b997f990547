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

// Command multijobd runs the job scheduling daemon: a Scheduler exposed
// over a Unix socket, fed by a drop-directory watcher, with a durable
// telemetry and completed-job audit trail.
package main

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"os"
	"path/filepath"
)

var (
	// systemdEnabled records whether the socket came from systemd
	// activation, so Close knows whether it owns the unlink.
	systemdEnabled = false

	// baseDir is where the daemon stores its log, lock, and databases.
	baseDir = "/var/lib/multijobd"

	// socketPath is the Unix socket the statusapi server binds.
	socketPath = "/run/multijobd.sock"

	// incomingDir is the filewatch inbox directory.
	incomingDir = "/var/lib/multijobd/incoming"

	// backgroundJobCount is the initial background consumer budget;
	// -1 means scheduler.DontUseAnyBackgroundJobs.
	backgroundJobCount = -1
)

const (
	// LockFilePath is created within baseDir to assert single-instance
	// ownership.
	LockFilePath = "multijobd.lock"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mainLoop() {
	pflag.StringVarP(&baseDir, "base", "d", baseDir, "Set the base directory for multijobd")
	pflag.StringVarP(&socketPath, "socket", "s", socketPath, "Set the socket path for multijobd")
	pflag.StringVarP(&incomingDir, "incoming", "i", incomingDir, "Set the job-manifest inbox directory")
	pflag.IntVarP(&backgroundJobCount, "jobs", "j", backgroundJobCount, "Background consumer budget (-1 disables automatic background consumers)")
	pflag.Parse()

	form := &log.TextFormatter{DisableColors: true}
	form.FullTimestamp = true
	form.TimestampFormat = "15:04:05"
	log.SetFormatter(form)

	b, err := filepath.Abs(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot resolve directory %v: %v\n", baseDir, err)
		os.Exit(1)
	}
	baseDir = b

	if !pathExists(baseDir) {
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create base directory %v: %v\n", baseDir, err)
			os.Exit(1)
		}
	}
	if !pathExists(incomingDir) {
		if err := os.MkdirAll(incomingDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot create incoming directory %v: %v\n", incomingDir, err)
			os.Exit(1)
		}
	}

	srv, err := NewServer()
	if err != nil {
		lockPath := filepath.Join(baseDir, LockFilePath)
		fmt.Fprintf(os.Stderr, "Failed to start multijobd: %v (lockfile: %v)\n", err, lockPath)
		os.Exit(1)
	}
	defer srv.Close()

	logPath := filepath.Join(baseDir, "multijobd.log")
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %s %v\n", logPath, err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	log.Info("initialising multijobd")

	if err := srv.Bind(); err != nil {
		log.WithFields(log.Fields{
			"socket": srv.socketPath,
			"error":  err,
		}).Error("error binding server socket")
		fmt.Fprintf(os.Stderr, "Fatal error in socket bind, check logs: %v\n", err)
		return
	}
	if err := srv.Serve(); err != nil {
		log.WithFields(log.Fields{
			"socket": srv.socketPath,
			"error":  err,
		}).Error("error serving on socket")
		fmt.Fprintf(os.Stderr, "Fatal error in runtime execution, check logs: %v\n", err)
		return
	}
}

func main() {
	mainLoop()
}
