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

package main

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/activation"
	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/solus-project/multijobd/filewatch"
	"github.com/solus-project/multijobd/jobaudit"
	"github.com/solus-project/multijobd/scheduler"
	"github.com/solus-project/multijobd/statusapi"
	"github.com/solus-project/multijobd/telemetrylog"
)

// Server owns the scheduler, its domain-stack collaborators, and the Unix
// socket they are served on.
type Server struct {
	api    *statusapi.Server
	socket net.Listener

	lockFile *LockFile
	lockPath string

	sched     *scheduler.Scheduler
	telemetry *telemetrylog.Log
	audit     *jobaudit.Log
	watcher   *filewatch.Watcher

	running    bool
	socketPath string
}

// NewServer returns a newly initialised Server, unbound, with its lock
// file already held.
func NewServer() (*Server, error) {
	s := &Server{}

	s.lockPath = filepath.Join(baseDir, LockFilePath)
	lfile, err := NewLockFile(s.lockPath)
	if err != nil {
		return nil, err
	}
	s.lockFile = lfile
	if err := s.lockFile.Lock(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) killHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		log.Warning("multijobd shutting down")
		s.Close()
		os.Exit(1)
	}()
}

// Bind sets up the telemetry log, audit log, scheduler, watcher, and
// status API, and claims the Unix socket (or the systemd-activated one).
func (s *Server) Bind() error {
	var listener net.Listener

	s.socketPath = socketPath

	if _, activated := os.LookupEnv("LISTEN_FDS"); activated {
		listeners, err := activation.Listeners(true)
		if err != nil {
			return err
		}
		if len(listeners) != 1 {
			return errors.New("expected a single unix socket")
		}
		listener = listeners[0]
		if unix, ok := listener.(*net.UnixListener); ok {
			unix.SetUnlinkOnClose(false)
		} else {
			return errors.New("expected unix socket")
		}
		systemdEnabled = true
	} else {
		l, err := net.Listen("unix", s.socketPath)
		if err != nil {
			return err
		}
		listener = l
	}

	tlog, err := telemetrylog.Open(filepath.Join(baseDir, "telemetry.ldb"))
	if err != nil {
		return err
	}
	s.telemetry = tlog

	audit, err := jobaudit.Open(filepath.Join(baseDir, "audit.bolt"))
	if err != nil {
		return err
	}
	s.audit = audit

	s.sched = scheduler.New(
		scheduler.WithTelemetry(telemetrylog.NewSink(tlog)),
		scheduler.WithMaxConcurrentBackgroundConsumers(backgroundJobCount),
		scheduler.WithBackgroundJobAuditor(func(classID int, kind scheduler.Kind, panicMsg string) {
			err := s.audit.Record(jobaudit.Entry{
				FinishedAt:   time.Now(),
				ClassID:      classID,
				Kind:         kind.String(),
				PanicMessage: panicMsg,
			})
			if err != nil {
				log.WithFields(log.Fields{"error": err}).Warning("failed to record job audit entry")
			}
		}),
	)

	watcher, err := filewatch.New(s.sched, incomingDir)
	if err != nil {
		return err
	}
	s.watcher = watcher

	s.api = statusapi.New(s.sched, s.telemetry)

	uid := os.Getuid()
	gid := os.Getgid()
	if !systemdEnabled {
		if err := os.Chown(s.socketPath, uid, gid); err != nil {
			return err
		}
		if err := os.Chmod(s.socketPath, 0660); err != nil {
			return err
		}
	}
	s.socket = listener
	return nil
}

// Serve blocks, running the status API over the bound socket until the
// daemon is shut down.
func (s *Server) Serve() error {
	if s.socket == nil {
		return errors.New("cannot serve without a bound server socket")
	}
	s.running = true
	s.killHandler()
	defer func() { s.running = false }()

	s.watcher.Start()

	if systemdEnabled {
		daemon.SdNotify(false, "READY=1")
	}

	return s.api.Serve(s.socket)
}

// Close tears the daemon down: stops the watcher, closes the audit and
// telemetry logs, releases the lock, and unlinks the socket if owned.
func (s *Server) Close() {
	if !s.running {
		return
	}
	if s.lockFile != nil {
		s.lockFile.Unlock()
		s.lockFile.Clean()
		s.lockFile = nil
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.api != nil {
		s.api.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}
	if s.telemetry != nil {
		s.telemetry.Close()
	}
	s.running = false

	if !systemdEnabled {
		os.Remove(s.socketPath)
	}
}
