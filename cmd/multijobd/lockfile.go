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
	"os"
	"syscall"
)

// LockFile asserts single-instance ownership of the daemon's base
// directory via an flock'd file.
type LockFile struct {
	path string
	file *os.File
}

// NewLockFile opens (creating if necessary) the lock file at path without
// acquiring it.
func NewLockFile(path string) (*LockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &LockFile{path: path, file: f}, nil
}

// Lock acquires an exclusive, non-blocking flock on the underlying file.
func (l *LockFile) Lock() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases the flock without removing the file.
func (l *LockFile) Unlock() error {
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
}

// Clean closes and removes the lock file. Safe to call after Unlock.
func (l *LockFile) Clean() error {
	l.file.Close()
	return os.Remove(l.path)
}
