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

package telemetrylog

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// Log is a monotonic, append-only event history backed by LevelDB. Keys are
// an 8-byte big-endian sequence number, so iteration order is insertion
// order.
type Log struct {
	mu   sync.Mutex
	db   *leveldb.DB
	next uint64
}

// Open creates or attaches to a LevelDB database at path.
func Open(path string) (*Log, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	l := &Log{db: db}
	if err := l.loadNextSequence(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) loadNextSequence() error {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()
	if iter.Last() {
		seq := binary.BigEndian.Uint64(iter.Key())
		l.next = seq + 1
	}
	return iter.Error()
}

// Close releases the underlying LevelDB handle.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append persists ev under the next sequence key.
func (l *Log) Append(ev Event) error {
	enc := newGobEncoderLight()
	blob, err := enc.EncodeType(ev)
	if err != nil {
		return err
	}

	l.mu.Lock()
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, l.next)
	l.next++
	l.mu.Unlock()

	return l.db.Put(key, blob, nil)
}

// Tail returns up to the last n events, oldest first.
func (l *Log) Tail(n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	var blobs [][]byte
	for ok := iter.Last(); ok && len(blobs) < n; ok = iter.Prev() {
		blob := make([]byte, len(iter.Value()))
		copy(blob, iter.Value())
		blobs = append(blobs, blob)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(blobs))
	for i := len(blobs) - 1; i >= 0; i-- {
		// Each record was encoded by its own encoder and carries its own
		// type definition, so each needs a fresh decoder.
		dec := newGobDecoderLight()
		var ev Event
		if err := dec.DecodeType(blobs[i], &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
