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

// Package jobaudit keeps a durable, append-only record of finished
// background jobs in a boltdb database, independent of the in-memory
// scheduler state which is discarded on restart.
package jobaudit

import (
	"encoding/binary"
	"encoding/gob"
	"errors"
	"time"

	"github.com/boltdb/bolt"
)

var (
	bucketCompleted = []byte("CompletedBackgroundJobs")

	// ErrNoRecords names an empty audit trail. Recent does not return it:
	// on an empty trail Recent returns no entries and a nil error.
	ErrNoRecords = errors.New("jobaudit: no records")
)

// Entry records the terminal outcome of a single background job run.
type Entry struct {
	FinishedAt   time.Time
	ClassID      int
	Kind         string
	Rescheduled  bool
	PanicMessage string
}

// Log is a boltdb-backed append-only audit trail. It is safe for
// concurrent use.
type Log struct {
	db *bolt.DB
}

// Open creates or attaches to a bolt database at path and ensures the
// completed-jobs bucket exists.
func Open(path string) (*Log, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	l := &Log{db: db}
	if err := l.setup(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) setup() error {
	return l.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCompleted)
		return err
	})
}

// Close releases the underlying bolt database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends entry to the audit trail under a monotonically increasing
// sequence key.
func (l *Log) Record(entry Entry) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCompleted)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		blob, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		return bucket.Put(key, blob)
	})
}

// Recent returns the last n recorded entries, most recent first.
func (l *Log) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucketCompleted).Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < n; k, v = cursor.Prev() {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByClass returns the number of audited completions per class ID,
// scanning the full bucket. Intended for occasional status queries, not a
// hot path.
func (l *Log) CountByClass() (map[int]int, error) {
	counts := make(map[int]int)
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCompleted).ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			counts[entry.ClassID]++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func encodeEntry(entry Entry) ([]byte, error) {
	enc := newGobEncoder()
	return enc.EncodeType(entry)
}

func decodeEntry(blob []byte) (Entry, error) {
	var entry Entry
	dec := newGobDecoder()
	if err := dec.DecodeType(blob, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func init() {
	gob.Register(Entry{})
}
