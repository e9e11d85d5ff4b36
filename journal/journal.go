// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package journal provides an append-only invocation journal backed by
// badger, with replay into a fresh ledger
package journal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/gocarbon/cbor"
	"github.com/blinklabs-io/gocarbon/ledger"
	"github.com/dgraph-io/badger/v2"
)

var (
	ErrOutOfOrder = errors.New("journal: sequence number out of order")
	ErrClosed     = errors.New("journal: closed")
)

var entryKeyPrefix = []byte("entry/")

// Entry is a single applied invocation and its receipt
type Entry struct {
	cbor.StructAsArray
	Seq        uint64
	Invocation ledger.Invocation
	Receipt    ledger.Receipt
}

type Options struct {
	Logger *slog.Logger
	// SyncWrites makes every append durable before it returns
	SyncWrites bool
}

type Journal struct {
	db      *badger.DB
	logger  *slog.Logger
	mu      sync.Mutex
	lastSeq uint64
	empty   bool
	closed  bool
}

// Open opens the journal stored at path. An empty path keeps the journal in
// memory.
func Open(path string, opts Options) (*Journal, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	badgerOpts := badger.DefaultOptions(path).
		WithLogger(&badgerLogger{logger: logger}).
		WithSyncWrites(opts.SyncWrites)
	if path == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := &Journal{
		db:     db,
		logger: logger,
		empty:  true,
	}
	if err := j.loadLastSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug(
		"journal opened",
		"component", "journal",
		"path", path,
		"empty", j.empty,
		"last_seq", j.lastSeq,
	)
	return j, nil
}

func entryKey(seq uint64) []byte {
	key := make([]byte, len(entryKeyPrefix)+8)
	copy(key, entryKeyPrefix)
	binary.BigEndian.PutUint64(key[len(entryKeyPrefix):], seq)
	return key
}

func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(entryKeyPrefix):])
}

func (j *Journal) loadLastSeq() error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		// A reverse seek lands on the largest key not above the seek key
		seekKey := append(bytes.Clone(entryKeyPrefix), bytes.Repeat([]byte{0xff}, 8)...)
		it.Seek(seekKey)
		if it.ValidForPrefix(entryKeyPrefix) {
			j.lastSeq = seqFromKey(it.Item().Key())
			j.empty = false
		}
		return nil
	})
}

// LastSeq returns the sequence number of the newest entry. The second
// return value is false when the journal is empty.
func (j *Journal) LastSeq() (uint64, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq, !j.empty
}

// NextSeq returns the smallest sequence number Append will accept
func (j *Journal) NextSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.empty {
		return 0
	}
	return j.lastSeq + 1
}

// Append stores an entry. Sequence numbers must be strictly increasing but
// may have gaps.
func (j *Journal) Append(entry Entry) error {
	data, err := cbor.Encode(&entry)
	if err != nil {
		return fmt.Errorf("encode journal entry %d: %w", entry.Seq, err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	if !j.empty && entry.Seq <= j.lastSeq {
		return fmt.Errorf("%w: got %d after %d", ErrOutOfOrder, entry.Seq, j.lastSeq)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(entry.Seq), data)
	})
	if err != nil {
		return fmt.Errorf("append journal entry %d: %w", entry.Seq, err)
	}
	j.lastSeq = entry.Seq
	j.empty = false
	return nil
}

// Iterate calls fn for every entry with a sequence number of at least from,
// in order. Iteration stops at the first error returned by fn.
func (j *Journal) Iterate(from uint64, fn func(Entry) error) error {
	return j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(entryKey(from)); it.ValidForPrefix(entryKeyPrefix); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var entry Entry
			if _, err := cbor.Decode(data, &entry); err != nil {
				return fmt.Errorf("decode journal entry %d: %w", seqFromKey(item.Key()), err)
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

// badgerLogger routes badger's log output through slog
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
