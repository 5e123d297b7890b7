// Package seqstore implements the durable per-session sequence-number
// store (C4): an embedded BadgerDB LSM key-value store holding each
// session's (next_sent_seq, next_recv_seq, uuid) tuple. Records are written
// by Put and ResetSequenceNumber; the session and framer packages do not
// write a record as messages are sent or accepted, so a stored record only
// changes through those calls.
package seqstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrRefusedWhileConnected is returned by ResetSessionIDs/ResetSequenceNumber
// when the caller reports the session is still connected, matching
// spec.md §7's "Engine should be closed before the state is reset"
// administrative-refused error kind.
var ErrRefusedWhileConnected = errors.New("seqstore: refused: session must be disconnected before its state is reset")

const keyPrefix = "seq:"

// Record is the durable per-session sequence state (spec.md §3: Session
// holds next_sent_seq, next_recv_seq, and uuid).
type Record struct {
	NextSentSeq uint64 `json:"next_sent_seq"`
	NextRecvSeq uint64 `json:"next_recv_seq"`
	UUID        uint64 `json:"uuid,omitempty"`
}

// Store is a BadgerDB-backed sequence store, one row per session_id.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a BadgerDB at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // the teacher's badger store also silences badger's own logger in favor of internal/logger
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("seqstore: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying BadgerDB.
func (s *Store) Close() error { return s.db.Close() }

func key(sessionID uint64) []byte {
	return []byte(keyPrefix + strconv.FormatUint(sessionID, 10))
}

// Get reads the persisted Record for sessionID. ok is false if none exists
// yet (a brand-new session).
func (s *Store) Get(sessionID uint64) (rec Record, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key(sessionID))
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, ok, err
}

// Put persists rec for sessionID, overwriting any prior value, in a single
// transaction with no read-modify-write round trip.
func (s *Store) Put(sessionID uint64, rec Record) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(sessionID), buf)
	})
}

// ResetSessionIDs deletes the persisted tuple for sessionID, refusing if
// connected is true (spec.md §7's administrative-refused precondition).
func (s *Store) ResetSessionIDs(sessionID uint64, connected bool) error {
	if connected {
		return ErrRefusedWhileConnected
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(sessionID))
	})
}

// ResetSequenceNumber overwrites only the sequence counters for sessionID,
// preserving uuid, refusing if connected is true.
func (s *Store) ResetSequenceNumber(sessionID uint64, nextSentSeq, nextRecvSeq uint64, connected bool) error {
	if connected {
		return ErrRefusedWhileConnected
	}
	rec, ok, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if !ok {
		rec = Record{}
	}
	rec.NextSentSeq = nextSentSeq
	rec.NextRecvSeq = nextRecvSeq
	return s.Put(sessionID, rec)
}

// Backup streams a full BadgerDB backup to w. Its caller is the Framer's
// pruneArchive operation, which hands the stream to an Archiver
// (pkg/archive uploads it to S3); nothing writes a backup to a local path.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	return s.db.Backup(w, 0)
}

// sessionIDFromKey parses the session_id suffix back out of a store key,
// used by tests and diagnostic tooling.
func sessionIDFromKey(k string) (uint64, bool) {
	if !strings.HasPrefix(k, keyPrefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(k, keyPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
