// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

// Package store keeps generated fixture documents in a bbolt database.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	// Bucket names
	runsBucket      = []byte("runs")
	documentsBucket = []byte("documents")
)

// ErrRunNotFound is returned when a run id is not stored.
var ErrRunNotFound = errors.New("run not found")

// Run describes one stored generation pass.
type Run struct {
	Created time.Time `json:"created"`
	Seed    *uint64   `json:"seed,omitempty"`
	ID      string    `json:"id"`
	Schema  string    `json:"schema"`
	Format  string    `json:"format"`
	Count   int       `json:"count"`
	Stored  int       `json:"stored"`
	Bytes   int64     `json:"bytes"`
}

// Entry is one encoded document of a run.
type Entry struct {
	Data  []byte
	Index int
}

// Store manages runs and documents using bbolt
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens or creates store database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(runsBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns database file path.
func (s *Store) Path() string {
	return s.path
}

// CreateRun stores run metadata, assigning id and creation time when missing.
func (s *Store) CreateRun(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	if run.Created.IsZero() {
		run.Created = time.Now().UTC()
	}

	if err := s.putRun(run); err != nil {
		return Run{}, err
	}

	return run, nil
}

// CompleteRun records number and total encoded size of documents stored for run.
func (s *Store) CompleteRun(id string, stored int, size int64) error {
	run, err := s.Run(id)
	if err != nil {
		return err
	}

	run.Stored = stored
	run.Bytes = size
	return s.putRun(run)
}

func (s *Store) putRun(run Run) error {
	data, err := gojson.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).Put([]byte(run.ID), data)
	})
}

// Run returns metadata of one run.
func (s *Store) Run(id string) (Run, error) {
	var run Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(runsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}

		return gojson.Unmarshal(data, &run)
	})

	return run, err
}

// Runs returns all runs ordered by creation time.
func (s *Store) Runs() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(key, value []byte) error {
			var run Run
			if err := gojson.Unmarshal(value, &run); err != nil {
				return fmt.Errorf("decode run %s: %w", key, err)
			}

			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Created.Before(runs[j].Created)
	})

	return runs, nil
}

// PutDocuments stores a batch of encoded documents of run in one transaction.
func (s *Store) PutDocuments(runID string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(documentsBucket).CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return fmt.Errorf("create run bucket %s: %w", runID, err)
		}

		for _, entry := range entries {
			if err := bucket.Put(indexKey(entry.Index), entry.Data); err != nil {
				return fmt.Errorf("put document %d: %w", entry.Index, err)
			}
		}

		return nil
	})
}

// Documents calls fn for every stored document of run in index order.
// Data passed to fn is only valid during the call.
func (s *Store) Documents(runID string, fn func(entry Entry) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(runsBucket).Get([]byte(runID)) == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		bucket := tx.Bucket(documentsBucket).Bucket([]byte(runID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(key, value []byte) error {
			return fn(Entry{Index: int(binary.BigEndian.Uint64(key)), Data: value})
		})
	})
}

// indexKey encodes index so byte order matches numeric order.
func indexKey(index int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(index))
	return key
}
