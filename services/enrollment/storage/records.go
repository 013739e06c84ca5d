// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// ErrNotFound indicates no record exists for the requested ID.
var ErrNotFound = errors.New("record not found")

// recordPrefix namespaces record keys within the database.
const recordPrefix = "record:"

// RecordStore is the persistent store for enrollment records.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB transactions provide isolation.
// There is no cross-client conflict resolution: the tool is single-user
// and the last write wins.
type RecordStore struct {
	db *badger.DB
}

// NewRecordStore opens a record store with the given configuration.
// Caller must call Close when done.
func NewRecordStore(cfg Config) (*RecordStore, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	return &RecordStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

// Put writes a record under its ID, creating or overwriting.
func (s *RecordStore) Put(ctx context.Context, rec datatypes.PolicyRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if rec.ID == "" {
		return errors.New("record has no ID")
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), value)
	})
	if err != nil {
		return fmt.Errorf("write record %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads one record by ID. Returns ErrNotFound for a missing ID.
func (s *RecordStore) Get(ctx context.Context, id string) (datatypes.PolicyRecord, error) {
	if err := ctx.Err(); err != nil {
		return datatypes.PolicyRecord{}, fmt.Errorf("context cancelled: %w", err)
	}
	var rec datatypes.PolicyRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return datatypes.PolicyRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return datatypes.PolicyRecord{}, fmt.Errorf("read record %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes one record by ID. Returns ErrNotFound for a missing ID.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(recordKey(id))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// List loads every record, newest first (CreatedAt descending, ID as a
// tiebreaker so the order is stable).
func (s *RecordStore) List(ctx context.Context) ([]datatypes.PolicyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	records := make([]datatypes.PolicyRecord, 0, 64)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec datatypes.PolicyRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// Count returns the number of stored records without decoding values.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// ReplaceAll deletes every stored record and writes the given list in its
// place. This is the whole-list replace-on-save operation used by bulk
// import.
func (s *RecordStore) ReplaceAll(ctx context.Context, records []datatypes.PolicyRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	for i := range records {
		if records[i].ID == "" {
			return fmt.Errorf("record %d has no ID", i)
		}
	}

	// Badger caps transaction size, so a very large import cannot be one
	// atomic txn. Collect keys first, then delete and rewrite through a
	// WriteBatch, which flushes in valid chunks.
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan existing records: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete stale record: %w", err)
		}
	}
	for i := range records {
		value, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", records[i].ID, err)
		}
		if err := wb.Set(recordKey(records[i].ID), value); err != nil {
			return fmt.Errorf("write record %s: %w", records[i].ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush import batch: %w", err)
	}
	return nil
}
