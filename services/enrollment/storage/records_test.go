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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id string, createdAt int64) datatypes.PolicyRecord {
	return datatypes.PolicyRecord{
		ID:            id,
		PolicyNumber:  "POL-" + id,
		CustomerName:  "Customer " + id,
		MobileNumber:  "9876543210",
		Partner:       "Sterling Finance",
		Product:       "Suraksha Shield",
		PremiumAmount: "299",
		Tenure:        "1 Year",
		CSEName:       "Anita Deshmukh",
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestRecordStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("a1", 100)
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	t.Run("overwrite wins", func(t *testing.T) {
		rec.CustomerName = "Renamed"
		require.NoError(t, store.Put(ctx, rec))
		got, err := store.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.CustomerName)
	})

	t.Run("missing ID rejected", func(t *testing.T) {
		assert.Error(t, store.Put(ctx, datatypes.PolicyRecord{}))
	})

	t.Run("unknown ID is ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestRecordStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord("a1", 100)))
	require.NoError(t, store.Delete(ctx, "a1"))

	_, err := store.Get(ctx, "a1")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.Delete(ctx, "a1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord("old", 100)))
	require.NoError(t, store.Put(ctx, testRecord("mid", 200)))
	require.NoError(t, store.Put(ctx, testRecord("new", 300)))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "mid", records[1].ID)
	assert.Equal(t, "old", records[2].ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRecordStore_ReplaceAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(ctx, testRecord(fmt.Sprintf("old-%d", i), int64(i))))
	}

	replacement := []datatypes.PolicyRecord{
		testRecord("new-1", 500),
		testRecord("new-2", 600),
	}
	require.NoError(t, store.ReplaceAll(ctx, replacement))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new-2", records[0].ID)
	assert.Equal(t, "new-1", records[1].ID)

	t.Run("empty list clears the store", func(t *testing.T) {
		require.NoError(t, store.ReplaceAll(ctx, nil))
		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("record without ID rejected", func(t *testing.T) {
		err := store.ReplaceAll(ctx, []datatypes.PolicyRecord{{}})
		assert.Error(t, err)
	})
}

func TestRecordStore_ContextCancelled(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Put(ctx, testRecord("a1", 1)))
	_, err := store.Get(ctx, "a1")
	assert.Error(t, err)
	_, err = store.List(ctx)
	assert.Error(t, err)
}
