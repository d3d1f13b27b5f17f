package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highwaynet/ucc-service/internal/model"
)

type fakeChangeLogStore struct {
	entries []model.ChangeLog

	lastLimit  int
	lastOffset int
}

func (f *fakeChangeLogStore) Insert(_ context.Context, entry *model.ChangeLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeChangeLogStore) ListByUser(_ context.Context, _ int64, _ string, limit, offset int) ([]model.ChangeLog, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	if offset >= len(f.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], nil
}

func (f *fakeChangeLogStore) CountByUser(_ context.Context, _ int64, _ string) (int64, error) {
	return int64(len(f.entries)), nil
}

func TestChangeLogAddValidates(t *testing.T) {
	svc := NewChangeLogService(&fakeChangeLogStore{})

	err := svc.Add(context.Background(), model.Principal{UserID: 7}, "", "UCC", "status", "DRAFT")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Add(context.Background(), model.Principal{UserID: 7}, "N/0207/ABC001/MH", "UCC", "status", "DRAFT")
	assert.NoError(t, err)
}

func TestChangeLogListClampsPage(t *testing.T) {
	store := &fakeChangeLogStore{}
	for i := 0; i < 15; i++ {
		store.entries = append(store.entries, model.ChangeLog{ID: int64(i + 1)})
	}
	svc := NewChangeLogService(store)

	page, err := svc.List(context.Background(), model.Principal{UserID: 7}, "UCC", 99, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(15), page.TotalCount)
	assert.NotEmpty(t, page.Message)
	assert.Len(t, page.Entries, 5)
}

func TestChangeLogListEmpty(t *testing.T) {
	svc := NewChangeLogService(&fakeChangeLogStore{})

	page, err := svc.List(context.Background(), model.Principal{UserID: 7}, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Entries)
	assert.Empty(t, page.Message)
}
