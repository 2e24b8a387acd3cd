package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/repository"
)

type fakeBlob struct {
	data map[string][]byte
	sets int
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{data: map[string][]byte{}}
}

func (f *fakeBlob) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := f.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return raw, nil
}

func (f *fakeBlob) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = append([]byte(nil), value...)
	f.sets++
	return nil
}

func (f *fakeBlob) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func newStoreForTest(t *testing.T) *repository.Store {
	t.Helper()
	store := repository.NewStore(newFakeBlob(), 200, "2025-08-28", nil)
	require.NoError(t, store.Load(context.Background()))
	return store
}
