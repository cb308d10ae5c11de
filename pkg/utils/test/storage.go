package testutils

import (
	"context"
	"errors"

	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/storage/inmemory"
)

// ErrStorageUnavailable is returned by FailingStorage.
var ErrStorageUnavailable = errors.New("storage unavailable")

// FailingStorage wraps an in-memory store and fails the operations selected
// by its flags.
type FailingStorage struct {
	*inmemory.Driver

	FailPut    bool
	FailRecent bool
}

// NewFailingStorage creates a FailingStorage with no failures enabled.
func NewFailingStorage() *FailingStorage {
	return &FailingStorage{Driver: inmemory.NewDriver()}
}

func (f *FailingStorage) Put(ctx context.Context, steps []string) (*storage.Execution, error) {
	if f.FailPut {
		return nil, ErrStorageUnavailable
	}
	return f.Driver.Put(ctx, steps)
}

func (f *FailingStorage) Recent(ctx context.Context, limit int) ([]*storage.Execution, error) {
	if f.FailRecent {
		return nil, ErrStorageUnavailable
	}
	return f.Driver.Recent(ctx, limit)
}
