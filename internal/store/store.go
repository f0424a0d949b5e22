// Package store persists named collections of records as whole JSON documents.
// A collection is loaded, transformed, and written back in full; backends only
// need to move opaque blobs.
package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Store is the persistence capability shared by every service.
type Store interface {
	// Load returns the encoded collection, or ErrNotExist if it was never saved.
	Load(ctx context.Context, collection string) ([]byte, error)
	// Save replaces the encoded collection.
	Save(ctx context.Context, collection string, data []byte) error
}

var (
	// ErrNotExist is returned by Load for a collection which has no stored document.
	ErrNotExist = errors.New("collection does not exist")
	// ErrStorage classifies failures of the underlying backend.
	ErrStorage = errors.New("storage failure")
)

// StorageError records a failed backend operation against a collection.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports StorageError as an ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
