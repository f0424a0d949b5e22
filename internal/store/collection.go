package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Collection is a typed view of one named collection within a Store.
//
// Update cycles are serialized by a mutex, so concurrent writers within the
// process never rebuild the collection from a stale snapshot. Callers must
// share a single Collection per name for that guarantee to hold.
type Collection[T any] struct {
	name  string
	store Store

	mu    sync.Mutex
	loads singleflight.Group
}

// NewCollection returns a Collection of records of type T stored under name.
func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{name: name, store: s}
}

// Name of the collection.
func (c *Collection[T]) Name() string { return c.name }

// All returns every record of the collection in stored order. A missing or
// unparsable collection reads as empty. Concurrent callers share one backend
// read but each decodes its own copy of the records. The shared read is not
// cancelled by the caller which started it.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	var shared = context.WithoutCancel(ctx)
	var ch = c.loads.DoChan(c.name, func() (interface{}, error) {
		return c.load(shared)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return c.tolerantDecode(res.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Latest reads the collection under the update lock, so the result reflects
// every Update that completed before the call.
func (c *Collection[T]) Latest(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.tolerantDecode(data), nil
}

// Update loads the collection, applies fn, and saves the result. If fn returns
// an error the collection is left untouched and the error is returned as-is.
// An unparsable collection is never overwritten; Update fails with a
// StorageError instead.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.load(ctx)
	if err != nil {
		return err
	}
	records, err := c.decode(data)
	if err != nil {
		return &StorageError{Op: "decode", Collection: c.name, Err: err}
	}
	out, err := fn(records)
	if err != nil {
		return err
	}
	if out == nil {
		out = []T{}
	}

	enc, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Collection: c.name, Err: err}
	}
	if err = c.store.Save(ctx, c.name, enc); err != nil {
		return &StorageError{Op: "save", Collection: c.name, Err: err}
	}
	return nil
}

func (c *Collection[T]) load(ctx context.Context) ([]byte, error) {
	var data, err = c.store.Load(ctx, c.name)
	if errors.Is(err, ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, &StorageError{Op: "load", Collection: c.name, Err: err}
	}
	return data, nil
}

func (c *Collection[T]) decode(data []byte) ([]T, error) {
	var records []T
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WithMessage(err, "unparsable collection")
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) tolerantDecode(data []byte) []T {
	records, err := c.decode(data)
	if err != nil {
		log.WithFields(log.Fields{
			"collection": c.name,
			"err":        err,
		}).Warn("unparsable collection treated as empty")
		return []T{}
	}
	return records
}
