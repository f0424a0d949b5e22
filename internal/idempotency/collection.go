package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// CollectionStore keeps idempotency records in a record store collection.
// Expired records are pruned whenever a key is claimed.
type CollectionStore struct {
	records   *store.Collection[Record]
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewCollectionStore returns a CollectionStore over records.
func NewCollectionStore(records *store.Collection[Record], ttlWindow time.Duration) *CollectionStore {
	return &CollectionStore{records: records, ttlWindow: ttlWindow, nowFunc: time.Now}
}

// CreateIfNotExists implements Store.
func (s *CollectionStore) CreateIfNotExists(ctx context.Context, key string) (bool, error) {
	var created bool
	err := s.records.Update(ctx, func(rs []Record) ([]Record, error) {
		now := s.nowFunc().UTC()
		live := rs[:0]
		for _, r := range rs {
			if !r.Expired(now) {
				live = append(live, r)
			}
		}

		rec := Record{
			Key:       key,
			Status:    StatusInProgress,
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(s.ttlWindow).Unix(),
		}
		if i := indexOf(live, key); i < 0 {
			live = append(live, rec)
		} else if live[i].Status == StatusFailed {
			live[i] = rec
		} else {
			return live, nil
		}
		created = true
		return live, nil
	})
	if err != nil {
		return false, fmt.Errorf("claim key: %w", err)
	}
	return created, nil
}

// Get implements Store.
func (s *CollectionStore) Get(ctx context.Context, key string) (*Record, error) {
	rs, err := s.records.All(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(rs, key)
	if i < 0 || rs[i].Expired(s.nowFunc()) {
		return nil, nil
	}
	return &rs[i], nil
}

// MarkDone implements Store.
func (s *CollectionStore) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	return s.mark(ctx, key, func(r *Record) {
		r.Status = StatusDone
		r.ResponseBody = responseBody
		r.ResponseStatus = responseStatus
	})
}

// MarkFailed implements Store.
func (s *CollectionStore) MarkFailed(ctx context.Context, key, note string) error {
	return s.mark(ctx, key, func(r *Record) {
		r.Status = StatusFailed
		r.Note = note
	})
}

func (s *CollectionStore) mark(ctx context.Context, key string, fn func(*Record)) error {
	return s.records.Update(ctx, func(rs []Record) ([]Record, error) {
		i := indexOf(rs, key)
		if i < 0 {
			return nil, fmt.Errorf("%s: %w", key, ErrRecordNotFound)
		}
		fn(&rs[i])
		rs[i].UpdatedAt = s.nowFunc().UTC()
		return rs, nil
	})
}

func indexOf(rs []Record, key string) int {
	for i := range rs {
		if rs[i].Key == key {
			return i
		}
	}
	return -1
}
