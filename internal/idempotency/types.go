package idempotency

import (
	"context"
	"errors"
	"time"
)

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// CollectionName is the record store collection used by CollectionStore.
const CollectionName = "idempotency"

// ErrRecordNotFound is returned when marking a key that was never created.
var ErrRecordNotFound = errors.New("idempotency record not found")

// Record is the persisted state of one idempotency key.
type Record struct {
	Key            string    `json:"key" dynamodbav:"idempotency_key"` // PK
	Status         string    `json:"status" dynamodbav:"status"`
	ResponseBody   string    `json:"responseBody,omitempty" dynamodbav:"response_body,omitempty"` // small responses only
	ResponseStatus int       `json:"responseStatus,omitempty" dynamodbav:"response_status,omitempty"`
	Note           string    `json:"note,omitempty" dynamodbav:"note,omitempty"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
	ExpiresAt      int64     `json:"expiresAt" dynamodbav:"expires_at"` // TTL epoch seconds
}

// Expired reports whether the record's TTL has passed at now.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt > 0 && now.Unix() >= r.ExpiresAt
}

// Store tracks idempotency keys.
//
// CreateIfNotExists claims key and reports true when the caller should run the
// operation: the key is new, expired, or its previous attempt failed. It
// reports false when a live record already exists; callers then Get it.
// Get returns nil for an unknown or expired key.
type Store interface {
	CreateIfNotExists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (*Record, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}
