package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// RequestService owns the append-only collection of checkout requests.
type RequestService struct {
	requests *store.Collection[Request]
	nowFunc  func() time.Time
	newID    func() ID
}

// NewRequestService returns a RequestService over the requests collection.
func NewRequestService(requests *store.Collection[Request]) *RequestService {
	return &RequestService{
		requests: requests,
		nowFunc:  time.Now,
		newID:    newRequestID,
	}
}

// newRequestID returns a UUIDv7: unique, and ordered by creation time.
func newRequestID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}

// Create appends a pending request holding its own copy of items.
func (s *RequestService) Create(ctx context.Context, userID ID, registrationNumber string, items []Item) (Request, error) {
	if userID == "" || registrationNumber == "" || len(items) == 0 {
		return Request{}, fmt.Errorf("%w: request needs a user, a registration number and at least one book", ErrValidation)
	}
	now := s.nowFunc().UTC()
	req := Request{
		ID:                 s.newID(),
		UserID:             userID,
		RegistrationNumber: registrationNumber,
		Books:              cloneItems(items),
		Status:             StatusPending,
		CheckoutDate:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.requests.Update(ctx, func(rs []Request) ([]Request, error) {
		return append(rs, req.clone()), nil
	})
	if err != nil {
		return Request{}, fmt.Errorf("append request: %w", err)
	}
	return req, nil
}

// List returns every request in stored order.
func (s *RequestService) List(ctx context.Context) ([]Request, error) {
	return s.requests.All(ctx)
}

// ListForUser returns the requests of one user, newest first.
func (s *RequestService) ListForUser(ctx context.Context, userID ID) ([]Request, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0)
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out, nil
}

// Get returns the request with the given canonical id.
func (s *RequestService) Get(ctx context.Context, requestID ID) (Request, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return Request{}, err
	}
	if i := indexOfRequest(all, requestID); i >= 0 {
		return all[i], nil
	}
	return Request{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
}

// latest is Get without read sharing; it sees every completed decision.
func (s *RequestService) latest(ctx context.Context, requestID ID) (Request, bool, error) {
	all, err := s.requests.Latest(ctx)
	if err != nil {
		return Request{}, false, err
	}
	if i := indexOfRequest(all, requestID); i >= 0 {
		return all[i], true, nil
	}
	return Request{}, false, nil
}

func indexOfRequest(rs []Request, requestID ID) int {
	for i := range rs {
		if rs[i].ID == requestID {
			return i
		}
	}
	return -1
}

// newer orders requests by creation time, then by id.
func newer(a, b Request) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
