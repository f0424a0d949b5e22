package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// Service manages the notification collection.
type Service struct {
	notifications *store.Collection[Notification]
	nowFunc       func() time.Time
}

// NewService returns a Service over notifications.
func NewService(notifications *store.Collection[Notification]) *Service {
	return &Service{notifications: notifications, nowFunc: time.Now}
}

// List returns every notification, newest first.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	ns, err := s.notifications.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
	return ns, nil
}

// Create stores n at the head of the collection. A caller-supplied id that is
// already stored returns the existing notification without writing, so
// redelivered events are recorded once.
func (s *Service) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.Message == "" {
		return Notification{}, fmt.Errorf("%w: message is required", checkout.ErrValidation)
	}
	if n.ID == "" {
		n.ID = checkout.ID(uuid.Must(uuid.NewV7()).String())
	}
	if n.Type == "" {
		n.Type = TypeGeneral
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.nowFunc().UTC()
	}
	n.Read = false

	out := n
	err := s.notifications.Update(ctx, func(ns []Notification) ([]Notification, error) {
		if i := indexOf(ns, n.ID); i >= 0 {
			out = ns[i]
			return nil, errDuplicate
		}
		return append([]Notification{n}, ns...), nil
	})
	if errors.Is(err, errDuplicate) {
		return out, nil
	} else if err != nil {
		return Notification{}, err
	}
	return out, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id checkout.ID) (Notification, error) {
	var out Notification
	err := s.notifications.Update(ctx, func(ns []Notification) ([]Notification, error) {
		i := indexOf(ns, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: notification %s", checkout.ErrNotFound, id)
		}
		ns[i].Read = true
		out = ns[i]
		return ns, nil
	})
	if err != nil {
		return Notification{}, err
	}
	return out, nil
}

var errDuplicate = errors.New("notification already stored")

func indexOf(ns []Notification, id checkout.ID) int {
	for i := range ns {
		if ns[i].ID == id {
			return i
		}
	}
	return -1
}
