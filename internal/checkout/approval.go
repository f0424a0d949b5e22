package checkout

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// Decision kinds.
const (
	KindItem = "item"
	KindBulk = "bulk"
)

// CartSyncer mirrors request decisions onto the owning cart.
type CartSyncer interface {
	SyncFromRequest(ctx context.Context, req Request) (bool, error)
}

// Notifier receives an event for every successful admin decision.
type Notifier interface {
	Notify(ctx context.Context, ev DecisionEvent) error
}

// Recorder counts admin decisions.
type Recorder interface {
	RecordDecision(ctx context.Context, kind, outcome string, items int) error
}

// DecisionEvent describes one admin decision on a request.
type DecisionEvent struct {
	RequestID          ID        `json:"requestId"`
	UserID             ID        `json:"userId"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	Kind               string    `json:"kind"`
	BookID             ID        `json:"bookId,omitempty"`
	BookTitle          string    `json:"bookTitle,omitempty"`
	Outcome            Status    `json:"outcome"`
	RequestStatus      Status    `json:"requestStatus"`
	Note               string    `json:"note,omitempty"`
	ItemsDecided       int       `json:"itemsDecided"`
	DecidedAt          time.Time `json:"decidedAt"`
}

// Decision is the result of an admin action. The action succeeded once the
// request was stored; CartSynced and SyncErr report the follow-up cart sync
// separately.
type Decision struct {
	Request    Request
	CartSynced bool
	SyncErr    error
}

// Engine applies admin decisions to checkout requests.
type Engine struct {
	requests *store.Collection[Request]
	carts    CartSyncer

	// Notifier and Recorder are optional.
	Notifier Notifier
	Recorder Recorder

	nowFunc func() time.Time
}

// NewEngine returns an Engine writing to requests and syncing through carts.
func NewEngine(requests *store.Collection[Request], carts CartSyncer) *Engine {
	return &Engine{
		requests: requests,
		carts:    carts,
		nowFunc:  time.Now,
	}
}

// ApproveItem approves one pending book of a request.
func (e *Engine) ApproveItem(ctx context.Context, requestID, bookID ID, note string) (Decision, error) {
	return e.decideItem(ctx, requestID, bookID, StatusApproved, note)
}

// RejectItem rejects one pending book of a request.
func (e *Engine) RejectItem(ctx context.Context, requestID, bookID ID, note string) (Decision, error) {
	return e.decideItem(ctx, requestID, bookID, StatusRejected, note)
}

// ApproveAll approves every still-pending book and marks the request approved.
func (e *Engine) ApproveAll(ctx context.Context, requestID ID, note string) (Decision, error) {
	return e.decideAll(ctx, requestID, StatusApproved, note)
}

// RejectAll rejects every still-pending book and marks the request rejected.
func (e *Engine) RejectAll(ctx context.Context, requestID ID, note string) (Decision, error) {
	return e.decideAll(ctx, requestID, StatusRejected, note)
}

func (e *Engine) decideItem(ctx context.Context, requestID, bookID ID, outcome Status, note string) (Decision, error) {
	var updated Request
	var ev DecisionEvent

	err := e.requests.Update(ctx, func(rs []Request) ([]Request, error) {
		i := indexOfRequest(rs, requestID)
		if i < 0 {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		req := &rs[i]
		j := req.indexOf(bookID)
		if j < 0 {
			return nil, fmt.Errorf("%w: book %s in request %s", ErrNotFound, bookID, requestID)
		}
		book := &req.Books[j]
		if book.Status.IsDecided() {
			return nil, fmt.Errorf("%w: book %s is already %s", ErrInvalidState, bookID, book.Status)
		}

		now := e.nowFunc().UTC()
		book.Status = outcome
		book.AdminNote = note
		book.ProcessedAt = now
		req.Status = Aggregate(req.Books)
		req.UpdatedAt = now
		if req.Status != StatusPending && req.Status != StatusPartiallyApproved {
			req.ProcessedAt = now
		}

		updated = req.clone()
		ev = DecisionEvent{
			Kind:         KindItem,
			BookID:       bookID,
			BookTitle:    book.Title,
			Outcome:      outcome,
			Note:         note,
			ItemsDecided: 1,
			DecidedAt:    now,
		}
		return rs, nil
	})
	if err != nil {
		return Decision{}, err
	}
	return e.settle(ctx, updated, ev), nil
}

func (e *Engine) decideAll(ctx context.Context, requestID ID, outcome Status, note string) (Decision, error) {
	var updated Request
	var ev DecisionEvent

	err := e.requests.Update(ctx, func(rs []Request) ([]Request, error) {
		i := indexOfRequest(rs, requestID)
		if i < 0 {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		req := &rs[i]

		now := e.nowFunc().UTC()
		decided := 0
		for j := range req.Books {
			if req.Books[j].Status.IsDecided() {
				continue
			}
			req.Books[j].Status = outcome
			req.Books[j].AdminNote = note
			req.Books[j].ProcessedAt = now
			decided++
		}
		// A bulk decision is authoritative over the derived status.
		req.Status = outcome
		req.AdminNotes = note
		req.ProcessedAt = now
		req.UpdatedAt = now

		updated = req.clone()
		ev = DecisionEvent{
			Kind:         KindBulk,
			Outcome:      outcome,
			Note:         note,
			ItemsDecided: decided,
			DecidedAt:    now,
		}
		return rs, nil
	})
	if err != nil {
		return Decision{}, err
	}
	return e.settle(ctx, updated, ev), nil
}

// settle runs the best-effort follow-ups of a stored decision: cart sync,
// notification and metrics. None of them can fail the decision.
func (e *Engine) settle(ctx context.Context, req Request, ev DecisionEvent) Decision {
	fields := log.Fields{"requestId": req.ID, "userId": req.UserID, "kind": ev.Kind}

	d := Decision{Request: req}
	d.CartSynced, d.SyncErr = e.carts.SyncFromRequest(ctx, req)
	if d.SyncErr != nil {
		log.WithFields(fields).WithField("err", d.SyncErr).Error("cart sync after decision failed")
	}

	ev.RequestID = req.ID
	ev.UserID = req.UserID
	ev.RegistrationNumber = req.RegistrationNumber
	ev.RequestStatus = req.Status

	if e.Notifier != nil {
		if err := e.Notifier.Notify(ctx, ev); err != nil {
			log.WithFields(fields).WithField("err", err).Warn("decision notification failed")
		}
	}
	if e.Recorder != nil {
		if err := e.Recorder.RecordDecision(ctx, ev.Kind, string(ev.Outcome), ev.ItemsDecided); err != nil {
			log.WithFields(fields).WithField("err", err).Warn("decision metric failed")
		}
	}
	return d
}
