package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
)

// FromDecision builds the patron-facing notification for a decision.
func FromDecision(ev checkout.DecisionEvent) Notification {
	n := Notification{
		UserID:             ev.UserID,
		RegistrationNumber: ev.RegistrationNumber,
		RequestID:          ev.RequestID,
		BookID:             ev.BookID,
		CreatedAt:          ev.DecidedAt,
	}

	if ev.Kind == checkout.KindItem {
		title := ev.BookTitle
		if title == "" {
			title = "book " + string(ev.BookID)
		}
		if ev.Outcome == checkout.StatusApproved {
			n.Type = TypeBookApproved
			n.Message = fmt.Sprintf("Your request for %q was approved.", title)
		} else {
			n.Type = TypeBookRejected
			n.Message = fmt.Sprintf("Your request for %q was rejected.", title)
		}
	} else {
		if ev.Outcome == checkout.StatusApproved {
			n.Type = TypeRequestApproved
			n.Message = "Your checkout request was approved."
		} else {
			n.Type = TypeRequestRejected
			n.Message = "Your checkout request was rejected."
		}
	}
	if ev.Note != "" {
		n.Message += " Note: " + ev.Note
	}
	return n
}

// DirectNotifier stores decision notifications in-process.
type DirectNotifier struct {
	Service *Service
}

// Notify implements checkout.Notifier.
func (d DirectNotifier) Notify(ctx context.Context, ev checkout.DecisionEvent) error {
	_, err := d.Service.Create(ctx, FromDecision(ev))
	return err
}

// Publisher sends a message body with string attributes to a queue.
type Publisher interface {
	SendMessage(ctx context.Context, body string, attributes map[string]string) error
}

// QueueNotifier publishes decision events for the worker to store.
type QueueNotifier struct {
	Publisher Publisher
}

// Notify implements checkout.Notifier.
func (q QueueNotifier) Notify(ctx context.Context, ev checkout.DecisionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}
	return q.Publisher.SendMessage(ctx, string(body), map[string]string{
		"request_id": string(ev.RequestID),
		"user_id":    string(ev.UserID),
		"kind":       ev.Kind,
	})
}
