package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
)

// Processor turns queued decision events into stored notifications.
type Processor struct {
	notifications *notifications.Service
}

// NewProcessor returns a Processor writing through svc.
func NewProcessor(svc *notifications.Service) *Processor {
	return &Processor{notifications: svc}
}

// Handle processes an SQS batch. Failed messages are reported individually so
// only they are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.WithFields(log.Fields{"messageId": rec.MessageId, "err": err}).Error("worker error")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev checkout.DecisionEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if ev.RequestID == "" || ev.UserID == "" {
		return fmt.Errorf("decision event without request or user: %s", rec.Body)
	}

	n := notifications.FromDecision(ev)
	// A redelivered message carries the same id and is stored once.
	if rec.MessageId != "" {
		n.ID = checkout.ID("sqs-" + rec.MessageId)
	}
	stored, err := p.notifications.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	log.WithFields(log.Fields{
		"requestId":      ev.RequestID,
		"userId":         ev.UserID,
		"kind":           ev.Kind,
		"notificationId": stored.ID,
	}).Info("stored decision notification")
	return nil
}
