package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/aws"
	"github.com/imrishuroy/go-library-checkout/internal/catalog"
	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/config"
	"github.com/imrishuroy/go-library-checkout/internal/handlers"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// buildServices opens the configured backend and wires every service over
// it. Each collection is opened once so its writers share one lock.
func buildServices(ctx context.Context, cfg config.Config) (handlers.Services, func(), error) {
	var clients *aws.AWSClients
	if cfg.NeedsAWS() {
		var err error
		if clients, err = aws.NewAWSClients(ctx); err != nil {
			return handlers.Services{}, nil, fmt.Errorf("init aws clients: %w", err)
		}
	}

	backend, err := config.OpenBackend(ctx, cfg.Store, clients)
	if err != nil {
		return handlers.Services{}, nil, err
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			log.WithField("err", err).Warn("closing store backend")
		}
	}

	requestsCol := store.NewCollection[checkout.Request](backend.Store, checkout.RequestsCollection)
	cartsCol := store.NewCollection[checkout.Cart](backend.Store, checkout.CartsCollection)

	requests := checkout.NewRequestService(requestsCol)
	carts := checkout.NewCartService(cartsCol, requests)
	notes := notifications.NewService(
		store.NewCollection[notifications.Notification](backend.Store, notifications.CollectionName))

	engine := checkout.NewEngine(requestsCol, carts)
	if cfg.Notifications.QueueURL != "" {
		engine.Notifier = notifications.QueueNotifier{Publisher: aws.NewPublisher(clients.SQS, cfg.Notifications.QueueURL)}
	} else {
		engine.Notifier = notifications.DirectNotifier{Service: notes}
	}
	if cfg.Metrics.Enabled {
		engine.Recorder = aws.NewMetricsRecorder(clients.CloudWatch, cfg.Metrics.Namespace)
	}

	return handlers.Services{
		Carts:         carts,
		Requests:      requests,
		Engine:        engine,
		Catalog:       catalog.NewService(store.NewCollection[catalog.Book](backend.Store, catalog.CollectionName)),
		Notifications: notes,
		Idempotency:   config.NewIdempotencyStore(cfg, backend, clients),
	}, closeFn, nil
}
