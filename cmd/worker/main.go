package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/aws"
	"github.com/imrishuroy/go-library-checkout/internal/config"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

func main() {
	cfg := config.MustParse()
	config.InitLog(cfg.Log)
	ctx := context.Background()

	var clients *aws.AWSClients
	if cfg.Store.Backend == config.BackendDynamoDB {
		var err error
		if clients, err = aws.NewAWSClients(ctx); err != nil {
			log.WithField("err", err).Fatal("failed to init aws clients")
		}
	}
	backend, err := config.OpenBackend(ctx, cfg.Store, clients)
	if err != nil {
		log.WithField("err", err).Fatal("failed to open store backend")
	}
	defer backend.Close()

	p := NewProcessor(notifications.NewService(
		store.NewCollection[notifications.Notification](backend.Store, notifications.CollectionName)))

	// If RUN_LOCAL=true, process a single simulated SQS event for local testing.
	if cfg.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"requestId":"local-request-1","userId":"local-user","kind":"bulk","outcome":"approved","requestStatus":"approved","itemsDecided":1}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		resp, err := p.Handle(ctx, event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.WithFields(log.Fields{"err": err, "failures": len(resp.BatchItemFailures)}).Fatal("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
