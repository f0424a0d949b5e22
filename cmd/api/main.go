package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/config"
	"github.com/imrishuroy/go-library-checkout/internal/handlers"
)

func setupRouter(svc handlers.Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.StandardLogger().Writer()), gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, svc)

	return r
}

func main() {
	cfg := config.MustParse()
	config.InitLog(cfg.Log)

	ctx := context.Background()
	svc, closeFn, err := buildServices(ctx, cfg)
	if err != nil {
		log.WithField("err", err).Fatal("failed to initialize services")
	}
	defer closeFn()

	r := setupRouter(svc)

	if cfg.RunLocal {
		log.WithFields(log.Fields{"addr": cfg.HTTP.Addr, "backend": cfg.Store.Backend}).Info("running local server")
		if err := r.Run(cfg.HTTP.Addr); err != nil {
			log.WithField("err", err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
