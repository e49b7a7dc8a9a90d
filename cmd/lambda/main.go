package main

import (
	"context"

	"acestudy"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/sirupsen/logrus"
)

var adapter *httpadapter.HandlerAdapterV2

func init() {
	cfg := acestudy.ConfigFromEnv()
	acestudy.SetVerbose(cfg.Verbose)
	acestudy.Log.SetFormatter(&logrus.JSONFormatter{})

	gen := acestudy.NewQuizGeneratorFromConfig(cfg)
	acestudy.Log.Infof("Provider chain: %v", gen.Providers())

	adapter = httpadapter.NewV2(acestudy.APIRouter(gen, cfg.AllowedOrigins))
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
