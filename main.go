package main

import (
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb"

	config "github.com/plumewire-social-core/v2/configuration"
	dynamo_configuration "github.com/plumewire-social-core/v2/configuration/dynamo"
	dal "github.com/plumewire-social-core/v2/dal"
	handlers "github.com/plumewire-social-core/v2/handlers"
	authorization "github.com/plumewire-social-core/v2/service/authorization"
	publish "github.com/plumewire-social-core/v2/service/publish"
)

const route_health = "/health"

// Oauth2 flow for connecting X accounts
const route_x_oauth_start = "/v1/authcode/x"
const route_x_oauth_callback = "/v1/authcode/x/callback"

// Publishing
const route_publish_post = "/v1/publish/post"
const route_publish_thread = "/v1/publish/thread"
const route_schedule_thread = "/v1/schedule/thread"

func main() {
	conf := config.GetEnvConfigs()
	dynamo_configuration.Init()

	svc := dynamodb.New(config.GetAwsSession())
	credentialDao := dal.NewCredentialDao(svc)
	draftDao := dal.NewDraftDao(svc)
	groupDao := dal.NewGroupDao(svc)
	projectDao := dal.NewProjectDao(svc)

	httpClient := &http.Client{Timeout: time.Duration(conf.HTTPTimeoutSec) * time.Second}
	refresher := publish.NewTokenRefreshClient(httpClient, conf.ProviderTokenURL)
	uploader := publish.NewMediaUploadClient(httpClient, conf.ProviderMediaUploadURL, publish.NewClock(),
		time.Duration(conf.MediaPollDefaultDelaySec)*time.Second)
	poster := publish.NewPostClient(httpClient, conf.ProviderPostURL)

	service := publish.NewService(projectDao, credentialDao, draftDao, groupDao, refresher, uploader, poster)
	xAuth := authorization.NewXAuth(credentialDao)
	controllers := handlers.NewControllers(service, draftDao, xAuth)

	http.HandleFunc(route_health, handlers.HandlerHealthCheck)
	http.HandleFunc(route_x_oauth_start, controllers.HandlerOauthCodeFlowStart)
	http.HandleFunc(route_x_oauth_callback, controllers.HandlerOauthCodeCallback)
	http.HandleFunc(route_publish_post, controllers.HandlerPublishPost)
	http.HandleFunc(route_publish_thread, controllers.HandlerPublishThread)
	http.HandleFunc(route_schedule_thread, controllers.HandlerScheduleThread)

	log.Printf("listening on port %s", conf.ServerPort)
	log.Fatal(http.ListenAndServe(":"+conf.ServerPort, nil))
}
