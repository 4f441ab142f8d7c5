package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	authorization "github.com/plumewire-social-core/v2/service/authorization"
	requestModels "github.com/plumewire-social-core/v2/service/models"
	publish "github.com/plumewire-social-core/v2/service/publish"
)

// Publisher is the slice of the publish service the handlers need.
type Publisher interface {
	PublishPost(ctx context.Context, userID string, opts publish.PublishOptions) publish.PublishResult
	PublishThread(ctx context.Context, userID string, projectID string, posts []publish.PostDraft) publish.ThreadResult
}

// DraftAccessor is the slice of the draft store the handlers need.
type DraftAccessor interface {
	Get(ctx context.Context, projectID string, draftID string) (publish.PostDraft, error)
	BatchSchedule(ctx context.Context, projectID string, drafts []publish.PostDraft, scheduledFor time.Time) error
}

type Controllers struct {
	publisher Publisher
	drafts    DraftAccessor
	auth      *authorization.XAuth
}

func NewControllers(publisher Publisher, drafts DraftAccessor, auth *authorization.XAuth) *Controllers {
	return &Controllers{
		publisher: publisher,
		drafts:    drafts,
		auth:      auth,
	}
}

func HandlerHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Ok")
}

func (c *Controllers) HandlerPublishPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}

	decoder := json.NewDecoder(r.Body)
	var payload requestModels.PublishPostRequest
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, err.Error())
		return
	}

	result := c.publisher.PublishPost(r.Context(), payload.UserID, publish.PublishOptions{
		PostID:    payload.PostID,
		ProjectID: payload.ProjectID,
		Text:      payload.Text,
		MediaIDs:  payload.MediaIDs,
		ImageURL:  payload.ImageURL,
		ReplyToID: payload.ReplyToID,
		GroupID:   payload.GroupID,
	})
	writeJson(w, statusForCode(result.Code), result)
}

func (c *Controllers) HandlerPublishThread(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}

	decoder := json.NewDecoder(r.Body)
	var payload requestModels.PublishThreadRequest
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, err.Error())
		return
	}

	posts := make([]publish.PostDraft, 0, len(payload.DraftIDs))
	for _, draftID := range payload.DraftIDs {
		draft, err := c.drafts.Get(r.Context(), payload.ProjectID, draftID)
		if errors.Is(err, publish.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, "draft not found: %s", draftID)
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, err.Error())
			return
		}
		posts = append(posts, draft)
	}

	result := c.publisher.PublishThread(r.Context(), payload.UserID, payload.ProjectID, posts)
	status := http.StatusOK
	if !result.Success && result.PublishedCount == 0 {
		status = http.StatusBadGateway
	}
	writeJson(w, status, result)
}

func (c *Controllers) HandlerScheduleThread(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}

	decoder := json.NewDecoder(r.Body)
	var payload requestModels.ScheduleThreadRequest
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, err.Error())
		return
	}
	if payload.ProjectID == "" || len(payload.Posts) == 0 || payload.ScheduledForEpochMilli <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "projectId, posts, and scheduledForEpochMilli are required")
		return
	}

	drafts := make([]publish.PostDraft, 0, len(payload.Posts))
	for _, p := range payload.Posts {
		drafts = append(drafts, publish.PostDraft{
			DraftID:        uuid.NewString(),
			ProjectID:      payload.ProjectID,
			Text:           p.Text,
			ImageURL:       p.ImageURL,
			GroupID:        payload.GroupID,
			ThreadPosition: p.ThreadPosition,
		})
	}

	scheduledFor := time.UnixMilli(payload.ScheduledForEpochMilli)
	err = c.drafts.BatchSchedule(r.Context(), payload.ProjectID, drafts, scheduledFor)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Ok")
}

func (c *Controllers) HandlerOauthCodeFlowStart(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	var payload requestModels.AuthorizationCodeState
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	authUrl, err := c.auth.StartOauthCodeFlow(payload.UserId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"authUrl": authUrl})
}

func (c *Controllers) HandlerOauthCodeCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")
	userID, err := authorization.DecodeState(state)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, err.Error())
		return
	}

	err = c.auth.StoreAuthorizationCode(r.Context(), code, userID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Account connected. You can now safely close this browser window.")
}

func statusForCode(code string) int {
	switch code {
	case publish.CodePublished, publish.CodeGroupDisabled:
		return http.StatusOK
	case publish.CodeInvalidRequest:
		return http.StatusBadRequest
	case publish.CodeUnauthorized:
		return http.StatusForbidden
	case publish.CodeCredentialsNotFound, publish.CodeTokenExpired:
		return http.StatusUnauthorized
	case publish.CodeStoreError:
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("error encoding response body: %s", err)
	}
}
