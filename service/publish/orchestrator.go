package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// The provider counts NFC-normalized code points.
const maxPostLength = 280

// Service orchestrates single-post and thread publishing: credential
// resolution, media upload, the provider post call, and one bounded
// refresh-and-retry cycle on expired tokens. All collaborators are injected;
// the service holds no mutable state of its own, so concurrent calls are
// independent.
type Service struct {
	access      AccessChecker
	credentials CredentialStore
	drafts      DraftStore
	groups      GroupStore
	refresher   TokenRefresher
	uploader    MediaUploader
	poster      PostCreator
}

func NewService(access AccessChecker, credentials CredentialStore, drafts DraftStore,
	groups GroupStore, refresher TokenRefresher, uploader MediaUploader, poster PostCreator) *Service {
	return &Service{
		access:      access,
		credentials: credentials,
		drafts:      drafts,
		groups:      groups,
		refresher:   refresher,
		uploader:    uploader,
		poster:      poster,
	}
}

// PublishPost publishes one post for the user. Every failure is folded into a
// structured result; raw errors never cross this boundary.
func (s *Service) PublishPost(ctx context.Context, userID string, opts PublishOptions) PublishResult {
	if err := validateOptions(opts); err != nil {
		return PublishResult{Code: CodeInvalidRequest, Message: err.Error()}
	}

	if result, ok := s.checkAccess(ctx, userID, opts.ProjectID); !ok {
		return result
	}

	if result, ok := s.checkGroupEnabled(ctx, opts.PostID, opts.GroupID); !ok {
		return result
	}

	creds, result, ok := s.loadCredentials(ctx, userID)
	if !ok {
		return result
	}

	draft := PostDraft{
		DraftID:   opts.PostID,
		ProjectID: opts.ProjectID,
		Text:      opts.Text,
		MediaIDs:  opts.MediaIDs,
		ImageURL:  opts.ImageURL,
		ReplyToID: opts.ReplyToID,
		GroupID:   opts.GroupID,
	}
	providerPostID, _, err := s.publishDraft(ctx, creds, draft)
	if err != nil {
		log.Printf("correlationID: %s error publishing post: %s", opts.PostID, err)
		return resultFromError(err)
	}

	return PublishResult{
		Success:        true,
		ProviderPostID: providerPostID,
		Message:        "post published successfully",
		Code:           CodePublished,
	}
}

// publishDraft runs the media-upload and post steps for one draft under
// already-validated credentials, persisting publish state on success. Returns
// the possibly-refreshed credentials so thread publishing carries rotated
// tokens forward.
func (s *Service) publishDraft(ctx context.Context, creds Credentials, draft PostDraft) (string, Credentials, error) {
	mediaIDs := draft.MediaIDs
	if draft.ImageURL != "" {
		var mediaID string
		var err error
		// The upload performs its own provider calls under the same token, so
		// it gets its own refresh-and-retry budget, independent of the post
		// call's.
		creds, err = s.withAuthRetry(ctx, creds, func(c Credentials) error {
			var opErr error
			mediaID, opErr = s.uploader.Upload(ctx, draft.ImageURL, c.AccessToken)
			return opErr
		})
		if err != nil {
			return "", creds, err
		}
		mediaIDs = []string{mediaID}
	}

	input := PostInput{
		Text:      draft.Text,
		MediaIDs:  mediaIDs,
		ReplyToID: draft.ReplyToID,
	}
	var providerPostID string
	creds, err := s.withAuthRetry(ctx, creds, func(c Credentials) error {
		var opErr error
		providerPostID, opErr = s.poster.CreatePost(ctx, c.AccessToken, input)
		return opErr
	})
	if err != nil {
		return "", creds, err
	}

	// Best-effort: the provider already accepted the post, a stale local
	// record beats a false failure that invites a duplicate re-publish.
	if err := s.drafts.MarkPublished(ctx, draft.ProjectID, draft.DraftID, providerPostID, draft.Text); err != nil {
		log.Printf("correlationID: %s error marking draft published, provider post %s accepted: %s",
			draft.DraftID, providerPostID, err)
	}
	return providerPostID, creds, nil
}

// withAuthRetry runs op once and, on a 401-class rejection with a usable
// refresh token, refreshes, persists the rotated pair, and retries exactly
// once. A second consecutive 401 is terminal.
func (s *Service) withAuthRetry(ctx context.Context, creds Credentials, op func(Credentials) error) (Credentials, error) {
	err := op(creds)
	if err == nil || !isUnauthorized(err) || creds.RefreshToken == "" {
		return creds, err
	}

	log.Printf("correlationID: %s unauthorized provider response, refreshing token", creds.UserID)
	pair, refreshErr := s.refresher.Refresh(ctx, creds)
	if refreshErr != nil {
		return creds, refreshErr
	}

	// Persist before retrying: the provider has rotated the refresh token
	// away and a crash here must not strand the stale pair.
	if persistErr := s.credentials.Update(ctx, creds.UserID, pair.AccessToken, pair.RefreshToken); persistErr != nil {
		return creds, fmt.Errorf("persisting refreshed credentials: %w", persistErr)
	}
	refreshed := creds.WithTokenPair(pair)

	retryErr := op(refreshed)
	if retryErr != nil && isUnauthorized(retryErr) {
		return refreshed, &TokenExpiredError{Err: retryErr}
	}
	return refreshed, retryErr
}

func (s *Service) checkAccess(ctx context.Context, userID string, projectID string) (PublishResult, bool) {
	decision, err := s.access.VerifyAccess(ctx, userID, projectID)
	if err != nil {
		log.Printf("error verifying access for user %s on project %s: %s", userID, projectID, err)
		return PublishResult{Code: CodeStoreError, Message: "unable to verify project access"}, false
	}
	if !decision.Authorized {
		reason := decision.Reason
		if reason == "" {
			reason = "user is not authorized for this project"
		}
		return PublishResult{Code: CodeUnauthorized, Message: reason}, false
	}
	return PublishResult{}, true
}

// checkGroupEnabled gates publishing on the draft's group. A disabled group is
// a silent skip, not an error; an absent group record does not block.
func (s *Service) checkGroupEnabled(ctx context.Context, correlationID string, groupID string) (PublishResult, bool) {
	if groupID == "" {
		return PublishResult{}, true
	}
	group, err := s.groups.Get(ctx, groupID)
	if errors.Is(err, ErrNotFound) {
		return PublishResult{}, true
	}
	if err != nil {
		log.Printf("correlationID: %s error loading group %s: %s", correlationID, groupID, err)
		return PublishResult{Code: CodeStoreError, Message: "unable to load post group"}, false
	}
	if !group.IsEnabled {
		return PublishResult{Code: CodeGroupDisabled, Message: "post group is disabled, skipping publish"}, false
	}
	return PublishResult{}, true
}

func (s *Service) loadCredentials(ctx context.Context, userID string) (Credentials, PublishResult, bool) {
	creds, err := s.credentials.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Credentials{}, PublishResult{
			Code:    CodeCredentialsNotFound,
			Message: "no provider credentials found, please reconnect your account",
		}, false
	}
	if err != nil {
		log.Printf("error loading credentials for user %s: %s", userID, err)
		return Credentials{}, PublishResult{Code: CodeStoreError, Message: "unable to load credentials"}, false
	}
	if !creds.Usable() {
		return Credentials{}, PublishResult{
			Code:    CodeCredentialsNotFound,
			Message: "stored credentials are incomplete, please reconnect your account",
		}, false
	}
	return creds, PublishResult{}, true
}

func validateOptions(opts PublishOptions) error {
	if opts.PostID == "" {
		return fmt.Errorf("post id is required")
	}
	if opts.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	if opts.Text == "" {
		return fmt.Errorf("post text is required")
	}
	if utf8.RuneCountInString(norm.NFC.String(opts.Text)) > maxPostLength {
		return fmt.Errorf("post text exceeds %d characters", maxPostLength)
	}
	return nil
}

// resultFromError folds a publish failure into the structured result shape.
func resultFromError(err error) PublishResult {
	var expiredErr *TokenExpiredError
	if errors.As(err, &expiredErr) {
		return PublishResult{
			Code:    CodeTokenExpired,
			Message: "provider access token expired, please reconnect your account",
		}
	}
	var refreshErr *TokenRefreshError
	if errors.As(err, &refreshErr) {
		return PublishResult{
			Code:    CodeTokenExpired,
			Message: "unable to refresh provider access token, please reconnect your account",
		}
	}
	var mediaErr *MediaUploadError
	if errors.As(err, &mediaErr) {
		return PublishResult{Code: CodeMediaUploadFailed, Message: mediaErr.Error()}
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return PublishResult{Code: CodeApiError, Message: apiErr.Error()}
	}
	return PublishResult{Code: CodeApiError, Message: err.Error()}
}
