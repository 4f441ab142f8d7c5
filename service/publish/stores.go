package publish

import (
	"context"
	"time"
)

// Collaborator boundaries. Production wiring lives in dal; tests use fakes.

type AccessChecker interface {
	VerifyAccess(ctx context.Context, userID string, projectID string) (AccessDecision, error)
}

type CredentialStore interface {
	// Get returns ErrNotFound when the user has no stored credentials.
	Get(ctx context.Context, userID string) (Credentials, error)
	// Update persists a rotated token pair. Must complete before any retried
	// provider call, otherwise a crash strands the old refresh token.
	Update(ctx context.Context, userID string, accessToken string, refreshToken string) error
}

type DraftStore interface {
	Get(ctx context.Context, projectID string, draftID string) (PostDraft, error)
	MarkPublished(ctx context.Context, projectID string, draftID string, providerPostID string, text string) error
	BatchSchedule(ctx context.Context, projectID string, drafts []PostDraft, scheduledFor time.Time) error
}

type GroupStore interface {
	Get(ctx context.Context, groupID string) (PostGroup, error)
}

type PostGroup struct {
	GroupID   string
	IsEnabled bool
}

// Provider-facing collaborators, implemented by the HTTP clients in this
// package.

type TokenRefresher interface {
	Refresh(ctx context.Context, creds Credentials) (TokenPair, error)
}

type MediaUploader interface {
	Upload(ctx context.Context, imageURL string, accessToken string) (string, error)
}

type PostCreator interface {
	CreatePost(ctx context.Context, accessToken string, input PostInput) (string, error)
}
