package publish

import (
	"context"
	"time"
)

// Shared in-memory fakes for orchestrator and thread tests.

type fakeAccess struct {
	decision AccessDecision
	err      error
	calls    int
}

func (f *fakeAccess) VerifyAccess(ctx context.Context, userID string, projectID string) (AccessDecision, error) {
	f.calls++
	return f.decision, f.err
}

type tokenUpdate struct {
	accessToken  string
	refreshToken string
}

type fakeCredStore struct {
	creds     Credentials
	getErr    error
	updateErr error
	updates   []tokenUpdate
}

func (f *fakeCredStore) Get(ctx context.Context, userID string) (Credentials, error) {
	if f.getErr != nil {
		return Credentials{}, f.getErr
	}
	return f.creds, nil
}

func (f *fakeCredStore) Update(ctx context.Context, userID string, accessToken string, refreshToken string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, tokenUpdate{accessToken: accessToken, refreshToken: refreshToken})
	return nil
}

type publishedMark struct {
	projectID      string
	draftID        string
	providerPostID string
	text           string
}

type fakeDraftStore struct {
	drafts  map[string]PostDraft
	marks   []publishedMark
	markErr error
}

func (f *fakeDraftStore) Get(ctx context.Context, projectID string, draftID string) (PostDraft, error) {
	draft, ok := f.drafts[draftID]
	if !ok {
		return PostDraft{}, ErrNotFound
	}
	return draft, nil
}

func (f *fakeDraftStore) MarkPublished(ctx context.Context, projectID string, draftID string, providerPostID string, text string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marks = append(f.marks, publishedMark{
		projectID:      projectID,
		draftID:        draftID,
		providerPostID: providerPostID,
		text:           text,
	})
	return nil
}

func (f *fakeDraftStore) BatchSchedule(ctx context.Context, projectID string, drafts []PostDraft, scheduledFor time.Time) error {
	return nil
}

type fakeGroupStore struct {
	groups map[string]PostGroup
	err    error
	calls  int
}

func (f *fakeGroupStore) Get(ctx context.Context, groupID string) (PostGroup, error) {
	f.calls++
	if f.err != nil {
		return PostGroup{}, f.err
	}
	group, ok := f.groups[groupID]
	if !ok {
		return PostGroup{}, ErrNotFound
	}
	return group, nil
}

type fakeRefresher struct {
	pair  TokenPair
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context, creds Credentials) (TokenPair, error) {
	f.calls++
	if f.err != nil {
		return TokenPair{}, f.err
	}
	return f.pair, nil
}

// fakeUploader scripts one outcome per call via errs; nil entries succeed.
type fakeUploader struct {
	mediaID string
	errs    []error
	calls   int
	tokens  []string
}

func (f *fakeUploader) Upload(ctx context.Context, imageURL string, accessToken string) (string, error) {
	f.calls++
	f.tokens = append(f.tokens, accessToken)
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	return f.mediaID, nil
}

// fakePoster scripts one outcome per call; successful calls consume ids in
// order.
type fakePoster struct {
	ids    []string
	errs   []error
	calls  int
	tokens []string
	inputs []PostInput
	nextID int
}

func (f *fakePoster) CreatePost(ctx context.Context, accessToken string, input PostInput) (string, error) {
	f.calls++
	f.tokens = append(f.tokens, accessToken)
	f.inputs = append(f.inputs, input)
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	if f.nextID < len(f.ids) {
		id := f.ids[f.nextID]
		f.nextID++
		return id, nil
	}
	return "post-id", nil
}

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return nil
}

func unauthorizedErr(op string) error {
	return &APIError{Op: op, StatusCode: 401, Body: `{"title":"Unauthorized"}`}
}

func validCreds() Credentials {
	return Credentials{
		UserID:       "user-1",
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
}
