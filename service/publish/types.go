package publish

import "time"

// Credentials is the in-memory view of a user's provider token material.
// Values are passed by copy; a refresh produces a new value via WithTokenPair
// rather than mutating a shared record.
type Credentials struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	ExpiresAt    time.Time // zero when the provider omitted expiry
	TokenType    string
}

// Usable reports whether the record carries the full token pair.
func (c Credentials) Usable() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// WithTokenPair returns a copy of the credentials carrying the rotated pair.
func (c Credentials) WithTokenPair(pair TokenPair) Credentials {
	c.AccessToken = pair.AccessToken
	c.RefreshToken = pair.RefreshToken
	if !pair.ExpiresAt.IsZero() {
		c.ExpiresAt = pair.ExpiresAt
	}
	return c
}

// TokenPair is the result of one refresh exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusFailed    PostStatus = "failed"
)

// PostDraft is one unit of publishable content.
type PostDraft struct {
	DraftID   string
	ProjectID string
	Text      string
	MediaIDs  []string
	ImageURL  string
	ReplyToID string
	GroupID   string

	// ThreadPosition orders posts within a thread. Drafts without an explicit
	// position carry 0 and therefore sort to the front; longstanding behavior,
	// callers relying on thread order should always set positions.
	ThreadPosition int

	Status         PostStatus
	ProviderPostID string
	ScheduledFor   time.Time
}

// PublishOptions are the inputs to a single-post publish.
type PublishOptions struct {
	PostID    string
	ProjectID string
	Text      string
	MediaIDs  []string
	ImageURL  string
	ReplyToID string
	GroupID   string
}

// PostInput is the minimal provider post payload.
type PostInput struct {
	Text      string
	MediaIDs  []string
	ReplyToID string
}

// Machine-checkable result codes, stable for caller branching.
const (
	CodePublished           = "published"
	CodeAlreadyPublished    = "already_published"
	CodeInvalidRequest      = "invalid_request"
	CodeUnauthorized        = "unauthorized"
	CodeGroupDisabled       = "group_disabled"
	CodeCredentialsNotFound = "credentials_not_found"
	CodeTokenExpired        = "token_expired"
	CodeMediaUploadFailed   = "media_upload_failed"
	CodeApiError            = "api_error"
	CodeStoreError          = "store_error"
)

// PublishResult is the structured outcome of one publish attempt. Errors never
// cross the service boundary raw; they are folded into Message and Code.
type PublishResult struct {
	Success        bool
	ProviderPostID string
	Message        string
	Code           string
}

type ThreadOutcome string

const (
	ThreadPublished ThreadOutcome = "published"
	ThreadPartial   ThreadOutcome = "partially_published"
	ThreadFailed    ThreadOutcome = "failed"
)

// ThreadResult aggregates per-post outcomes of one thread publish. When a post
// fails mid-thread the published prefix is reported so callers can resume.
type ThreadResult struct {
	Success        bool
	Outcome        ThreadOutcome
	PublishedCount int
	TotalPosts     int
	Message        string
	PostResults    []PublishResult
}

// AccessDecision is the verdict of the external membership check.
type AccessDecision struct {
	Authorized bool
	Reason     string
	StatusCode int
}
