package v1

type PostStatus string

const (
	DRAFT     PostStatus = "draft"
	SCHEDULED PostStatus = "scheduled"
	PUBLISHED PostStatus = "published"
	FAILED    PostStatus = "failed"
)

// OauthCredential stores one user's provider token material.
// A record is only usable when both tokens are present.
type OauthCredential struct {
	// Required
	UserID       string
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string

	// Optional
	ExpiresAtEpochSec   int64 // 0 when the provider omitted expiry
	TokenType           string
	UpdatedAtEpochMilli int64
}

type PostDraft struct {
	// Required
	ProjectID string
	DraftID   string
	Text      string

	// Optional - publish inputs
	MediaIDs  []string
	ImageURL  string
	ReplyToID string
	GroupID   string

	// Optional - thread ordering. Absent positions unmarshal to 0 and sort first.
	ThreadPosition int

	// Publish state
	PostStatus             PostStatus
	ProviderPostID         string
	PublishedAtEpochMilli  int64
	ScheduledForEpochMilli int64
}

type PostGroup struct {
	GroupID   string
	GroupName string
	IsEnabled bool
}

type Project struct {
	ProjectID   string
	ProjectName string
	OwnerUserID string
	MemberIDs   []string
}
