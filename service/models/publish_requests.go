package models

// Request payloads for the publish HTTP surface.

type PublishPostRequest struct {
	UserID    string   `json:"userId"`
	PostID    string   `json:"postId"`
	ProjectID string   `json:"projectId"`
	Text      string   `json:"text"`
	MediaIDs  []string `json:"mediaIds,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	ReplyToID string   `json:"replyToId,omitempty"`
	GroupID   string   `json:"groupId,omitempty"`
}

type PublishThreadRequest struct {
	UserID    string   `json:"userId"`
	ProjectID string   `json:"projectId"`
	DraftIDs  []string `json:"draftIds"`
}

type ScheduleThreadRequest struct {
	UserID                 string              `json:"userId"`
	ProjectID              string              `json:"projectId"`
	GroupID                string              `json:"groupId,omitempty"`
	ScheduledForEpochMilli int64               `json:"scheduledForEpochMilli"`
	Posts                  []ThreadPostPayload `json:"posts"`
}

type ThreadPostPayload struct {
	Text           string `json:"text"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ThreadPosition int    `json:"threadPosition"`
}
