package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PostClient posts a single unit of content to the provider.
type PostClient struct {
	httpClient *http.Client
	postURL    string
}

func NewPostClient(httpClient *http.Client, postURL string) *PostClient {
	return &PostClient{
		httpClient: httpClient,
		postURL:    postURL,
	}
}

type postPayload struct {
	Text  string        `json:"text"`
	Media *mediaRef     `json:"media,omitempty"`
	Reply *replyTarget  `json:"reply,omitempty"`
}

type mediaRef struct {
	MediaIDs []string `json:"media_ids"`
}

type replyTarget struct {
	InReplyToPostID string `json:"in_reply_to_post_id"`
}

type postResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *PostClient) CreatePost(ctx context.Context, accessToken string, input PostInput) (string, error) {
	payload := postPayload{Text: input.Text}
	if len(input.MediaIDs) > 0 {
		payload.Media = &mediaRef{MediaIDs: input.MediaIDs}
	}
	if input.ReplyToID != "" {
		payload.Reply = &replyTarget{InReplyToPostID: input.ReplyToID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.postURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Status preserved verbatim; the orchestrator's retry decision hangs on
	// distinguishing 401 from everything else.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Op: "post", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed postResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("post response missing id")
	}
	return parsed.Data.ID, nil
}
