package publish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostMinimalPayload(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"data":{"id":"1234567890"}}`))
	}))
	defer server.Close()

	client := NewPostClient(server.Client(), server.URL)
	id, err := client.CreatePost(context.Background(), "token-abc", PostInput{Text: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "1234567890", id)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "hello", gotBody["text"])
	// media and reply keys are omitted entirely when unset
	assert.NotContains(t, gotBody, "media")
	assert.NotContains(t, gotBody, "reply")
}

func TestCreatePostWithMediaAndReply(t *testing.T) {
	var gotBody struct {
		Text  string `json:"text"`
		Media struct {
			MediaIDs []string `json:"media_ids"`
		} `json:"media"`
		Reply struct {
			InReplyToPostID string `json:"in_reply_to_post_id"`
		} `json:"reply"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"data":{"id":"99"}}`))
	}))
	defer server.Close()

	client := NewPostClient(server.Client(), server.URL)
	_, err := client.CreatePost(context.Background(), "token-abc", PostInput{
		Text:      "threaded",
		MediaIDs:  []string{"media-1"},
		ReplyToID: "previous-post",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"media-1"}, gotBody.Media.MediaIDs)
	assert.Equal(t, "previous-post", gotBody.Reply.InReplyToPostID)
}

func TestCreatePostPreservesStatusVerbatim(t *testing.T) {
	for _, statusCode := range []int{401, 403, 429, 500} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(statusCode)
			w.Write([]byte(`{"title":"rejected"}`))
		}))

		client := NewPostClient(server.Client(), server.URL)
		_, err := client.CreatePost(context.Background(), "token-abc", PostInput{Text: "hello"})
		server.Close()

		require.Error(t, err)
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, statusCode, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "rejected")
	}
}

func TestCreatePostMissingIDFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewPostClient(server.Client(), server.URL)
	_, err := client.CreatePost(context.Background(), "token-abc", PostInput{Text: "hello"})

	require.Error(t, err)
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, ClassUnauthorized, ClassifyStatus(401))
	assert.Equal(t, ClassRateLimited, ClassifyStatus(429))
	assert.Equal(t, ClassClientError, ClassifyStatus(403))
	assert.Equal(t, ClassServerError, ClassifyStatus(503))
	assert.Equal(t, ClassNone, ClassifyStatus(200))
}
