package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadPosts() []PostDraft {
	return []PostDraft{
		{DraftID: "d1", ProjectID: "project-1", Text: "first", ThreadPosition: 1},
		{DraftID: "d2", ProjectID: "project-1", Text: "second", ThreadPosition: 2},
		{DraftID: "d3", ProjectID: "project-1", Text: "third", ThreadPosition: 3},
	}
}

func TestPublishThreadChainsReplies(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p1", "p2", "p3"}

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", threadPosts())

	assert.True(t, result.Success)
	assert.Equal(t, ThreadPublished, result.Outcome)
	assert.Equal(t, 3, result.PublishedCount)
	assert.Equal(t, 3, result.TotalPosts)
	require.Len(t, f.poster.inputs, 3)
	assert.Equal(t, "", f.poster.inputs[0].ReplyToID)
	assert.Equal(t, "p1", f.poster.inputs[1].ReplyToID)
	assert.Equal(t, "p2", f.poster.inputs[2].ReplyToID)
	// access and credentials are checked once for the whole thread
	assert.Equal(t, 1, f.access.calls)
}

func TestPublishThreadSortsByPosition(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p1", "p2"}
	posts := []PostDraft{
		{DraftID: "d2", ProjectID: "project-1", Text: "second", ThreadPosition: 2},
		{DraftID: "d1", ProjectID: "project-1", Text: "first", ThreadPosition: 1},
	}

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", posts)

	assert.True(t, result.Success)
	require.Len(t, f.poster.inputs, 2)
	assert.Equal(t, "first", f.poster.inputs[0].Text)
	assert.Equal(t, "second", f.poster.inputs[1].Text)
}

func TestPublishThreadUnpositionedPostsSortFirst(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p1", "p2"}
	// d2 carries no explicit position; it collapses to 0 and leads the thread.
	posts := []PostDraft{
		{DraftID: "d1", ProjectID: "project-1", Text: "positioned", ThreadPosition: 1},
		{DraftID: "d2", ProjectID: "project-1", Text: "unpositioned"},
	}

	f.service.PublishThread(context.Background(), "user-1", "project-1", posts)

	require.Len(t, f.poster.inputs, 2)
	assert.Equal(t, "unpositioned", f.poster.inputs[0].Text)
}

func TestPublishThreadStopsOnFirstFailure(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p1"}
	f.poster.errs = []error{nil, &APIError{Op: "post", StatusCode: 500, Body: "boom"}}

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", threadPosts())

	assert.False(t, result.Success)
	assert.Equal(t, ThreadPartial, result.Outcome)
	assert.Equal(t, 1, result.PublishedCount)
	assert.Equal(t, 3, result.TotalPosts)
	// the third post is never attempted
	assert.Equal(t, 2, f.poster.calls)
	require.Len(t, result.PostResults, 2)
	assert.True(t, result.PostResults[0].Success)
	assert.False(t, result.PostResults[1].Success)
	// only the published prefix is persisted
	require.Len(t, f.drafts.marks, 1)
	assert.Equal(t, "d1", f.drafts.marks[0].draftID)
}

func TestPublishThreadFirstPostFailureIsOutrightFailure(t *testing.T) {
	f := newFixture()
	f.poster.errs = []error{&APIError{Op: "post", StatusCode: 500, Body: "boom"}}

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", threadPosts())

	assert.False(t, result.Success)
	assert.Equal(t, ThreadFailed, result.Outcome)
	assert.Equal(t, 0, result.PublishedCount)
}

func TestPublishThreadReentrySkipsPublishedPrefix(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p2", "p3"}
	posts := threadPosts()
	posts[0].Status = StatusPublished
	posts[0].ProviderPostID = "p1"

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", posts)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.PublishedCount)
	// no duplicate API call for the already-published post
	assert.Equal(t, 2, f.poster.calls)
	// chain resumes from the existing provider id
	assert.Equal(t, "p1", f.poster.inputs[0].ReplyToID)
	assert.Equal(t, CodeAlreadyPublished, result.PostResults[0].Code)
}

func TestPublishThreadDisabledGroupMakesNoProviderCalls(t *testing.T) {
	f := newFixture()
	f.groups.groups["group-1"] = PostGroup{GroupID: "group-1", IsEnabled: false}
	posts := threadPosts()
	posts[1].GroupID = "group-1"

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", posts)

	assert.False(t, result.Success)
	assert.Equal(t, ThreadFailed, result.Outcome)
	assert.Contains(t, result.Message, "disabled")
	assert.Equal(t, 0, f.poster.calls)
	assert.Equal(t, 0, f.uploader.calls)
}

func TestPublishThreadRejectsDuplicateDraftIDs(t *testing.T) {
	f := newFixture()
	posts := threadPosts()
	posts[2].DraftID = "d1"

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", posts)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "duplicate draft id")
	assert.Equal(t, 0, f.access.calls)
}

func TestPublishThreadEmptyInput(t *testing.T) {
	f := newFixture()

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", nil)

	assert.False(t, result.Success)
	assert.Equal(t, ThreadFailed, result.Outcome)
}

func TestPublishThreadCarriesRefreshedTokensForward(t *testing.T) {
	f := newFixture()
	f.poster.ids = []string{"p1", "p2", "p3"}
	f.poster.errs = []error{unauthorizedErr("post"), nil, nil, nil}

	result := f.service.PublishThread(context.Background(), "user-1", "project-1", threadPosts())

	assert.True(t, result.Success)
	assert.Equal(t, 1, f.refresher.calls)
	// later posts reuse the rotated token instead of re-triggering refreshes
	assert.Equal(t, []string{"old-access", "new-access", "new-access", "new-access"}, f.poster.tokens)
}
