package publish

import (
	"context"
	"fmt"
	"log"
	"sort"

	"bitbucket.org/creachadair/stringset"
)

// PublishThread publishes an ordered sequence of posts, each replying to its
// predecessor. Authorization and credentials are checked once for the whole
// thread. Posts are published strictly serially because each needs the
// provider id of the one before it; the sequence halts on the first failure
// rather than posting around a broken link.
func (s *Service) PublishThread(ctx context.Context, userID string, projectID string, posts []PostDraft) ThreadResult {
	if len(posts) == 0 {
		return ThreadResult{Outcome: ThreadFailed, Message: "thread contains no posts"}
	}
	if err := validateThreadPosts(posts); err != nil {
		return ThreadResult{Outcome: ThreadFailed, TotalPosts: len(posts), Message: err.Error()}
	}

	if result, ok := s.checkAccess(ctx, userID, projectID); !ok {
		return threadResultFromPrecheck(result, len(posts))
	}

	// Group gate applies to the thread as a whole; drafts in one thread share
	// a group tag.
	groupID := ""
	for _, p := range posts {
		if p.GroupID != "" {
			groupID = p.GroupID
			break
		}
	}
	if result, ok := s.checkGroupEnabled(ctx, projectID, groupID); !ok {
		return threadResultFromPrecheck(result, len(posts))
	}

	creds, result, ok := s.loadCredentials(ctx, userID)
	if !ok {
		return threadResultFromPrecheck(result, len(posts))
	}

	// Stable sort: ties keep input order. Unpositioned posts carry 0 and sort
	// to the front.
	ordered := make([]PostDraft, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ThreadPosition < ordered[j].ThreadPosition
	})

	previousProviderID := ""
	publishedCount := 0
	postResults := make([]PublishResult, 0, len(ordered))
	halted := false

	for _, draft := range ordered {
		// Idempotent re-entry: an already-published post is not re-posted,
		// but its provider id still anchors the reply chain.
		if draft.Status == StatusPublished && draft.ProviderPostID != "" {
			previousProviderID = draft.ProviderPostID
			publishedCount++
			postResults = append(postResults, PublishResult{
				Success:        true,
				ProviderPostID: draft.ProviderPostID,
				Message:        "already published, adopting existing provider id",
				Code:           CodeAlreadyPublished,
			})
			continue
		}

		draft.ReplyToID = previousProviderID
		providerPostID, updatedCreds, err := s.publishDraft(ctx, creds, draft)
		creds = updatedCreds
		if err != nil {
			log.Printf("correlationID: %s error publishing thread post at position %d: %s",
				draft.DraftID, draft.ThreadPosition, err)
			postResults = append(postResults, resultFromError(err))
			halted = true
			break
		}

		previousProviderID = providerPostID
		publishedCount++
		postResults = append(postResults, PublishResult{
			Success:        true,
			ProviderPostID: providerPostID,
			Message:        "post published successfully",
			Code:           CodePublished,
		})
	}

	return aggregateThread(publishedCount, len(ordered), halted, postResults)
}

func validateThreadPosts(posts []PostDraft) error {
	seen := stringset.New()
	for _, p := range posts {
		if p.DraftID == "" {
			return fmt.Errorf("thread post missing draft id")
		}
		if seen.Contains(p.DraftID) {
			return fmt.Errorf("duplicate draft id in thread: %s", p.DraftID)
		}
		seen.Add(p.DraftID)
	}
	return nil
}

func threadResultFromPrecheck(result PublishResult, totalPosts int) ThreadResult {
	return ThreadResult{
		Outcome:    ThreadFailed,
		TotalPosts: totalPosts,
		Message:    result.Message,
	}
}

func aggregateThread(publishedCount int, totalPosts int, halted bool, postResults []PublishResult) ThreadResult {
	result := ThreadResult{
		PublishedCount: publishedCount,
		TotalPosts:     totalPosts,
		PostResults:    postResults,
	}
	switch {
	case !halted && publishedCount == totalPosts:
		result.Success = true
		result.Outcome = ThreadPublished
		result.Message = "thread published successfully"
	case publishedCount > 0:
		result.Outcome = ThreadPartial
		result.Message = fmt.Sprintf("published %d of %d posts, stopped to preserve reply chain", publishedCount, totalPosts)
	default:
		result.Outcome = ThreadFailed
		result.Message = "thread publish failed, no posts published"
	}
	return result
}
