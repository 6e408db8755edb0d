package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"prqueue/internal/github"
	"prqueue/internal/status"
)

// Review states that drive the ChangesRequested/Approved flags. Presence of
// any review in a given state is sufficient; later reviews do not clear it.
const (
	reviewStateChangesRequested = "CHANGES_REQUESTED"
	reviewStateApproved         = "APPROVED"
)

// Enricher gathers everything the classifier needs for one pull request.
type Enricher struct {
	api github.API
	org string
	now func() time.Time
}

// NewEnricher creates an enricher for org. The clock defaults to UTC now.
func NewEnricher(api github.API, org string) *Enricher {
	return &Enricher{
		api: api,
		org: org,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the enricher's clock. Used by tests.
func (e *Enricher) WithClock(now func() time.Time) *Enricher {
	e.now = now
	return e
}

// EnrichAll enriches items sequentially, preserving input order. Items whose
// repository is archived are skipped with a log line. Items whose fetches
// exhaust the retry budget are dropped; partial results are expected.
// Invariant violations in the status signals abort the whole run.
func (e *Enricher) EnrichAll(ctx context.Context, items []github.PullRequestSummary, archivedRepos []string) ([]Record, error) {
	records := make([]Record, 0, len(items))

	for _, item := range items {
		if slices.Contains(archivedRepos, item.Repo) {
			fmt.Printf(" * Repository '%s/%s' is archived or disabled. Skipping.\n", e.org, item.Repo)
			continue
		}

		record, err := e.Enrich(ctx, item)
		if err != nil {
			var retryErr *github.RetryError
			if errors.As(err, &retryErr) {
				fmt.Printf(" * Skipping %s: %v\n", item.HTMLURL, err)
				continue
			}
			return nil, err
		}

		fmt.Printf(" * Processing %s %s\n", item.HTMLURL, record.Glyph)
		records = append(records, *record)
	}

	return records, nil
}

// Enrich builds the full record for one pull request: a details fetch, a
// review scan and the CI verdict for the head commit.
func (e *Enricher) Enrich(ctx context.Context, item github.PullRequestSummary) (*Record, error) {
	details, err := e.api.GetPullRequestDetails(ctx, item.Repo, item.Number)
	if err != nil {
		return nil, err
	}

	reviews, err := e.api.ListReviews(ctx, item.Repo, item.Number)
	if err != nil {
		return nil, err
	}

	result, err := status.Resolve(ctx, e.api, item.Repo, details.HeadSHA)
	if err != nil {
		return nil, err
	}

	return &Record{
		Number:             item.Number,
		Org:                e.org,
		Repo:               item.Repo,
		HTMLURL:            item.HTMLURL,
		Title:              item.Title,
		Additions:          details.Additions,
		Deletions:          details.Deletions,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
		LastUpdatedDays:    daysSince(item.UpdatedAt, e.now()),
		Draft:              details.Draft,
		Mergeable:          details.Mergeable,
		Rebaseable:         details.Rebaseable,
		MergeableState:     details.MergeableState,
		ChangesRequested:   hasReviewState(reviews, reviewStateChangesRequested),
		Approved:           hasReviewState(reviews, reviewStateApproved),
		RequestedReviewers: details.RequestedReviewers,
		Status:             result.Verdict,
		Glyph:              result.Glyph,
		Author:             item.Author,
	}, nil
}

func hasReviewState(reviews []github.Review, state string) bool {
	for _, review := range reviews {
		if review.State == state {
			return true
		}
	}
	return false
}

func daysSince(then, now time.Time) int {
	days := int(now.UTC().Sub(then.UTC()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
