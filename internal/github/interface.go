package github

import (
	"context"
	"time"
)

// API defines the GitHub operations used by the review queue pipeline.
// This allows for easy mocking and dependency injection in tests.
type API interface {
	SearchOpenPullRequests(ctx context.Context, repo string) ([]PullRequestSummary, error)
	GetPullRequestDetails(ctx context.Context, repo string, number int) (*PullRequestDetails, error)
	ListReviews(ctx context.Context, repo string, number int) ([]Review, error)
	GetCombinedStatus(ctx context.Context, repo, ref string) (string, error)
	ListCommitStatuses(ctx context.Context, repo, ref string) ([]CommitStatus, error)
	ListCheckRuns(ctx context.Context, repo, ref string) (CheckRunList, error)
	ListArchivedRepos(ctx context.Context) ([]string, error)
}

// PullRequestSummary is one search result item. The repository name is
// derived from the item's repository URL when searching across an org.
type PullRequestSummary struct {
	Number    int
	Title     string
	Author    string
	HTMLURL   string
	Repo      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PullRequestDetails carries the per-PR attributes the search API omits.
// Mergeable and Rebaseable are nil while GitHub is still computing them.
type PullRequestDetails struct {
	HeadSHA            string
	Additions          int
	Deletions          int
	Draft              bool
	Mergeable          *bool
	Rebaseable         *bool
	MergeableState     string
	RequestedReviewers []string
}

// Review is one submitted review's state (APPROVED, CHANGES_REQUESTED, ...).
type Review struct {
	Reviewer string
	State    string
}

// CommitStatus is one legacy per-commit status report.
type CommitStatus struct {
	Context string
	State   string
}

// CheckRun is one granular check result for a commit.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string
}

// CheckRunList is the full paginated set of check runs for a commit plus
// the total count the API reported.
type CheckRunList struct {
	Runs  []CheckRun
	Total int
}

// AuthTokenProvider defines the interface for authentication token retrieval.
type AuthTokenProvider interface {
	GetToken() (string, error)
}

// DefaultAuthTokenProvider implements AuthTokenProvider using the existing auth functions.
type DefaultAuthTokenProvider struct{}

func (p *DefaultAuthTokenProvider) GetToken() (string, error) {
	return GetGitHubToken()
}

// Ensure Client implements API
var _ API = (*Client)(nil)
