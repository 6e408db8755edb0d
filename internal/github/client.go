package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub REST API for one organisation. All remote calls
// go through the retry discipline in retry.go.
type Client struct {
	client *github.Client
	org    string
}

// NewClient creates an authenticated client for org.
func NewClient(org string) (*Client, error) {
	return NewClientWithProvider(org, &DefaultAuthTokenProvider{})
}

// NewClientWithProvider creates a client with dependency injection for testing.
func NewClientWithProvider(org string, authProvider AuthTokenProvider) (*Client, error) {
	token, err := authProvider.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
		org:    org,
	}, nil
}

// SearchOpenPullRequests returns all open pull requests for the org,
// or for org/repo when repo is non-empty, sorted by update time ascending
// so the longest-waiting items come first. This is the foundational call of
// a run: callers must treat its failure as fatal.
func (c *Client) SearchOpenPullRequests(ctx context.Context, repo string) ([]PullRequestSummary, error) {
	query := fmt.Sprintf("org:%s type:pr is:open", c.org)
	if repo != "" {
		query = fmt.Sprintf("repo:%s/%s type:pr is:open", c.org, repo)
	}

	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "asc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	result, err := withRetry(ctx, "search open pull requests", func() (*github.IssuesSearchResult, error) {
		res, _, err := c.client.Search.Issues(ctx, query, opts)
		return res, err
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]PullRequestSummary, 0, len(result.Issues))
	for _, issue := range result.Issues {
		summaries = append(summaries, PullRequestSummary{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			Author:    issue.GetUser().GetLogin(),
			HTMLURL:   issue.GetHTMLURL(),
			Repo:      repoNameFromURL(issue.GetRepositoryURL()),
			CreatedAt: issue.GetCreatedAt().Time,
			UpdatedAt: issue.GetUpdatedAt().Time,
		})
	}

	return summaries, nil
}

// repoNameFromURL extracts the repository name from an API repository URL
// like https://api.github.com/repos/owner/name.
func repoNameFromURL(url string) string {
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// GetPullRequestDetails fetches the attributes the search API omits:
// sizes, draft/mergeable flags and requested reviewers.
func (c *Client) GetPullRequestDetails(ctx context.Context, repo string, number int) (*PullRequestDetails, error) {
	label := fmt.Sprintf("get details for %s/%s#%d", c.org, repo, number)
	pr, err := withRetry(ctx, label, func() (*github.PullRequest, error) {
		pr, _, err := c.client.PullRequests.Get(ctx, c.org, repo, number)
		return pr, err
	})
	if err != nil {
		return nil, err
	}

	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}

	return &PullRequestDetails{
		HeadSHA:            pr.GetHead().GetSHA(),
		Additions:          pr.GetAdditions(),
		Deletions:          pr.GetDeletions(),
		Draft:              pr.GetDraft(),
		Mergeable:          pr.Mergeable,
		Rebaseable:         pr.Rebaseable,
		MergeableState:     pr.GetMergeableState(),
		RequestedReviewers: reviewers,
	}, nil
}

// ListReviews returns the submitted reviews for a pull request.
func (c *Client) ListReviews(ctx context.Context, repo string, number int) ([]Review, error) {
	label := fmt.Sprintf("list reviews for %s/%s#%d", c.org, repo, number)
	reviews, err := withRetry(ctx, label, func() ([]*github.PullRequestReview, error) {
		reviews, _, err := c.client.PullRequests.ListReviews(ctx, c.org, repo, number, nil)
		return reviews, err
	})
	if err != nil {
		return nil, err
	}

	result := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		result = append(result, Review{
			Reviewer: review.GetUser().GetLogin(),
			State:    review.GetState(),
		})
	}

	return result, nil
}

// GetCombinedStatus returns the aggregate legacy status state for a commit.
func (c *Client) GetCombinedStatus(ctx context.Context, repo, ref string) (string, error) {
	label := fmt.Sprintf("get combined status for %s/%s@%s", c.org, repo, shortSHA(ref))
	status, err := withRetry(ctx, label, func() (*github.CombinedStatus, error) {
		status, _, err := c.client.Repositories.GetCombinedStatus(ctx, c.org, repo, ref, nil)
		return status, err
	})
	if err != nil {
		return "", err
	}
	return status.GetState(), nil
}

// ListCommitStatuses returns the individual legacy statuses for a commit.
// An empty list means the combined "pending" state is an artifact of no
// statuses existing at all.
func (c *Client) ListCommitStatuses(ctx context.Context, repo, ref string) ([]CommitStatus, error) {
	label := fmt.Sprintf("list commit statuses for %s/%s@%s", c.org, repo, shortSHA(ref))
	statuses, err := withRetry(ctx, label, func() ([]*github.RepoStatus, error) {
		statuses, _, err := c.client.Repositories.ListStatuses(ctx, c.org, repo, ref, nil)
		return statuses, err
	})
	if err != nil {
		return nil, err
	}

	result := make([]CommitStatus, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, CommitStatus{
			Context: s.GetContext(),
			State:   s.GetState(),
		})
	}

	return result, nil
}

// ListCheckRuns returns all check runs for a commit, following pagination.
func (c *Client) ListCheckRuns(ctx context.Context, repo, ref string) (CheckRunList, error) {
	opts := &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var list CheckRunList
	for {
		label := fmt.Sprintf("list check runs for %s/%s@%s", c.org, repo, shortSHA(ref))
		results, err := withRetry(ctx, label, func() (*checkRunsPage, error) {
			results, resp, err := c.client.Checks.ListCheckRunsForRef(ctx, c.org, repo, ref, opts)
			if err != nil {
				return nil, err
			}
			return &checkRunsPage{results: results, nextPage: resp.NextPage}, nil
		})
		if err != nil {
			return CheckRunList{}, err
		}

		list.Total = results.results.GetTotal()
		for _, run := range results.results.CheckRuns {
			list.Runs = append(list.Runs, CheckRun{
				Name:       run.GetName(),
				Status:     run.GetStatus(),
				Conclusion: run.GetConclusion(),
			})
		}

		if results.nextPage == 0 {
			break
		}
		opts.Page = results.nextPage
	}

	return list, nil
}

type checkRunsPage struct {
	results  *github.ListCheckRunsResults
	nextPage int
}

// ListArchivedRepos returns the names of archived or disabled repositories
// in the org. Used to filter org-wide runs; a single-repo run never calls it.
func (c *Client) ListArchivedRepos(ctx context.Context) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var archived []string
	for {
		label := fmt.Sprintf("list repositories for %s", c.org)
		page, err := withRetry(ctx, label, func() (*reposPage, error) {
			repos, resp, err := c.client.Repositories.ListByOrg(ctx, c.org, opts)
			if err != nil {
				return nil, err
			}
			return &reposPage{repos: repos, nextPage: resp.NextPage}, nil
		})
		if err != nil {
			return nil, err
		}

		for _, repo := range page.repos {
			if repo.GetArchived() || repo.GetDisabled() {
				archived = append(archived, repo.GetName())
			}
		}

		if page.nextPage == 0 {
			break
		}
		opts.Page = page.nextPage
	}

	return archived, nil
}

type reposPage struct {
	repos    []*github.Repository
	nextPage int
}

func shortSHA(ref string) string {
	if len(ref) > 7 {
		return ref[:7]
	}
	return ref
}
