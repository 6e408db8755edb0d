package github

import (
	"context"
	"fmt"
)

// MockAPI provides a mock implementation of API for testing.
type MockAPI struct {
	// Data to return
	summaries      []PullRequestSummary
	details        map[int]*PullRequestDetails
	reviews        map[int][]Review
	combinedStatus map[string]string
	commitStatuses map[string][]CommitStatus
	checkRuns      map[string]CheckRunList
	archivedRepos  []string

	// Error control
	searchError         error
	detailsError        map[int]error
	reviewsError        error
	combinedStatusError error
	commitStatusesError error
	checkRunsError      error
	archivedReposError  error

	// Call tracking
	SearchCalls         int
	DetailsCalls        []int
	ReviewsCalls        []int
	CombinedStatusCalls []string
	CommitStatusesCalls []string
	CheckRunsCalls      []string
	ArchivedReposCalls  int
}

// NewMockAPI creates a new mock API.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		details:        make(map[int]*PullRequestDetails),
		reviews:        make(map[int][]Review),
		combinedStatus: make(map[string]string),
		commitStatuses: make(map[string][]CommitStatus),
		checkRuns:      make(map[string]CheckRunList),
		detailsError:   make(map[int]error),
	}
}

// Configuration methods

func (m *MockAPI) SetSummaries(summaries []PullRequestSummary) {
	m.summaries = summaries
}

func (m *MockAPI) SetDetails(number int, details *PullRequestDetails) {
	m.details[number] = details
}

func (m *MockAPI) SetReviews(number int, reviews []Review) {
	m.reviews[number] = reviews
}

func (m *MockAPI) SetCombinedStatus(ref, state string) {
	m.combinedStatus[ref] = state
}

func (m *MockAPI) SetCommitStatuses(ref string, statuses []CommitStatus) {
	m.commitStatuses[ref] = statuses
}

func (m *MockAPI) SetCheckRuns(ref string, list CheckRunList) {
	m.checkRuns[ref] = list
}

func (m *MockAPI) SetArchivedRepos(names []string) {
	m.archivedRepos = names
}

// Error configuration methods

func (m *MockAPI) SetSearchError(err error) {
	m.searchError = err
}

func (m *MockAPI) SetDetailsError(number int, err error) {
	m.detailsError[number] = err
}

func (m *MockAPI) SetReviewsError(err error) {
	m.reviewsError = err
}

func (m *MockAPI) SetCombinedStatusError(err error) {
	m.combinedStatusError = err
}

func (m *MockAPI) SetCommitStatusesError(err error) {
	m.commitStatusesError = err
}

func (m *MockAPI) SetCheckRunsError(err error) {
	m.checkRunsError = err
}

func (m *MockAPI) SetArchivedReposError(err error) {
	m.archivedReposError = err
}

// API implementation

func (m *MockAPI) SearchOpenPullRequests(ctx context.Context, repo string) ([]PullRequestSummary, error) {
	m.SearchCalls++
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.summaries, nil
}

func (m *MockAPI) GetPullRequestDetails(ctx context.Context, repo string, number int) (*PullRequestDetails, error) {
	m.DetailsCalls = append(m.DetailsCalls, number)
	if err := m.detailsError[number]; err != nil {
		return nil, err
	}
	details, ok := m.details[number]
	if !ok {
		return nil, fmt.Errorf("mock: no details configured for PR #%d", number)
	}
	return details, nil
}

func (m *MockAPI) ListReviews(ctx context.Context, repo string, number int) ([]Review, error) {
	m.ReviewsCalls = append(m.ReviewsCalls, number)
	if m.reviewsError != nil {
		return nil, m.reviewsError
	}
	return m.reviews[number], nil
}

func (m *MockAPI) GetCombinedStatus(ctx context.Context, repo, ref string) (string, error) {
	m.CombinedStatusCalls = append(m.CombinedStatusCalls, ref)
	if m.combinedStatusError != nil {
		return "", m.combinedStatusError
	}
	state, ok := m.combinedStatus[ref]
	if !ok {
		return "success", nil
	}
	return state, nil
}

func (m *MockAPI) ListCommitStatuses(ctx context.Context, repo, ref string) ([]CommitStatus, error) {
	m.CommitStatusesCalls = append(m.CommitStatusesCalls, ref)
	if m.commitStatusesError != nil {
		return nil, m.commitStatusesError
	}
	return m.commitStatuses[ref], nil
}

func (m *MockAPI) ListCheckRuns(ctx context.Context, repo, ref string) (CheckRunList, error) {
	m.CheckRunsCalls = append(m.CheckRunsCalls, ref)
	if m.checkRunsError != nil {
		return CheckRunList{}, m.checkRunsError
	}
	return m.checkRuns[ref], nil
}

func (m *MockAPI) ListArchivedRepos(ctx context.Context) ([]string, error) {
	m.ArchivedReposCalls++
	if m.archivedReposError != nil {
		return nil, m.archivedReposError
	}
	return m.archivedRepos, nil
}

// Ensure MockAPI implements API
var _ API = (*MockAPI)(nil)
