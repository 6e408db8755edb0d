package status

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prqueue/internal/github"
)

const testRef = "abc1234def"

func passingRuns(n int) github.CheckRunList {
	list := github.CheckRunList{Total: n}
	for i := 0; i < n; i++ {
		list.Runs = append(list.Runs, github.CheckRun{Status: "completed", Conclusion: "success"})
	}
	return list
}

func TestResolveCheckRunCounting(t *testing.T) {
	tests := []struct {
		name     string
		runs     github.CheckRunList
		combined string
		want     string
	}{
		{
			name:     "all runs passing",
			runs:     passingRuns(3),
			combined: "success",
			want:     Success,
		},
		{
			name: "skipped runs count as passing",
			runs: github.CheckRunList{
				Total: 2,
				Runs: []github.CheckRun{
					{Status: "completed", Conclusion: "success"},
					{Status: "completed", Conclusion: "skipped"},
				},
			},
			combined: "success",
			want:     Success,
		},
		{
			name: "one failed run fails regardless of combined status",
			runs: github.CheckRunList{
				Total: 2,
				Runs: []github.CheckRun{
					{Status: "completed", Conclusion: "success"},
					{Status: "completed", Conclusion: "failure"},
				},
			},
			combined: "success",
			want:     Failure,
		},
		{
			name: "incomplete run fails",
			runs: github.CheckRunList{
				Total: 2,
				Runs: []github.CheckRun{
					{Status: "completed", Conclusion: "success"},
					{Status: "in_progress", Conclusion: ""},
				},
			},
			combined: "success",
			want:     Failure,
		},
		{
			name:     "no check runs at all",
			runs:     github.CheckRunList{},
			combined: "success",
			want:     Success,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := github.NewMockAPI()
			api.SetCheckRuns(testRef, tt.runs)
			api.SetCombinedStatus(testRef, tt.combined)

			result, err := Resolve(context.Background(), api, "repo", testRef)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Verdict)
		})
	}
}

func TestResolveInvariantViolation(t *testing.T) {
	api := github.NewMockAPI()
	// Two passing runs but the API claims a total of one.
	api.SetCheckRuns(testRef, github.CheckRunList{
		Total: 1,
		Runs: []github.CheckRun{
			{Status: "completed", Conclusion: "success"},
			{Status: "completed", Conclusion: "success"},
		},
	})

	_, err := Resolve(context.Background(), api, "repo", testRef)
	require.Error(t, err)

	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 2, invErr.Passed)
	assert.Equal(t, 1, invErr.Total)
}

func TestResolveCombinedFailure(t *testing.T) {
	api := github.NewMockAPI()
	api.SetCheckRuns(testRef, passingRuns(2))
	api.SetCombinedStatus(testRef, "failure")

	result, err := Resolve(context.Background(), api, "repo", testRef)
	require.NoError(t, err)
	assert.Equal(t, Failure, result.Verdict)
	assert.Equal(t, GlyphFailure, result.Glyph)
}

func TestResolvePendingWithoutStatusesIsSuccess(t *testing.T) {
	// Scenario: combined status "pending", all check runs passing, and the
	// individual statuses list is empty. The pending is an artifact.
	api := github.NewMockAPI()
	api.SetCheckRuns(testRef, passingRuns(2))
	api.SetCombinedStatus(testRef, "pending")
	api.SetCommitStatuses(testRef, nil)

	result, err := Resolve(context.Background(), api, "repo", testRef)
	require.NoError(t, err)
	assert.Equal(t, Success, result.Verdict)
	assert.Equal(t, GlyphSuccess, result.Glyph)
	assert.True(t, result.Passed())
}

func TestResolvePendingWithRealStatusesIsFailure(t *testing.T) {
	// Scenario: a real pending legacy status blocks the queue; a single
	// snapshot run never waits for it.
	api := github.NewMockAPI()
	api.SetCheckRuns(testRef, passingRuns(2))
	api.SetCombinedStatus(testRef, "pending")
	api.SetCommitStatuses(testRef, []github.CommitStatus{
		{Context: "jenkins/build", State: "pending"},
	})

	result, err := Resolve(context.Background(), api, "repo", testRef)
	require.NoError(t, err)
	assert.Equal(t, Failure, result.Verdict)
	assert.Equal(t, GlyphPending, result.Glyph)
	assert.False(t, result.Passed())
}

func TestResolveFailedChecksShortCircuit(t *testing.T) {
	api := github.NewMockAPI()
	api.SetCheckRuns(testRef, github.CheckRunList{
		Total: 1,
		Runs:  []github.CheckRun{{Status: "completed", Conclusion: "failure"}},
	})

	result, err := Resolve(context.Background(), api, "repo", testRef)
	require.NoError(t, err)
	assert.Equal(t, Failure, result.Verdict)
	// Combined status must not even be consulted.
	assert.Empty(t, api.CombinedStatusCalls)
	assert.Empty(t, api.CommitStatusesCalls)
}

func TestResolveUnknownCombinedStatePassesThrough(t *testing.T) {
	api := github.NewMockAPI()
	api.SetCheckRuns(testRef, passingRuns(1))
	api.SetCombinedStatus(testRef, "error")

	result, err := Resolve(context.Background(), api, "repo", testRef)
	require.NoError(t, err)
	assert.Equal(t, "error", result.Verdict)
	assert.Equal(t, "error", result.Glyph)
	assert.False(t, result.Passed())
}

func TestResolvePropagatesFetchErrors(t *testing.T) {
	cause := errors.New("api down")

	t.Run("check runs", func(t *testing.T) {
		api := github.NewMockAPI()
		api.SetCheckRunsError(cause)
		_, err := Resolve(context.Background(), api, "repo", testRef)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("combined status", func(t *testing.T) {
		api := github.NewMockAPI()
		api.SetCheckRuns(testRef, passingRuns(1))
		api.SetCombinedStatusError(cause)
		_, err := Resolve(context.Background(), api, "repo", testRef)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("commit statuses", func(t *testing.T) {
		api := github.NewMockAPI()
		api.SetCheckRuns(testRef, passingRuns(1))
		api.SetCombinedStatus(testRef, "pending")
		api.SetCommitStatusesError(cause)
		_, err := Resolve(context.Background(), api, "repo", testRef)
		assert.ErrorIs(t, err, cause)
	})
}
