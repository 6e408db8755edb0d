// Package status reconciles the two generations of GitHub CI signals for a
// commit: granular check runs and the legacy combined status. Neither alone
// is authoritative, and an empty "pending" combined status is a known
// platform quirk rather than a real in-flight signal.
package status

import (
	"context"
	"fmt"

	"prqueue/internal/github"
)

// Verdict values. Anything other than Success is treated as not passing by
// downstream consumers; unknown combined states pass through verbatim.
const (
	Success = "success"
	Failure = "failure"
	Pending = "pending"
)

// Presentation glyphs shown next to each pull request in the logs.
const (
	GlyphSuccess = "🟢"
	GlyphFailure = "🔴"
	GlyphPending = "🟠"
)

// CommitAPI is the subset of the GitHub API the resolver needs.
type CommitAPI interface {
	GetCombinedStatus(ctx context.Context, repo, ref string) (string, error)
	ListCommitStatuses(ctx context.Context, repo, ref string) ([]github.CommitStatus, error)
	ListCheckRuns(ctx context.Context, repo, ref string) (github.CheckRunList, error)
}

// InvariantError reports more passing check runs than the API-reported
// total. That means the upstream contract is broken; the run must abort
// rather than classify on garbage.
type InvariantError struct {
	Passed int
	Total  int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("successful check runs (%d) exceed total runs (%d)", e.Passed, e.Total)
}

// Result is the resolved CI verdict for one commit.
type Result struct {
	Verdict string
	Glyph   string
}

// Passed reports whether the verdict allows the pull request into the queue.
func (r Result) Passed() bool {
	return r.Verdict == Success
}

// Resolve combines check runs and the combined status into one verdict.
// Priority order, short-circuiting:
//  1. any failed check run fails the commit outright
//  2. combined success + all checks passing succeeds
//  3. combined failure fails
//  4. combined pending is disambiguated against the individual status list:
//     an empty list means no legacy statuses exist at all, so the check-run
//     verdict decides; a non-empty list is a real pending status and blocks
//  5. any other combined state passes through verbatim
func Resolve(ctx context.Context, api CommitAPI, repo, ref string) (Result, error) {
	checksVerdict, err := resolveCheckRuns(ctx, api, repo, ref)
	if err != nil {
		return Result{}, err
	}
	if checksVerdict == Failure {
		return Result{Verdict: Failure, Glyph: GlyphFailure}, nil
	}

	combined, err := api.GetCombinedStatus(ctx, repo, ref)
	if err != nil {
		return Result{}, err
	}

	switch combined {
	case Success:
		if checksVerdict == Success {
			return Result{Verdict: Success, Glyph: GlyphSuccess}, nil
		}
		return Result{Verdict: Failure, Glyph: GlyphFailure}, nil
	case Failure:
		return Result{Verdict: Failure, Glyph: GlyphFailure}, nil
	case Pending:
		statuses, err := api.ListCommitStatuses(ctx, repo, ref)
		if err != nil {
			return Result{}, err
		}
		// A "pending" with no individual statuses is an artifact of no
		// legacy statuses existing at all; the check runs decide.
		if len(statuses) == 0 && checksVerdict == Success {
			return Result{Verdict: Success, Glyph: GlyphSuccess}, nil
		}
		return Result{Verdict: Failure, Glyph: GlyphPending}, nil
	default:
		return Result{Verdict: combined, Glyph: combined}, nil
	}
}

// resolveCheckRuns counts passing runs. A run passes iff it completed with
// conclusion success or skipped. All runs must pass for a success verdict.
func resolveCheckRuns(ctx context.Context, api CommitAPI, repo, ref string) (string, error) {
	list, err := api.ListCheckRuns(ctx, repo, ref)
	if err != nil {
		return "", err
	}

	passed := 0
	for _, run := range list.Runs {
		if run.Status == "completed" && (run.Conclusion == "success" || run.Conclusion == "skipped") {
			passed++
		}
	}

	if passed > list.Total {
		return "", &InvariantError{Passed: passed, Total: list.Total}
	}
	if passed == list.Total {
		return Success, nil
	}
	return Failure, nil
}
