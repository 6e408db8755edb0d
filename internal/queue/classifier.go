package queue

import "prqueue/internal/status"

// Buckets holds the four triage categories in their fixed priority order.
// A record lands in at most one bucket; records already handled (approved
// with nothing else outstanding) land in none.
type Buckets struct {
	NeedsReviewer           []Record
	NeedsChanges            []Record
	NeedsReview             []Record
	NeedsConflictResolution []Record
}

// Empty reports whether there is nothing to report.
func (b Buckets) Empty() bool {
	return b.Total() == 0
}

// Total is the number of classified records across all buckets.
func (b Buckets) Total() int {
	return len(b.NeedsReviewer) + len(b.NeedsChanges) + len(b.NeedsReview) + len(b.NeedsConflictResolution)
}

// Classify partitions records into buckets. Only pull requests with green CI
// that are not drafts are considered at all; everything else is not yet
// actionable. Rules are evaluated in priority order and the first match
// wins, so the buckets are mutually exclusive. Bucket order follows the
// input order, which the search API already sorted by update time ascending.
func Classify(records []Record) Buckets {
	var buckets Buckets

	for _, r := range records {
		if r.Status != status.Success || r.Draft {
			continue
		}

		switch {
		// 1. Nobody asked to review, no verdicts yet: the author needs to
		// find a reviewer.
		case !r.ChangesRequested && !r.Approved && len(r.RequestedReviewers) == 0 &&
			r.MergeableState != MergeableStateDirty:
			buckets.NeedsReviewer = append(buckets.NeedsReviewer, r)

		// 2. A reviewer requested changes: back to the author.
		case r.ChangesRequested && r.MergeableState != MergeableStateDirty:
			buckets.NeedsChanges = append(buckets.NeedsChanges, r)

		// 3. Reviewers are assigned but have not reviewed yet.
		case !r.ChangesRequested && !r.Approved && len(r.RequestedReviewers) > 0 &&
			r.MergeableState != MergeableStateDirty:
			buckets.NeedsReview = append(buckets.NeedsReview, r)

		// 4. Conflicts or behind the base branch: the author must rebase.
		case !r.ChangesRequested &&
			(r.MergeableState == MergeableStateDirty || r.MergeableState == MergeableStateBehind):
			buckets.NeedsConflictResolution = append(buckets.NeedsConflictResolution, r)
		}
	}

	return buckets
}
