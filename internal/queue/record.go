// Package queue builds the review queue: it enriches raw pull request
// search results with review and CI signals and partitions them into
// mutually exclusive triage buckets.
package queue

import "time"

// Mergeable states reported by GitHub that the classifier branches on.
const (
	MergeableStateClean  = "clean"
	MergeableStateDirty  = "dirty"
	MergeableStateBehind = "behind"
)

// Record is the fully enriched view of one open pull request, rebuilt every
// run. The status verdict is derived once at enrichment time and never
// mutated afterwards.
type Record struct {
	// Identity
	Number  int
	Org     string
	Repo    string
	HTMLURL string

	// Content snapshot
	Title     string
	Additions int
	Deletions int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Derived
	LastUpdatedDays int

	// Review signals
	Draft              bool
	Mergeable          *bool
	Rebaseable         *bool
	MergeableState     string
	ChangesRequested   bool
	Approved           bool
	RequestedReviewers []string

	// CI verdict
	Status string
	Glyph  string

	// Author's raw GitHub login. Resolved to a display identity only at
	// format time so the record itself stays privacy-neutral.
	Author string
}
