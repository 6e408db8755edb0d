package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prqueue/internal/queue"
	"prqueue/internal/vault"
)

func testFormatter(v *vault.Vault, style Style, jiraExists bool) *Formatter {
	f := NewFormatter(v, style)
	f.probeURL = func(url string) bool { return jiraExists }
	return f
}

func record(number int, title string) queue.Record {
	return queue.Record{
		Number:          number,
		Repo:            "images",
		HTMLURL:         "https://github.com/osbuild/images/pull/1",
		Title:           title,
		Additions:       12,
		Deletions:       4,
		LastUpdatedDays: 3,
		Author:          "octocat",
	}
}

func TestBuildEmptyBuckets(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)
	assert.Empty(t, f.Build(queue.Buckets{}))
}

func TestBuildNeedsReviewerEntry(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)

	message := f.Build(queue.Buckets{
		NeedsReviewer: []queue.Record{record(1, "Fix the widget")},
	})

	assert.Contains(t, message, "*We need a reviewer*")
	assert.Contains(t, message, "*images*: <https://github.com/osbuild/images/pull/1|Fix the widget> (+12/-4) updated 3d ago")
}

func TestBuildNeedsChangesMentionsAuthor(t *testing.T) {
	v := vault.New([]vault.Entry{{Login: "octocat", PrivateID: "U01OCTO"}})
	f := testFormatter(v, StyleSlack, false)

	message := f.Build(queue.Buckets{
		NeedsChanges: []queue.Record{record(2, "Fix the widget")},
	})

	assert.Contains(t, message, "*We need changes*")
	assert.Contains(t, message, "needs changes by <@U01OCTO>")
}

func TestBuildNeedsReviewMentionsReviewers(t *testing.T) {
	v := vault.New([]vault.Entry{{Login: "hubber", PrivateID: "U02HUBB"}})
	f := testFormatter(v, StyleSlack, false)

	r := record(3, "Fix the widget")
	r.RequestedReviewers = []string{"hubber", "stranger"}

	message := f.Build(queue.Buckets{NeedsReview: []queue.Record{r}})

	assert.Contains(t, message, "*We need a review*")
	assert.Contains(t, message, "<@U02HUBB>, <https://github.com/stranger|@stranger>")
}

func TestBuildConflictResolutionMentionsAuthor(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)

	message := f.Build(queue.Buckets{
		NeedsConflictResolution: []queue.Record{record(4, "Fix the widget")},
	})

	assert.Contains(t, message, "*Update required*")
	assert.Contains(t, message, "<https://github.com/octocat|@octocat>")
}

func TestBuildJiraKeyLinking(t *testing.T) {
	t.Run("existing issue gets its own link", func(t *testing.T) {
		f := testFormatter(vault.New(nil), StyleSlack, true)

		message := f.Build(queue.Buckets{
			NeedsReviewer: []queue.Record{record(5, "HMS-1234: fix the widget")},
		})

		assert.Contains(t, message, "<https://issues.redhat.com/browse/HMS-1234|HMS-1234>: ")
		assert.Contains(t, message, "<https://github.com/osbuild/images/pull/1|fix the widget>")
	})

	t.Run("unknown issue keeps plain title", func(t *testing.T) {
		f := testFormatter(vault.New(nil), StyleSlack, false)

		message := f.Build(queue.Buckets{
			NeedsReviewer: []queue.Record{record(5, "HMS-1234: fix the widget")},
		})

		assert.NotContains(t, message, "issues.redhat.com")
		assert.Contains(t, message, "<https://github.com/osbuild/images/pull/1|HMS-1234: fix the widget>")
	})

	t.Run("title without key is untouched", func(t *testing.T) {
		f := testFormatter(vault.New(nil), StyleSlack, true)

		message := f.Build(queue.Buckets{
			NeedsReviewer: []queue.Record{record(5, "fix the widget")},
		})

		assert.NotContains(t, message, "issues.redhat.com")
	})
}

func TestBuildMarkdownStyle(t *testing.T) {
	v := vault.New([]vault.Entry{{Login: "octocat", PrivateID: "U01OCTO"}})
	f := testFormatter(v, StyleMarkdown, false)

	message := f.Build(queue.Buckets{
		NeedsChanges: []queue.Record{record(6, "Fix the widget")},
	})

	assert.Contains(t, message, "## We need changes")
	assert.Contains(t, message, "- **images**: [Fix the widget](https://github.com/osbuild/images/pull/1)")
	// Markdown output is for public surfaces: never a Slack user ID.
	assert.NotContains(t, message, "U01OCTO")
	assert.Contains(t, message, "[@octocat](https://github.com/octocat)")
}

func TestBuildTruncatesLongTitles(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)

	long := strings.Repeat("x", 300)
	message := f.Build(queue.Buckets{
		NeedsReviewer: []queue.Record{record(7, long)},
	})

	assert.NotContains(t, message, long)
	assert.Contains(t, message, "…")
}

func TestBuildIsIdempotent(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)
	buckets := queue.Buckets{
		NeedsReviewer: []queue.Record{record(1, "Fix the widget")},
		NeedsChanges:  []queue.Record{record(2, "Other fix")},
	}

	first := f.Build(buckets)
	second := f.Build(buckets)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestBuildSectionOrder(t *testing.T) {
	f := testFormatter(vault.New(nil), StyleSlack, false)
	buckets := queue.Buckets{
		NeedsReviewer:           []queue.Record{record(1, "a")},
		NeedsChanges:            []queue.Record{record(2, "b")},
		NeedsReview:             []queue.Record{{Number: 3, Repo: "images", Title: "c", RequestedReviewers: []string{"r"}}},
		NeedsConflictResolution: []queue.Record{record(4, "d")},
	}

	message := f.Build(buckets)

	reviewer := strings.Index(message, "*We need a reviewer*")
	changes := strings.Index(message, "*We need changes*")
	review := strings.Index(message, "*We need a review*")
	update := strings.Index(message, "*Update required*")

	assert.True(t, reviewer < changes && changes < review && review < update,
		"sections out of order: %s", message)
}
