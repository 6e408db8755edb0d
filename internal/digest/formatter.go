// Package digest renders classified pull requests into a notification
// message, substituting author and reviewer identities through the vault at
// the last possible moment.
package digest

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"prqueue/internal/queue"
	"prqueue/internal/vault"
)

// Style selects the output markup.
type Style string

const (
	StyleSlack    Style = "slack"
	StyleMarkdown Style = "markdown"
)

// maxTitleWidth keeps digest lines scannable; longer titles are truncated
// on display-cell boundaries.
const maxTitleWidth = 120

// jiraKeyRegexp matches titles that lead with a Jira issue key,
// e.g. "HMS-1234: fix the widget".
var jiraKeyRegexp = regexp.MustCompile(`^([A-Z]+-\d+)([: -]+)(.+)`)

const jiraBrowseURL = "https://issues.redhat.com/browse/"

// Formatter renders triage buckets into one digest message.
type Formatter struct {
	vault *vault.Vault
	style Style

	// probeURL reports whether a URL resolves; swapped out in tests.
	probeURL func(url string) bool
}

// NewFormatter creates a formatter rendering in the given style. Identities
// are resolved through v, which may be empty (public links only).
func NewFormatter(v *vault.Vault, style Style) *Formatter {
	return &Formatter{
		vault:    v,
		style:    style,
		probeURL: headProbe,
	}
}

func headProbe(url string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Head(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Build renders the digest for all non-empty buckets. Returns the empty
// string when there is nothing to report.
func (f *Formatter) Build(buckets queue.Buckets) string {
	if buckets.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString(f.greeting())

	f.section(&b, "We need a reviewer", buckets.NeedsReviewer, func(r queue.Record) string {
		return f.entry(r)
	})
	f.section(&b, "We need changes", buckets.NeedsChanges, func(r queue.Record) string {
		return fmt.Sprintf("%s needs changes by %s", f.entry(r), f.mention(r.Author))
	})
	f.section(&b, "We need a review", buckets.NeedsReview, func(r queue.Record) string {
		mentions := make([]string, 0, len(r.RequestedReviewers))
		for _, reviewer := range r.RequestedReviewers {
			mentions = append(mentions, f.mention(reviewer))
		}
		return fmt.Sprintf("%s %s", f.entry(r), strings.Join(mentions, ", "))
	})
	f.section(&b, "Update required", buckets.NeedsConflictResolution, func(r queue.Record) string {
		return fmt.Sprintf("%s %s", f.entry(r), f.mention(r.Author))
	})

	return b.String()
}

func (f *Formatter) greeting() string {
	if f.style == StyleSlack {
		return "Good morning! :wave: Here is today's pull request review queue."
	}
	return "Good morning! Here is today's pull request review queue."
}

func (f *Formatter) section(b *strings.Builder, title string, records []queue.Record, render func(queue.Record) string) {
	if len(records) == 0 {
		return
	}

	if f.style == StyleSlack {
		fmt.Fprintf(b, "\n\n*%s*", title)
		for _, r := range records {
			fmt.Fprintf(b, "\n  • %s", render(r))
		}
		return
	}

	fmt.Fprintf(b, "\n\n## %s\n", title)
	for _, r := range records {
		fmt.Fprintf(b, "\n- %s", render(r))
	}
}

// entry renders the common line shared by every bucket:
// repo, linked title, size and staleness.
func (f *Formatter) entry(r queue.Record) string {
	title := runewidth.Truncate(r.Title, maxTitleWidth, "…")
	return fmt.Sprintf("%s: %s (+%d/-%d) updated %dd ago",
		f.bold(r.Repo), f.titleLink(title, r.HTMLURL), r.Additions, r.Deletions, r.LastUpdatedDays)
}

// titleLink links the title to the pull request, splitting out a leading
// Jira key into its own hyperlink when the issue actually exists.
func (f *Formatter) titleLink(title, htmlURL string) string {
	match := jiraKeyRegexp.FindStringSubmatch(title)
	if match == nil {
		return f.link(title, htmlURL)
	}

	jiraKey, separator, remainder := match[1], match[2], match[3]
	jiraURL := jiraBrowseURL + jiraKey
	if !f.probeURL(jiraURL) {
		return f.link(title, htmlURL)
	}

	return f.link(jiraKey, jiraURL) + separator + f.link(remainder, htmlURL)
}

func (f *Formatter) bold(text string) string {
	if f.style == StyleSlack {
		return "*" + text + "*"
	}
	return "**" + text + "**"
}

func (f *Formatter) link(text, url string) string {
	if f.style == StyleSlack {
		return fmt.Sprintf("<%s|%s>", url, text)
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

// mention resolves a GitHub login to the style's identity form. Slack output
// goes through the vault; markdown output always uses public profile links.
func (f *Formatter) mention(login string) string {
	if f.style == StyleSlack {
		return f.vault.ResolveDisplay(login)
	}
	return fmt.Sprintf("[@%s](https://github.com/%s)", login, login)
}
