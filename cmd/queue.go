package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"prqueue/internal/config"
	"prqueue/internal/digest"
	"prqueue/internal/github"
	"prqueue/internal/queue"
	"prqueue/internal/slack"
	"prqueue/internal/vault"
)

// Injectable for testing
var newGitHubClient = func(org string) (github.API, error) {
	return github.NewClient(org)
}

type queueOptions struct {
	configPath string
	org        string
	repo       string
	queue      bool
	dryRun     bool
	format     string
}

func newQueueCmd() *cobra.Command {
	opts := &queueOptions{}

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Build and deliver the review queue digest",
		Long: `Fetch all open pull requests for an organisation (or a single
repository), classify the ones with green CI into triage buckets and post
the resulting digest to the configured Slack webhook.

The digest is always printed to the log. Private Slack user IDs are masked
in the printed copy when running inside GitHub Actions. --dry-run performs
all fetch and classification work but suppresses the Slack delivery.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&opts.org, "org", "", "GitHub organisation")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Single repository within --org")
	cmd.Flags().BoolVar(&opts.queue, "queue", true, "Build the review queue digest")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Don't send Slack notifications")
	cmd.Flags().StringVar(&opts.format, "format", string(digest.StyleSlack), "Digest style: slack or markdown")

	return cmd
}

func runQueue(ctx context.Context, opts *queueOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.org != "" {
		cfg.Org = opts.org
	}
	if opts.repo != "" {
		cfg.Repo = opts.repo
	}
	if cfg.Org == "" {
		return fmt.Errorf("no organisation given: set --org, PRQUEUE_ORG or the config file")
	}

	style := digest.Style(opts.format)
	if style != digest.StyleSlack && style != digest.StyleMarkdown {
		return fmt.Errorf("unknown format %q: want slack or markdown", opts.format)
	}

	runID := uuid.New().String()
	fmt.Printf("pr-review-queue run %s\n", runID)

	ghClient, err := newGitHubClient(cfg.Org)
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	idVault := loadVault(cfg)

	summaries, archived, err := fetchPullRequests(ctx, ghClient, cfg)
	if err != nil {
		// Foundational fetch: nothing to work with, the run aborts.
		return err
	}

	enricher := queue.NewEnricher(ghClient, cfg.Org)
	records, err := enricher.EnrichAll(ctx, summaries, archived)
	if err != nil {
		return err
	}

	if !opts.queue {
		fmt.Printf("✓ Enriched %d pull requests, queue building disabled.\n", len(records))
		return nil
	}

	buckets := queue.Classify(records)
	if buckets.Empty() {
		fmt.Println("No pull requests found that match our criteria. Exiting.")
		return nil
	}

	message := digest.NewFormatter(idVault, style).Build(buckets)

	// The digest always reaches the operator log; inside GitHub Actions the
	// printed copy is masked so private user IDs cannot leak into CI logs.
	if slack.InActions() {
		digest.PrintPreview(idVault.MaskForLogging(message))
	} else {
		digest.PrintPreview(message)
	}

	if opts.dryRun {
		fmt.Println("This is just a dry run, not sending Slack notifications.")
		return nil
	}

	if cfg.WebhookURL == "" {
		fmt.Println("No Slack webhook supplied.")
		return nil
	}

	if link := slack.ActionsRunLink(); link != "" {
		message = link + ": " + message
	}
	if err := slack.NewWebhook(cfg.WebhookURL).Notify(ctx, message); err != nil {
		return fmt.Errorf("failed to deliver digest: %w", err)
	}

	fmt.Printf("✓ Delivered digest for %d pull requests.\n", buckets.Total())
	return nil
}

// loadVault decrypts the identity store. Failure is never fatal for the
// queue run: the digest degrades to public profile links.
func loadVault(cfg *config.Config) *vault.Vault {
	if cfg.NicksKey == "" {
		fmt.Println("No key provided to decrypt Slack nicks.")
		return vault.New(nil)
	}

	v, err := vault.LoadFile(cfg.NicksFile, cfg.NicksKey)
	if err != nil {
		var decErr *vault.DecryptionError
		if errors.As(err, &decErr) {
			fmt.Printf("⚠ Identity store could not be decrypted: %v\n", decErr)
		} else {
			fmt.Printf("⚠ Identity store unavailable: %v\n", err)
		}
		fmt.Println("Falling back to public profile links.")
		return vault.New(nil)
	}

	return v
}

// fetchPullRequests performs the foundational search plus, for org-wide
// runs, the archived repository listing used to filter the results.
func fetchPullRequests(ctx context.Context, ghClient github.API, cfg *config.Config) ([]github.PullRequestSummary, []string, error) {
	if cfg.Repo != "" {
		fmt.Printf("Fetching pull requests from one repository: %s/%s\n", cfg.Org, cfg.Repo)
	} else {
		fmt.Printf("Fetching pull requests from an entire organisation: %s\n", cfg.Org)
	}

	summaries, err := ghClient.SearchOpenPullRequests(ctx, cfg.Repo)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't get any pull requests: %w", err)
	}
	fmt.Printf("%d pull requests retrieved.\n", len(summaries))

	// Archived/disabled repositories are only relevant when the search
	// spans the whole organisation.
	var archived []string
	if cfg.Repo == "" {
		archived, err = ghClient.ListArchivedRepos(ctx)
		if err != nil {
			fmt.Printf("Couldn't get repositories for organisation %s: %v\n", cfg.Org, err)
			archived = nil
		}
		if len(archived) > 0 {
			fmt.Printf("The following repositories are archived or disabled and will be ignored:\n  %s\n", strings.Join(archived, ", "))
		}
	}

	return summaries, archived, nil
}
