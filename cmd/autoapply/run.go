package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rafael/autoapply/internal/compose"
	"github.com/rafael/autoapply/internal/config"
	"github.com/rafael/autoapply/internal/db"
	"github.com/rafael/autoapply/internal/extract"
	"github.com/rafael/autoapply/internal/jobs"
	"github.com/rafael/autoapply/internal/keywords"
	"github.com/rafael/autoapply/internal/mail"
	"github.com/rafael/autoapply/internal/match"
	"github.com/rafael/autoapply/internal/profile"
	"github.com/rafael/autoapply/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the auto-apply pipeline end-to-end",
	Long: `Runs the whole pipeline from the command line: extract a profile from the
résumé, derive search terms, aggregate and rank job postings, compose an
application per top match and optionally send them by email.

Without --send this is a dry run that prints the composed applications.`,
	RunE: runPipelineCmd,
}

var (
	runResume   string
	runKeywords string
	runLocation string
	runTop      int
	runSend     bool
)

func init() {
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to résumé file (.pdf, .docx or .doc)")
	runCommand.Flags().StringVarP(&runKeywords, "keywords", "k", "", "Comma-separated search keywords (overrides derived ones)")
	runCommand.Flags().StringVarP(&runLocation, "location", "l", "", "Preferred location (overrides derived one)")
	runCommand.Flags().IntVar(&runTop, "top", mail.MaxBatchSize, "Number of top matches to apply to")
	runCommand.Flags().BoolVar(&runSend, "send", false, "Actually send the applications by email")
	_ = runCommand.MarkFlagRequired("resume")
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := context.Background()

	deps, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(runResume)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	text, err := extract.Text(filepath.Base(runResume), data)
	if err != nil {
		return fmt.Errorf("failed to extract resume text: %w", err)
	}

	var primary profile.Extractor
	if deps.LLM != nil {
		primary = profile.NewLLMExtractor(deps.LLM)
	}
	prof, err := profile.NewPolicy(primary, profile.NewHeuristicExtractor()).Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to extract profile: %w", err)
	}
	fmt.Printf("Profile: %s <%s>, %d skills, %.1f years of experience\n",
		prof.Name, prof.Email, len(prof.Skills), prof.TotalYearsExperience)

	terms := keywords.NewDeriver(deps.LLM).Derive(ctx, prof)
	if runKeywords != "" {
		terms.Keywords = splitComma(runKeywords)
	}
	if runLocation != "" {
		terms.Location = runLocation
	}
	fmt.Printf("Searching: %s (%s)\n", strings.Join(terms.Keywords, ", "), terms.Location)

	aggConfig := jobs.DefaultAggregatorConfig()
	aggConfig.LegacyDedup = cfg.LegacyDedup
	aggregator := jobs.NewAggregator(deps.Adapters, db.NewJobCache(deps.DB, db.DefaultJobCacheTTL), aggConfig)

	postings, err := aggregator.Aggregate(ctx, jobs.Query{Keywords: terms.Keywords, Location: terms.Location})
	if err != nil {
		return fmt.Errorf("failed to aggregate jobs: %w", err)
	}
	fmt.Printf("Found %d postings\n", len(postings))
	if len(postings) == 0 {
		return nil
	}

	selected := postings
	if deps.LLM != nil {
		results, err := match.NewMatcher(deps.LLM).Rank(ctx, prof, postings)
		if err != nil {
			fmt.Printf("Matching failed, keeping board order: %v\n", err)
		} else {
			selected = make([]types.JobPosting, 0, len(results))
			for _, result := range results {
				selected = append(selected, result.Job)
			}
		}
	}
	if len(selected) > runTop {
		selected = selected[:runTop]
	}

	composer := compose.NewComposer(deps.LLM)
	enricher := jobs.NewEnricher()
	enricher.UseBrowser = cfg.UseBrowser

	var drafts []*types.ApplicationDraft
	for i := range selected {
		job := selected[i]
		enricher.Enrich(ctx, &job)

		draft, err := composer.Compose(ctx, prof, job)
		if err != nil {
			var noRecipient *compose.NoRecipientFoundError
			if errors.As(err, &noRecipient) && draft != nil {
				fmt.Printf("  ! %s\n", err)
			} else {
				fmt.Printf("  ! failed to compose for %s at %s: %v\n", job.Title, job.Company, err)
				continue
			}
		}
		drafts = append(drafts, draft)
		fmt.Printf("  - %s -> %s (fallback letter: %v)\n", draft.Subject, orUnresolved(draft.Recipient), draft.UsedFallback)
	}
	if len(drafts) == 0 {
		return fmt.Errorf("no applications could be composed")
	}

	if !runSend {
		fmt.Println("Dry run complete, pass --send to dispatch the applications")
		return nil
	}
	if !cfg.MailConfigured() {
		return fmt.Errorf("no mail transport configured: %s", strings.Join(cfg.MailConfigErrors(), ", "))
	}

	resume := &mail.Attachment{
		Filename:    filepath.Base(runResume),
		Content:     data,
		ContentType: resumeContentType(runResume),
	}
	dispatched, err := mail.NewDispatcher(deps.Primary, deps.Fallback, deps.DB).
		Dispatch(ctx, prof, drafts, resume)
	if err != nil {
		return fmt.Errorf("failed to dispatch applications: %w", err)
	}

	sent := 0
	for _, draft := range dispatched {
		if draft.Status == types.StatusSent {
			sent++
		}
	}
	fmt.Printf("Sent %d of %d applications\n", sent, len(dispatched))
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orUnresolved(recipient string) string {
	if recipient == "" {
		return "(no recipient found)"
	}
	return recipient
}

func resumeContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.MediaTypePDF
	case ".docx":
		return extract.MediaTypeDOCX
	case ".doc":
		return extract.MediaTypeDOC
	default:
		return "application/octet-stream"
	}
}
