package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finvarta/annbrief/models"
	"github.com/finvarta/annbrief/pkg/doctext"
	"github.com/finvarta/annbrief/pkg/extract"
	"github.com/finvarta/annbrief/pkg/fetcher"
	"github.com/finvarta/annbrief/pkg/ledger"
	"github.com/finvarta/annbrief/pkg/mailer"
	"github.com/finvarta/annbrief/pkg/report"
	"github.com/finvarta/annbrief/pkg/summarize"
)

// testModeLimit caps the batch in test mode.
const testModeLimit = 3

// Options selects the run's entry-point modes.
type Options struct {
	TestMode     bool
	SampleMode   bool
	Notify       bool
	CookieHeader string
}

// Mode names the run for history and logs.
func (o Options) Mode() string {
	switch {
	case o.SampleMode:
		return "sample"
	case o.TestMode:
		return "test"
	default:
		return "full"
	}
}

// Summary is the user-visible result of a run. The core pipeline result
// (counts, ledger durability) and the collaborator results (report,
// notification) are reported independently because they fail
// independently.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Total         int
	Previous      int
	NewCount      int
	FailedCount   int
	LedgerCorrupt bool

	ReportRendered bool
	ReportPath     string
	Notified       bool
	EmailsSent     int
	EmailsFailed   int

	NewRecords []ledger.Record
}

// Execute performs one full run: fetch listing, extract pairs, filter
// against the ledger, process new units, persist the merged ledger, then
// hand the new subset to the report and notification collaborators.
//
// A returned error means the run aborted before producing durable
// results (listing fetch or ledger write); per-unit failures and
// collaborator failures are carried in the Summary instead.
func Execute(ctx context.Context, logger *slog.Logger, cfg models.Config, opts Options) (*Summary, error) {
	summary := &Summary{StartedAt: time.Now()}
	defer func() { summary.FinishedAt = time.Now() }()

	// Step 1: listing markup.
	var html string
	if opts.SampleMode {
		logger.Info("Using sample listing markup")
		html = SampleListingHTML
	} else {
		f := fetcher.NewFetcher(cfg.UserAgent, 20*time.Second)
		cookie := opts.CookieHeader
		if cookie == "" {
			cookie = cfg.CookieHeader
		}
		logger.Info("Fetching announcements listing", "url", cfg.AnnouncementsURL, "cookies", cookie != "")
		var err error
		html, err = f.GetListing(ctx, cfg.AnnouncementsURL, cookie)
		if err != nil {
			return summary, fmt.Errorf("failed to fetch announcements listing: %w", err)
		}
	}

	// Step 2: pair extraction.
	hrefs := extract.CollectHrefs(html)
	singles, pairs := extract.Groups(hrefs)
	logger.Info("Extracted announcement links", "hrefs", len(hrefs), "direct_pdf_links", len(singles), "company_pdf_pairs", len(pairs))

	// Step 3: ledger load and incremental filter.
	existing, corrupt := ledger.Load(cfg.SummariesFile)
	summary.LedgerCorrupt = corrupt
	if corrupt {
		// Dedup history is silently discarded here; the run proceeds
		// with an empty prior set rather than failing.
		logger.Warn("Ledger file is unparsable, treating as empty history", "path", cfg.SummariesFile)
	}
	summary.Previous = len(existing)

	fresh, skipped := ledger.FilterNew(pairs, ledger.IdentitySet(existing))
	for _, s := range skipped {
		logger.Info("Skipping already processed announcement", "pdf_url", s.PDFRef)
	}
	logger.Info("Incremental filter complete", "previously_processed", len(existing), "new", len(fresh), "skipped", len(skipped))

	if opts.TestMode && len(fresh) > testModeLimit {
		logger.Info("Test mode: capping batch", "limit", testModeLimit, "candidates", len(fresh))
		fresh = fresh[:testModeLimit]
	}

	// Step 4: per-unit execution.
	var newRecords []ledger.Record
	if len(fresh) > 0 {
		pipeline := NewPipeline(
			fetcher.NewFetcher(cfg.UserAgent, 60*time.Second),
			doctext.NewExtractor(),
			summarize.NewOpenAIClient(summarize.Options{
				APIKey:      cfg.OpenAIAPIKey,
				Model:       cfg.OpenAIModel,
				MaxTokens:   cfg.OpenAIMaxTokens,
				Temperature: cfg.OpenAITemperature,
				Timeout:     cfg.OpenAITimeout,
			}),
			logger,
			cfg.BaseURL, cfg.MaxTextLength, cfg.DelayBetweenRequests, cfg.RateLimitCooldown,
		)
		newRecords = pipeline.Process(ctx, fresh)
	} else {
		logger.Info("No new announcements to process")
	}

	return assemble(logger, cfg, opts, summary, existing, newRecords)
}

// assemble merges old and new records, persists the ledger, and hands the
// new subset to the report and notification collaborators.
func assemble(logger *slog.Logger, cfg models.Config, opts Options, summary *Summary,
	existing, newRecords []ledger.Record) (*Summary, error) {

	summary.NewCount = len(newRecords)
	summary.NewRecords = newRecords
	for _, r := range newRecords {
		if r.Failed() {
			summary.FailedCount++
		}
	}

	merged := make([]ledger.Record, 0, len(existing)+len(newRecords))
	merged = append(merged, existing...)
	merged = append(merged, newRecords...)
	summary.Total = len(merged)

	// The ledger write is the run's durability guarantee: a failure here
	// is surfaced distinctly even when every unit succeeded.
	if err := ledger.Persist(cfg.SummariesFile, merged); err != nil {
		return summary, fmt.Errorf("failed to persist ledger: %w", err)
	}
	logger.Info("Ledger persisted", "path", cfg.SummariesFile, "records", len(merged))

	if len(newRecords) == 0 {
		logger.Info("No new results; skipping report and notification")
		return summary, nil
	}

	if err := report.Generate(cfg.ReportFile, "New Corporate Announcements", newRecords); err != nil {
		logger.Error("Report generation failed", "path", cfg.ReportFile, "error", err)
	} else {
		summary.ReportRendered = true
		summary.ReportPath = cfg.ReportFile
		logger.Info("Report generated", "path", cfg.ReportFile, "records", len(newRecords))
	}

	if opts.Notify && cfg.EmailConfigured() {
		if !summary.ReportRendered {
			logger.Warn("Skipping notification: no report to attach")
			return summary, nil
		}
		res, err := mailer.SendReport(context.Background(), cfg, cfg.ReportFile)
		summary.EmailsSent = res.Sent
		summary.EmailsFailed = res.Failed
		if err != nil {
			logger.Error("Notification delivery failed", "error", err)
		} else {
			summary.Notified = res.Sent > 0
			logger.Info("Notification sent", "recipients", res.Sent, "failed", res.Failed)
		}
	} else if opts.Notify {
		logger.Warn("Notify requested but email is not configured")
	}

	return summary, nil
}
