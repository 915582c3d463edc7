// Package run drives a single processing run: filter new announcements,
// execute each unit with failure isolation, and assemble the results.
package run

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finvarta/annbrief/pkg/extract"
	"github.com/finvarta/annbrief/pkg/ledger"
	"github.com/finvarta/annbrief/pkg/summarize"
)

// FailureKind tags a unit outcome. Presentation classifies by tag, never
// by matching strings.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRequest
	FailureExtraction
	FailureEmptyText
	FailureAPI
	FailureRateLimit
)

// Outcome is the tagged result of processing one unit: the summary text on
// success, or a failure kind and message.
type Outcome struct {
	Kind FailureKind
	Text string
}

func (o Outcome) Failed() bool { return o.Kind != FailureNone }

// RecordSummary renders the outcome to the summary text persisted in the
// ledger. Failures carry their typed prefix so old and new ledgers
// classify identically.
func (o Outcome) RecordSummary() string {
	switch o.Kind {
	case FailureNone:
		return o.Text
	case FailureRequest:
		return ledger.PrefixRequestError + " " + o.Text
	case FailureExtraction:
		return ledger.PrefixProcessingError + " " + o.Text
	case FailureEmptyText:
		return ledger.PrefixNoText + " from PDF."
	default: // FailureAPI, FailureRateLimit
		return ledger.PrefixAPIError + " " + o.Text
	}
}

// DocumentFetcher acquires artifact bytes for a document URL.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// TextExtractor derives plain text from artifact bytes.
type TextExtractor interface {
	Extract(data []byte, contentType, sourceURL string) (string, error)
	DetectLanguage(text string) string
}

// Pipeline executes filtered units sequentially. Sequencing plus the
// inter-request delay is the rate-limit mechanism; there is deliberately
// no concurrent unit processing.
type Pipeline struct {
	Fetcher    DocumentFetcher
	Extractor  TextExtractor
	Summarizer summarize.Client
	Logger     *slog.Logger

	BaseURL       string
	MaxTextLength int
	Delay         time.Duration
	Cooldown      time.Duration

	sleep func(time.Duration)
}

func NewPipeline(f DocumentFetcher, e TextExtractor, s summarize.Client, logger *slog.Logger,
	baseURL string, maxTextLength int, delay, cooldown time.Duration) *Pipeline {
	return &Pipeline{
		Fetcher:       f,
		Extractor:     e,
		Summarizer:    s,
		Logger:        logger,
		BaseURL:       baseURL,
		MaxTextLength: maxTextLength,
		Delay:         delay,
		Cooldown:      cooldown,
		sleep:         time.Sleep,
	}
}

// Process runs every unit in filter order and returns exactly one record
// per unit, in input order. A unit failure never prevents later units from
// being attempted.
func (p *Pipeline) Process(ctx context.Context, pairs []extract.Pair) []ledger.Record {
	records := make([]ledger.Record, 0, len(pairs))
	for i, pair := range pairs {
		p.Logger.Info("Processing announcement",
			"index", i+1, "total", len(pairs),
			"company", extract.CompanyName(pair.CompanyRef), "pdf_url", pair.PDFRef)

		records = append(records, p.processUnit(ctx, pair))

		if i < len(pairs)-1 {
			p.sleep(p.Delay)
		}
	}
	return records
}

func (p *Pipeline) processUnit(ctx context.Context, pair extract.Pair) ledger.Record {
	company := extract.CompanyName(pair.CompanyRef)
	rec := ledger.Record{
		Company:    company,
		CompanyURL: p.BaseURL + pair.CompanyRef,
		PDFURL:     pair.PDFRef,
		ModelUsed:  p.Summarizer.Model(),
	}

	data, contentType, err := p.Fetcher.GetDocument(ctx, pair.PDFRef)
	if err != nil {
		p.Logger.Warn("Document fetch failed", "company", company, "pdf_url", pair.PDFRef, "error", err)
		rec.Summary = Outcome{Kind: FailureRequest, Text: err.Error()}.RecordSummary()
		return rec
	}

	text, err := p.Extractor.Extract(data, contentType, pair.PDFRef)
	if err != nil {
		p.Logger.Warn("Text extraction failed", "company", company, "pdf_url", pair.PDFRef, "error", err)
		rec.Summary = Outcome{Kind: FailureExtraction, Text: err.Error()}.RecordSummary()
		return rec
	}

	rec.TextLength = len(text)
	rec.Language = p.Extractor.DetectLanguage(text)

	if text == "" {
		p.Logger.Warn("Document yielded no text", "company", company, "pdf_url", pair.PDFRef)
		rec.Summary = Outcome{Kind: FailureEmptyText}.RecordSummary()
		return rec
	}

	prepared, cut := summarize.NormalizeAndTruncate(text, p.MaxTextLength)
	if cut {
		p.Logger.Info("Document text truncated", "company", company, "budget", p.MaxTextLength, "original_length", len(text))
	}

	outcome := p.summarizeWithRetry(ctx, prepared, company)
	rec.Summary = outcome.RecordSummary()
	return rec
}

// summarizeWithRetry asks the collaborator for a summary with at most one
// retry, taken only after a rate-limit signal and a cooldown pause. A
// second rate-limit signal is recorded, not retried.
func (p *Pipeline) summarizeWithRetry(ctx context.Context, text, company string) Outcome {
	const maxRetries = 1
	for attempt := 0; ; attempt++ {
		s, err := p.Summarizer.Summarize(ctx, text, company)
		if err == nil {
			return Outcome{Kind: FailureNone, Text: s}
		}
		if errors.Is(err, summarize.ErrRateLimited) {
			if attempt < maxRetries {
				p.Logger.Warn("Rate limit hit, cooling down", "company", company, "cooldown", p.Cooldown)
				p.sleep(p.Cooldown)
				continue
			}
			return Outcome{Kind: FailureRateLimit, Text: err.Error()}
		}
		return Outcome{Kind: FailureAPI, Text: err.Error()}
	}
}
