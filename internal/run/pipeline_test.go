package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/finvarta/annbrief/pkg/extract"
	"github.com/finvarta/annbrief/pkg/ledger"
	"github.com/finvarta/annbrief/pkg/summarize"
)

type fakeFetcher struct {
	failURLs map[string]error
	docs     map[string][]byte
}

func (f *fakeFetcher) GetDocument(_ context.Context, url string) ([]byte, string, error) {
	if err, ok := f.failURLs[url]; ok {
		return nil, "", err
	}
	if doc, ok := f.docs[url]; ok {
		return doc, "application/pdf", nil
	}
	return []byte("default document body"), "application/pdf", nil
}

type fakeExtractor struct {
	failOn map[string]error
	texts  map[string]string
}

func (e *fakeExtractor) Extract(data []byte, _, sourceURL string) (string, error) {
	if err, ok := e.failOn[sourceURL]; ok {
		return "", err
	}
	if t, ok := e.texts[sourceURL]; ok {
		return t, nil
	}
	return string(data), nil
}

func (e *fakeExtractor) DetectLanguage(string) string { return "English" }

type fakeSummarizer struct {
	calls     []string // texts received, in order
	responses []func() (string, error)
}

func (s *fakeSummarizer) Summarize(_ context.Context, text, _ string) (string, error) {
	s.calls = append(s.calls, text)
	if len(s.responses) == 0 {
		return "a fine summary", nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next()
}

func (s *fakeSummarizer) Model() string { return "test-model" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(f DocumentFetcher, e TextExtractor, s summarize.Client, slept *[]time.Duration) *Pipeline {
	p := NewPipeline(f, e, s, testLogger(), "https://www.screener.in", 12000, 2*time.Second, 60*time.Second)
	p.sleep = func(d time.Duration) {
		if slept != nil {
			*slept = append(*slept, d)
		}
	}
	return p
}

func pairsOf(n int) []extract.Pair {
	pairs := make([]extract.Pair, n)
	for i := range pairs {
		pairs[i] = extract.Pair{
			CompanyRef: fmt.Sprintf("/company/CO%d/", i),
			PDFRef:     fmt.Sprintf("http://x/%d.pdf", i),
		}
	}
	return pairs
}

func TestProcessIsolatesFailures(t *testing.T) {
	pairs := pairsOf(3)
	fetcher := &fakeFetcher{failURLs: map[string]error{
		"http://x/1.pdf": errors.New("connection refused"),
	}}
	p := newTestPipeline(fetcher, &fakeExtractor{}, &fakeSummarizer{}, nil)

	records := p.Process(context.Background(), pairs)

	if len(records) != len(pairs) {
		t.Fatalf("Process() returned %d records, want %d", len(records), len(pairs))
	}
	if records[0].Failed() {
		t.Errorf("record 0 unexpectedly failed: %q", records[0].Summary)
	}
	if !records[1].Failed() || !strings.HasPrefix(records[1].Summary, ledger.PrefixRequestError) {
		t.Errorf("record 1 = %q, want request-error prefix", records[1].Summary)
	}
	if records[2].Failed() {
		t.Errorf("record 2 unexpectedly failed: %q", records[2].Summary)
	}
}

func TestProcessPreservesOrder(t *testing.T) {
	pairs := pairsOf(4)
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, &fakeSummarizer{}, nil)

	records := p.Process(context.Background(), pairs)
	for i, r := range records {
		if r.PDFURL != pairs[i].PDFRef {
			t.Errorf("record %d has PDF URL %q, want %q", i, r.PDFURL, pairs[i].PDFRef)
		}
	}
}

func TestProcessDelaysBetweenUnitsOnly(t *testing.T) {
	var slept []time.Duration
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, &fakeSummarizer{}, &slept)

	p.Process(context.Background(), pairsOf(3))

	// 3 units: 2 inter-request delays, none after the last.
	if len(slept) != 2 {
		t.Fatalf("slept %d times, want 2: %v", len(slept), slept)
	}
	for _, d := range slept {
		if d != 2*time.Second {
			t.Errorf("inter-request delay = %v, want 2s", d)
		}
	}
}

func TestRateLimitRetriesOnce(t *testing.T) {
	var slept []time.Duration
	summarizer := &fakeSummarizer{responses: []func() (string, error){
		func() (string, error) { return "", fmt.Errorf("%w: 429", summarize.ErrRateLimited) },
		func() (string, error) { return "recovered summary", nil },
	}}
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, summarizer, &slept)

	records := p.Process(context.Background(), pairsOf(1))

	if len(summarizer.calls) != 2 {
		t.Errorf("summarizer called %d times, want 2", len(summarizer.calls))
	}
	if len(slept) != 1 || slept[0] != 60*time.Second {
		t.Errorf("cooldown sleeps = %v, want one 60s pause", slept)
	}
	if records[0].Summary != "recovered summary" {
		t.Errorf("summary = %q, want recovered summary", records[0].Summary)
	}
}

func TestRateLimitOnRetryIsRecordedNotRetried(t *testing.T) {
	rateLimited := func() (string, error) { return "", fmt.Errorf("%w: 429", summarize.ErrRateLimited) }
	summarizer := &fakeSummarizer{responses: []func() (string, error){rateLimited, rateLimited}}
	var slept []time.Duration
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, summarizer, &slept)

	records := p.Process(context.Background(), pairsOf(1))

	if len(summarizer.calls) != 2 {
		t.Errorf("summarizer called %d times, want exactly 2", len(summarizer.calls))
	}
	if len(slept) != 1 {
		t.Errorf("slept %d times, want exactly 1 cooldown", len(slept))
	}
	if !strings.HasPrefix(records[0].Summary, ledger.PrefixAPIError) {
		t.Errorf("summary = %q, want API-error prefix", records[0].Summary)
	}
}

func TestNonRateLimitAPIErrorNotRetried(t *testing.T) {
	summarizer := &fakeSummarizer{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("invalid api key") },
	}}
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, summarizer, nil)

	records := p.Process(context.Background(), pairsOf(1))

	if len(summarizer.calls) != 1 {
		t.Errorf("summarizer called %d times, want 1", len(summarizer.calls))
	}
	if !strings.HasPrefix(records[0].Summary, ledger.PrefixAPIError) {
		t.Errorf("summary = %q, want API-error prefix", records[0].Summary)
	}
}

func TestTextTruncatedBeforeSummarization(t *testing.T) {
	longText := strings.Repeat("a", 15000)
	extractor := &fakeExtractor{texts: map[string]string{"http://x/0.pdf": longText}}
	summarizer := &fakeSummarizer{}
	p := newTestPipeline(&fakeFetcher{}, extractor, summarizer, nil)

	records := p.Process(context.Background(), pairsOf(1))

	if len(summarizer.calls) != 1 {
		t.Fatalf("summarizer called %d times, want 1", len(summarizer.calls))
	}
	sent := summarizer.calls[0]
	if len(sent) != 12000+len(summarize.TruncationMarker) {
		t.Errorf("summarizer received %d chars, want %d", len(sent), 12000+len(summarize.TruncationMarker))
	}
	if !strings.HasSuffix(sent, summarize.TruncationMarker) {
		t.Error("truncated text missing marker")
	}
	// The record keeps the original extracted length.
	if records[0].TextLength != 15000 {
		t.Errorf("TextLength = %d, want 15000", records[0].TextLength)
	}
}

func TestExtractionFailureRecorded(t *testing.T) {
	extractor := &fakeExtractor{failOn: map[string]error{
		"http://x/0.pdf": errors.New("malformed PDF"),
	}}
	summarizer := &fakeSummarizer{}
	p := newTestPipeline(&fakeFetcher{}, extractor, summarizer, nil)

	records := p.Process(context.Background(), pairsOf(1))

	if !strings.HasPrefix(records[0].Summary, ledger.PrefixProcessingError) {
		t.Errorf("summary = %q, want processing-error prefix", records[0].Summary)
	}
	if len(summarizer.calls) != 0 {
		t.Error("summarizer called for a unit whose extraction failed")
	}
}

func TestEmptyTextSkipsSummarization(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{"http://x/0.pdf": ""}}
	summarizer := &fakeSummarizer{}
	p := newTestPipeline(&fakeFetcher{}, extractor, summarizer, nil)

	records := p.Process(context.Background(), pairsOf(1))

	if !strings.HasPrefix(records[0].Summary, ledger.PrefixNoText) {
		t.Errorf("summary = %q, want no-text prefix", records[0].Summary)
	}
	if len(summarizer.calls) != 0 {
		t.Error("summarizer called for empty text")
	}
}

func TestRecordFields(t *testing.T) {
	p := newTestPipeline(&fakeFetcher{}, &fakeExtractor{}, &fakeSummarizer{}, nil)

	records := p.Process(context.Background(), []extract.Pair{
		{CompanyRef: "/company/TCS/consolidated/", PDFRef: "http://x/doc.pdf"},
	})

	r := records[0]
	if r.Company != "TCS" {
		t.Errorf("Company = %q, want TCS", r.Company)
	}
	if r.CompanyURL != "https://www.screener.in/company/TCS/consolidated/" {
		t.Errorf("CompanyURL = %q", r.CompanyURL)
	}
	if r.ModelUsed != "test-model" {
		t.Errorf("ModelUsed = %q", r.ModelUsed)
	}
	if r.Language != "English" {
		t.Errorf("Language = %q", r.Language)
	}
}
