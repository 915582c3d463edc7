// Package doctext turns fetched document bytes into plain text.
//
// Announcements are almost always PDFs, but document hosts occasionally
// serve an HTML page (expired links, interstitials); those fall back to
// readability extraction so the pipeline still records something useful.
package doctext

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
	"github.com/pemistahl/lingua-go"
)

type Extractor struct {
	detector lingua.LanguageDetector
}

func NewExtractor() *Extractor {
	// Listing sources cover Indian exchanges; announcements show up in
	// English plus the major filing languages.
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Hindi,
			lingua.Gujarati,
			lingua.Marathi,
			lingua.Tamil,
		).
		Build()
	return &Extractor{detector: detector}
}

// Extract converts document bytes to plain text. contentType selects the
// extraction path; anything that isn't HTML is treated as PDF because the
// exchanges' document endpoints often omit or mislabel the header.
func (e *Extractor) Extract(data []byte, contentType, sourceURL string) (string, error) {
	var text string
	var err error
	if strings.Contains(contentType, "text/html") {
		text, err = extractHTML(data, sourceURL)
	} else {
		text, err = extractPDF(data)
	}
	if err != nil {
		return "", err
	}
	return NormalizeText(text), nil
}

// DetectLanguage guesses the language of extracted text. Empty string when
// the detector can't decide.
func (e *Extractor) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	// A sample is enough; full filings can run to hundreds of KB.
	if len(text) > 4096 {
		text = text[:4096]
	}
	if lang, ok := e.detector.DetectLanguageOf(text); ok {
		return lang.String()
	}
	return ""
}

// extractPDF pulls plain text from PDF bytes. The PDF reader panics on
// some malformed files, so the whole call is recovered into an error.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

// extractHTML distills the main readable content out of an HTML document.
func extractHTML(data []byte, sourceURL string) (string, error) {
	pageURL, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid document URL: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}
	return article.TextContent, nil
}

// NormalizeText collapses each line to trimmed content joined by single
// spaces, dropping blank lines.
func NormalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
