package summarize

import (
	"strings"
	"testing"
)

func TestNormalizeAndTruncate(t *testing.T) {
	text := strings.Repeat("a", 15000)
	got, cut := NormalizeAndTruncate(text, 12000)
	if !cut {
		t.Error("NormalizeAndTruncate() cut = false for over-budget text")
	}
	if len(got) != 12000+len(TruncationMarker) {
		t.Errorf("truncated length = %d, want %d", len(got), 12000+len(TruncationMarker))
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Error("truncated text missing marker suffix")
	}
}

func TestNormalizeAndTruncateUnderBudget(t *testing.T) {
	got, cut := NormalizeAndTruncate("short  text\nwith   gaps", 12000)
	if cut {
		t.Error("NormalizeAndTruncate() cut = true for short text")
	}
	if got != "short text with gaps" {
		t.Errorf("NormalizeAndTruncate() = %q", got)
	}
}

func TestBuildPromptContainsSections(t *testing.T) {
	prompt := BuildPrompt("some document text", "TCS")
	for _, want := range []string{
		"TCS",
		"some document text",
		"Document Type",
		"Sentiment Analysis",
		"Key Dates",
		"Financial Highlights",
		"Corporate Actions",
		"Business Updates",
		"Regulatory Compliance",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q", want)
		}
	}
}
