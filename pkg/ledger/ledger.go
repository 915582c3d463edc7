// Package ledger persists the set of processed announcements and filters
// new candidates against it. The persisted form is a single JSON array,
// human-diffable, rewritten whole at the end of a run.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Typed prefixes carried in the summary text of failed records. The
// persisted form keeps prefixes so old ledgers classify the same way as
// fresh records.
const (
	PrefixRequestError    = "Request Error:"
	PrefixProcessingError = "Processing Error:"
	PrefixAPIError        = "OpenAI API Error:"
	PrefixNoText          = "No extractable text"
)

// Record is one processed announcement. Immutable once written; the
// incremental filter guarantees a PDF URL is processed at most once, so a
// record is never updated in place.
type Record struct {
	Company    string `json:"company"`
	CompanyURL string `json:"company_url"`
	PDFURL     string `json:"pdf_url"`
	Summary    string `json:"summary"`
	TextLength int    `json:"text_length"`
	ModelUsed  string `json:"model_used"`
	Language   string `json:"language,omitempty"`
}

// Failed reports whether the record's summary carries one of the typed
// error prefixes. Presentation-only; it never affects identity.
func (r Record) Failed() bool {
	for _, p := range []string{PrefixRequestError, PrefixProcessingError, PrefixAPIError, PrefixNoText} {
		if strings.HasPrefix(r.Summary, p) {
			return true
		}
	}
	return false
}

// Load reads the persisted ledger. A missing or unparsable file yields an
// empty sequence and corrupt=true for the unparsable case so the caller
// can log the discarded history; neither is an error.
func Load(path string) (records []Record, corrupt bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true
	}
	return records, false
}

// IdentitySet returns the set of PDF URLs present in the records.
func IdentitySet(records []Record) map[string]struct{} {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.PDFURL] = struct{}{}
	}
	return seen
}

// Persist rewrites the whole ledger atomically: serialize to a temp file
// in the same directory, then rename over the prior file. A crash mid-run
// leaves the previous ledger intact.
func Persist(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}
