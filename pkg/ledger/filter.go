package ledger

import "github.com/finvarta/annbrief/pkg/extract"

// FilterNew returns the ordered subsequence of pairs whose PDF URL is not
// in the seen set. Input order is preserved; it determines downstream
// processing order and therefore request pacing and report ordering.
// Running the filter twice with the same inputs yields the same result.
func FilterNew(pairs []extract.Pair, seen map[string]struct{}) (fresh []extract.Pair, skipped []extract.Pair) {
	for _, p := range pairs {
		if _, ok := seen[p.PDFRef]; ok {
			skipped = append(skipped, p)
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, skipped
}
