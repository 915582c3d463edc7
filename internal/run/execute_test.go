package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/finvarta/annbrief/models"
	"github.com/finvarta/annbrief/pkg/ledger"
)

func testAssembleConfig(t *testing.T) models.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.SummariesFile = filepath.Join(dir, "summaries.json")
	cfg.ReportFile = filepath.Join(dir, "report.pdf")
	return cfg
}

func TestAssembleMergesOldFirst(t *testing.T) {
	cfg := testAssembleConfig(t)
	existing := []ledger.Record{
		{Company: "Old Co", PDFURL: "http://x/old.pdf", Summary: "old summary"},
	}
	fresh := []ledger.Record{
		{Company: "New Co", PDFURL: "http://x/new.pdf", Summary: "new summary"},
		{Company: "Broken Co", PDFURL: "http://x/bad.pdf", Summary: ledger.PrefixRequestError + " timeout"},
	}

	summary, err := assemble(testLogger(), cfg, Options{}, &Summary{}, existing, fresh)
	if err != nil {
		t.Fatalf("assemble() error: %v", err)
	}

	if summary.Total != 3 || summary.NewCount != 2 || summary.FailedCount != 1 {
		t.Errorf("counts = total %d new %d failed %d, want 3/2/1",
			summary.Total, summary.NewCount, summary.FailedCount)
	}

	persisted, corrupt := ledger.Load(cfg.SummariesFile)
	if corrupt {
		t.Fatal("persisted ledger is unparsable")
	}
	want := append(append([]ledger.Record{}, existing...), fresh...)
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("persisted ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleNoNewRecordsSkipsReport(t *testing.T) {
	cfg := testAssembleConfig(t)
	existing := []ledger.Record{
		{Company: "Old Co", PDFURL: "http://x/old.pdf", Summary: "old summary"},
	}

	summary, err := assemble(testLogger(), cfg, Options{Notify: true}, &Summary{}, existing, nil)
	if err != nil {
		t.Fatalf("assemble() error: %v", err)
	}

	if summary.ReportRendered || summary.Notified {
		t.Error("report or notification produced for an empty batch")
	}
	if _, err := os.Stat(cfg.ReportFile); !os.IsNotExist(err) {
		t.Errorf("report file unexpectedly exists: %v", err)
	}
	// The ledger is still rewritten, unchanged.
	persisted, _ := ledger.Load(cfg.SummariesFile)
	if len(persisted) != 1 {
		t.Errorf("persisted %d records, want 1", len(persisted))
	}
}

func TestAssembleRendersReportForNewRecords(t *testing.T) {
	cfg := testAssembleConfig(t)
	fresh := []ledger.Record{
		{Company: "New Co", CompanyURL: "https://www.screener.in/company/NEW/", PDFURL: "http://x/new.pdf",
			Summary: "new summary", TextLength: 120, ModelUsed: "test-model", Language: "English"},
	}

	summary, err := assemble(testLogger(), cfg, Options{}, &Summary{}, nil, fresh)
	if err != nil {
		t.Fatalf("assemble() error: %v", err)
	}

	if !summary.ReportRendered {
		t.Fatal("report not rendered for a non-empty batch")
	}
	info, err := os.Stat(cfg.ReportFile)
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report file is empty")
	}
}

func TestOptionsMode(t *testing.T) {
	cases := []struct {
		opts Options
		want string
	}{
		{Options{}, "full"},
		{Options{TestMode: true}, "test"},
		{Options{SampleMode: true}, "sample"},
		{Options{TestMode: true, SampleMode: true}, "sample"},
	}
	for _, c := range cases {
		if got := c.opts.Mode(); got != c.want {
			t.Errorf("Mode(%+v) = %q, want %q", c.opts, got, c.want)
		}
	}
}
