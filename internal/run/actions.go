package run

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/finvarta/annbrief/models"
	dbpkg "github.com/finvarta/annbrief/pkg/db"
)

// RunAction is the `annbrief run` CLI entry point.
func RunAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	if cfg.OpenAIAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: OpenAI API key not configured")
		fmt.Fprintln(os.Stderr, "Set OPENAI_API_KEY or add openai_api_key to the config file")
		os.Exit(1)
	}

	opts := Options{
		TestMode:     c.Bool("test"),
		SampleMode:   c.Bool("sample"),
		Notify:       c.Bool("notify"),
		CookieHeader: c.String("cookie"),
	}
	logger.Info("Starting run", "mode", opts.Mode(), "notify", opts.Notify)

	summary, runErr := Execute(c.Context, logger, cfg, opts)
	RecordRun(logger, summary, opts, runErr)

	if runErr != nil {
		logger.Error("Run aborted", "error", runErr)
		os.Exit(2)
	}

	printSummary(summary)
	return nil
}

// RecordRun writes one row of run history. History failures are logged
// and swallowed; they must never change the run's outcome.
func RecordRun(logger *slog.Logger, summary *Summary, opts Options, runErr error) {
	database, err := dbpkg.Open()
	if err != nil {
		logger.Warn("Failed to open run history database", "error", err)
		return
	}
	defer database.Close()

	status := "completed"
	if runErr != nil {
		status = "aborted"
	}
	if _, err := database.InsertRun(dbpkg.Run{
		StartedAt:      summary.StartedAt,
		FinishedAt:     summary.FinishedAt,
		Mode:           opts.Mode(),
		TotalRecords:   summary.Total,
		Previous:       summary.Previous,
		NewCount:       summary.NewCount,
		FailedCount:    summary.FailedCount,
		ReportRendered: summary.ReportRendered,
		Notified:       summary.Notified,
		Status:         status,
	}); err != nil {
		logger.Warn("Failed to record run history", "error", err)
	}
}

func printSummary(s *Summary) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("RUN SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total documents in ledger:  %d\n", s.Total)
	fmt.Printf("Previously processed:       %d\n", s.Previous)
	fmt.Printf("New documents processed:    %d\n", s.NewCount)
	fmt.Printf("Failed within new:          %d\n", s.FailedCount)
	if s.LedgerCorrupt {
		fmt.Println("Note: prior ledger was unparsable and was rebuilt from scratch")
	}
	if s.NewCount > 0 {
		if s.ReportRendered {
			fmt.Printf("Report:                     %s\n", s.ReportPath)
		} else {
			fmt.Println("Report:                     failed")
		}
		if s.EmailsSent+s.EmailsFailed > 0 {
			fmt.Printf("Notifications:              %d sent, %d failed\n", s.EmailsSent, s.EmailsFailed)
		}
	}
	fmt.Printf("Elapsed:                    %s\n", s.FinishedAt.Sub(s.StartedAt).Round(10*time.Millisecond))
}

// RunsAction lists recent run history.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-7s %-7s %-7s %-8s %-8s %-10s\n",
		"ID", "Started", "Mode", "Total", "New", "Failed", "Report", "Notify", "Status")
	fmt.Println(strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8s %-7d %-7d %-7d %-8t %-8t %-10s\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Mode,
			r.TotalRecords,
			r.NewCount,
			r.FailedCount,
			r.ReportRendered,
			r.Notified,
			r.Status,
		)
	}
	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}
