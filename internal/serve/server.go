// Package serve exposes the processing run over HTTP, mirroring the CLI
// run command for callers that trigger runs remotely.
package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/finvarta/annbrief/internal/run"
	"github.com/finvarta/annbrief/models"
	"github.com/finvarta/annbrief/pkg/ledger"
)

const timestampLayout = "2006-01-02 15:04:05"

// Server handles the process and health endpoints. The execute function is
// a field so tests can stand in for a real run.
type Server struct {
	Config  models.Config
	Logger  *slog.Logger
	Execute func(r *http.Request, opts run.Options) (*run.Summary, error)
}

func NewServer(cfg models.Config, logger *slog.Logger) *Server {
	s := &Server{Config: cfg, Logger: logger}
	s.Execute = func(r *http.Request, opts run.Options) (*run.Summary, error) {
		return run.Execute(r.Context(), logger, cfg, opts)
	}
	return s
}

// Handler routes the API surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Corporate Announcements Processor API",
		"endpoints": map[string]string{
			"/process": "POST - Process announcements and send email report",
			"/health":  "GET - Health check",
		},
	})
}

// announcementDetail is the per-record slice of the process response.
type announcementDetail struct {
	Company    string `json:"company"`
	PDFURL     string `json:"pdf_url"`
	TextLength int    `json:"text_length"`
	ModelUsed  string `json:"model_used"`
	Failed     bool   `json:"failed"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if s.Config.OpenAIAPIKey == "" {
		writeError(w, http.StatusInternalServerError,
			"OpenAI API key not configured. Set OPENAI_API_KEY in the environment.")
		return
	}
	if !s.Config.EmailConfigured() {
		writeError(w, http.StatusInternalServerError,
			"Email configuration not set. Configure EMAIL_SENDER, EMAIL_PASSWORD and EMAIL_RECIPIENTS.")
		return
	}

	q := r.URL.Query()
	opts := run.Options{
		TestMode:     q.Get("test_mode") == "true",
		SampleMode:   q.Get("use_sample_data") == "true",
		Notify:       true,
		CookieHeader: q.Get("cookie_header"),
	}
	cookieSource := "none"
	switch {
	case opts.CookieHeader != "":
		cookieSource = "parameter"
	case s.Config.CookieHeader != "":
		cookieSource = "environment"
	}

	s.Logger.Info("Processing request received",
		"test_mode", opts.TestMode, "sample_data", opts.SampleMode, "cookie_source", cookieSource)

	summary, err := s.Execute(r, opts)
	if err != nil {
		s.Logger.Error("Processing run aborted", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":   false,
			"error":     "Error processing announcements: " + err.Error(),
			"timestamp": time.Now().Format(timestampLayout),
		})
		return
	}

	resp := map[string]any{
		"success":                      true,
		"processing_time_seconds":      summary.FinishedAt.Sub(summary.StartedAt).Seconds(),
		"new_announcements_processed":  summary.NewCount,
		"failed":                       summary.FailedCount,
		"previously_processed":         summary.Previous,
		"test_mode":                    opts.TestMode,
		"sample_data_used":             opts.SampleMode,
		"cookie_header_used":           opts.CookieHeader != "" || s.Config.CookieHeader != "",
		"cookie_source":                cookieSource,
		"timestamp":                    time.Now().Format(timestampLayout),
	}

	if summary.NewCount > 0 {
		resp["email_sent"] = summary.Notified
		resp["recipients_reached"] = summary.EmailsSent
		resp["recipients_failed"] = summary.EmailsFailed
		if summary.ReportRendered {
			resp["pdf_filename"] = summary.ReportPath
		}
		resp["new_announcements"] = detailsOf(summary.NewRecords)
	} else {
		resp["email_sent"] = false
		resp["email_skipped"] = true
		resp["email_reason"] = "No new announcements to send"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cookieSource := "none"
	if s.Config.CookieHeader != "" {
		cookieSource = "environment"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"timestamp":         time.Now().Format(timestampLayout),
		"openai_configured": s.Config.OpenAIAPIKey != "",
		"email_configured":  s.Config.EmailConfigured(),
		"cookie_configured": s.Config.CookieHeader != "",
		"cookie_source":     cookieSource,
	})
}

func detailsOf(records []ledger.Record) []announcementDetail {
	details := make([]announcementDetail, 0, len(records))
	for _, r := range records {
		details = append(details, announcementDetail{
			Company:    r.Company,
			PDFURL:     r.PDFURL,
			TextLength: r.TextLength,
			ModelUsed:  r.ModelUsed,
			Failed:     r.Failed(),
		})
	}
	return details
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"success": false, "error": detail})
}
