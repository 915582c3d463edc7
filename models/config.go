// Package models defines configuration and shared data structures.
package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting for a processing run. It is built once
// at startup and passed into components; nothing reads the environment after
// construction.
type Config struct {
	// Summarization
	OpenAIAPIKey      string        `yaml:"openai_api_key"`
	OpenAIModel       string        `yaml:"openai_model"`
	OpenAIMaxTokens   int           `yaml:"openai_max_tokens"`
	OpenAITemperature float32       `yaml:"openai_temperature"`
	OpenAITimeout     time.Duration `yaml:"openai_timeout"`

	// Pipeline pacing and limits
	MaxTextLength        int           `yaml:"max_text_length"`
	DelayBetweenRequests time.Duration `yaml:"delay_between_requests"`
	RateLimitCooldown    time.Duration `yaml:"rate_limit_cooldown"`

	// Persisted artifacts
	SummariesFile string `yaml:"summaries_file"`
	ReportFile    string `yaml:"report_file"`

	// Listing source
	BaseURL          string `yaml:"base_url"`
	AnnouncementsURL string `yaml:"announcements_url"`
	UserAgent        string `yaml:"user_agent"`
	CookieHeader     string `yaml:"cookie_header"`

	// Email delivery
	SMTPServer         string   `yaml:"smtp_server"`
	SMTPPort           int      `yaml:"smtp_port"`
	EmailSender        string   `yaml:"email_sender"`
	EmailPassword      string   `yaml:"email_password"`
	EmailSenderName    string   `yaml:"email_sender_name"`
	EmailSubjectPrefix string   `yaml:"email_subject_prefix"`
	EmailGreeting      string   `yaml:"email_greeting"`
	EmailSignature     string   `yaml:"email_signature"`
	EmailRecipients    []string `yaml:"email_recipients"`
}

// DefaultConfig returns the built-in defaults, before any file or
// environment overrides.
func DefaultConfig() Config {
	return Config{
		OpenAIModel:          "gpt-3.5-turbo",
		OpenAIMaxTokens:      1000,
		OpenAITemperature:    0.3,
		OpenAITimeout:        30 * time.Second,
		MaxTextLength:        12000,
		DelayBetweenRequests: 2 * time.Second,
		RateLimitCooldown:    60 * time.Second,
		SummariesFile:        "announcement_summaries.json",
		ReportFile:           "New_Announcements_Report.pdf",
		BaseURL:              "https://www.screener.in",
		AnnouncementsURL:     "https://www.screener.in/announcements/",
		UserAgent:            "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36",
		SMTPServer:           "smtp.gmail.com",
		SMTPPort:             587,
		EmailSenderName:      "FinVarta AI",
		EmailSubjectPrefix:   "Corporate Announcements Report",
		EmailGreeting:        "Dear User,",
		EmailSignature:       "Best regards,\nFinVarta AI",
	}
}

// LoadConfig builds the runtime configuration: defaults, then an optional
// YAML file, then environment variables. A missing file is not an error;
// a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; env overrides still apply.
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setInt(&cfg.OpenAIMaxTokens, "OPENAI_MAX_TOKENS")
	setFloat32(&cfg.OpenAITemperature, "OPENAI_TEMPERATURE")
	setInt(&cfg.MaxTextLength, "MAX_TEXT_LENGTH")
	setSeconds(&cfg.DelayBetweenRequests, "DELAY_BETWEEN_REQUESTS")
	setSeconds(&cfg.RateLimitCooldown, "RATE_LIMIT_COOLDOWN")
	setString(&cfg.SummariesFile, "SUMMARIES_FILE")
	setString(&cfg.ReportFile, "PDF_OUTPUT_FILE")
	setString(&cfg.BaseURL, "SCREENER_BASE_URL")
	setString(&cfg.AnnouncementsURL, "SCREENER_ANNOUNCEMENTS_URL")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.CookieHeader, "SCREENER_COOKIE_HEADER")
	setString(&cfg.SMTPServer, "EMAIL_SMTP_SERVER")
	setInt(&cfg.SMTPPort, "EMAIL_SMTP_PORT")
	setString(&cfg.EmailSender, "EMAIL_SENDER")
	setString(&cfg.EmailPassword, "EMAIL_PASSWORD")
	setString(&cfg.EmailSenderName, "EMAIL_SENDER_NAME")
	setString(&cfg.EmailSubjectPrefix, "EMAIL_SUBJECT_PREFIX")
	setString(&cfg.EmailGreeting, "EMAIL_GREETING")
	setString(&cfg.EmailSignature, "EMAIL_SIGNATURE")

	if v := os.Getenv("EMAIL_RECIPIENTS"); v != "" {
		var recipients []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		cfg.EmailRecipients = recipients
	}
}

// EmailConfigured reports whether the notification collaborator has enough
// configuration to deliver anything.
func (c Config) EmailConfigured() bool {
	return c.EmailSender != "" && c.EmailPassword != "" && len(c.EmailRecipients) > 0
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat32(dst *float32, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			*dst = float32(f)
		}
	}
}

// setSeconds accepts either a bare second count ("2") or a Go duration ("2s").
func setSeconds(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
