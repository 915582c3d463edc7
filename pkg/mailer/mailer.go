// Package mailer delivers the rendered report to configured recipients.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/finvarta/annbrief/models"
)

// Result counts per-recipient delivery outcomes for one notification run.
type Result struct {
	Sent   int
	Failed int
}

// SendReport emails the report at reportPath to every configured
// recipient as an individual message, so no recipient sees another's
// address. A connect failure is returned as an error; per-recipient send
// failures are counted, not retried.
func SendReport(ctx context.Context, cfg models.Config, reportPath string) (Result, error) {
	var res Result

	client, err := mail.NewClient(cfg.SMTPServer,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.EmailSender),
		mail.WithPassword(cfg.EmailPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return res, fmt.Errorf("failed to build SMTP client: %w", err)
	}

	if err := client.DialWithContext(ctx); err != nil {
		return res, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	subject := fmt.Sprintf("%s - %s", cfg.EmailSubjectPrefix, time.Now().Format("2006-01-02 15:04"))
	body := buildBody(cfg)

	for _, recipient := range cfg.EmailRecipients {
		msg, err := buildMessage(cfg, recipient, subject, body, reportPath)
		if err != nil {
			res.Failed++
			continue
		}
		if err := client.Send(msg); err != nil {
			res.Failed++
			continue
		}
		res.Sent++
	}
	return res, nil
}

func buildMessage(cfg models.Config, recipient, subject, body, reportPath string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(cfg.EmailSenderName, cfg.EmailSender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.AttachFile(reportPath)
	return msg, nil
}

func buildBody(cfg models.Config) string {
	return fmt.Sprintf(`%s

Please find attached the latest Corporate Announcements Report generated on %s.

This report contains:
- Executive summary of all new announcements
- Detailed analysis of each company announcement
- AI-powered sentiment analysis

%s
`, cfg.EmailGreeting, time.Now().Format("2006-01-02 at 15:04"), cfg.EmailSignature)
}
