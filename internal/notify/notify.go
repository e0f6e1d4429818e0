package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/advance-service/internal/config"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/Dan9191/advance-service/internal/service"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender emails repayment run summaries to the operations mailbox via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRunSummary sends the outcome of a repayment run
func (s *Sender) SendRunSummary(summary service.RunSummary, runErr error) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.OpsEmail}
	subject, body := RunSummaryMessage(summary, runErr)
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send run summary to %s: %v", s.cfg.OpsEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.OpsEmail, e.Subject)
	return nil
}

// RunSummaryMessage formats the subject and body of a run summary email
func RunSummaryMessage(summary service.RunSummary, runErr error) (string, string) {
	day := models.FormatDay(summary.Day)
	subject := fmt.Sprintf("Loan repayments for %s completed", day)
	if runErr != nil || summary.Failed > 0 {
		subject = fmt.Sprintf("Loan repayments for %s completed with failures", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repayment run %s for %s\n\n", summary.RunID, day)
	fmt.Fprintf(&b, "Accounts with a loan: %d\n", summary.Accounts)
	fmt.Fprintf(&b, "Installments attempted: %d\n", summary.Attempted)
	fmt.Fprintf(&b, "Installments paid: %d\n", summary.Succeeded)
	fmt.Fprintf(&b, "Installments failed and rescheduled: %d\n", summary.Failed)
	fmt.Fprintf(&b, "Loans settled: %d\n", summary.Settled)
	if len(summary.FailedAccounts) > 0 {
		ids := make([]string, len(summary.FailedAccounts))
		for i, id := range summary.FailedAccounts {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, "\nAccounts with failures: %s\n", strings.Join(ids, ", "))
	}
	if runErr != nil {
		fmt.Fprintf(&b, "\nErrors:\n%s\n", runErr)
	}
	b.WriteString("\n-- advance-service")
	return subject, b.String()
}

// Nop discards run summaries. Used when SMTP is not configured.
type Nop struct{}

func (Nop) SendRunSummary(service.RunSummary, error) error { return nil }
