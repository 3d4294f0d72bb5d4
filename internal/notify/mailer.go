package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// ErrUnconfigured is returned for every send when mail credentials are
// absent. Configuration is all-or-nothing; callers log and swallow it, a
// failed notification never fails the workflow that triggered it.
var ErrUnconfigured = errors.New("mail transport not configured")

type SubmissionMail struct {
	Applicant  string
	LeaveType  string
	StartDate  string
	EndDate    string
	Days       int
	Reason     string
	ApproveURL string
	RejectURL  string
}

type DecisionMail struct {
	LeaveType string
	StartDate string
	EndDate   string
	Days      int
	Status    string
}

type Mailer interface {
	SendSubmission(ctx context.Context, to string, m SubmissionMail) error
	SendDecision(ctx context.Context, to string, m DecisionMail) error
}

type SMTPMailer struct {
	dialer     *gomail.Dialer
	from       string
	configured bool
	logger     *zap.Logger
}

func NewSMTPMailer(host string, port int, user, password, from string, logger ...*zap.Logger) *SMTPMailer {
	l := zap.L().Named("notify.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.mailer")
	}
	m := &SMTPMailer{
		from:       from,
		configured: host != "" && from != "",
		logger:     l,
	}
	if m.configured {
		m.dialer = gomail.NewDialer(host, port, user, password)
	}
	return m
}

func (m *SMTPMailer) SendSubmission(ctx context.Context, to string, mail SubmissionMail) error {
	subject := fmt.Sprintf("Leave application from %s (%s)", mail.Applicant, mail.LeaveType)
	body := fmt.Sprintf(
		"%s has applied for %s leave from %s to %s (%d day(s)).\r\n"+
			"Reason: %s\r\n\r\n"+
			"Approve: %s\r\nReject: %s\r\n",
		mail.Applicant, mail.LeaveType, mail.StartDate, mail.EndDate, mail.Days,
		mail.Reason, mail.ApproveURL, mail.RejectURL,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendDecision(ctx context.Context, to string, mail DecisionMail) error {
	subject := fmt.Sprintf("Your leave application has been %s", mail.Status)
	body := fmt.Sprintf(
		"Your %s leave from %s to %s (%d day(s)) has been %s.\r\n",
		mail.LeaveType, mail.StartDate, mail.EndDate, mail.Days, mail.Status,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if !m.configured {
		return ErrUnconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("mail send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Debug("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
