package delivery

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer e-mails the plain text rendering of a report.
type Mailer struct {
	sender     mailSender
	from       string
	recipients []string
}

func NewMailer(host string, port int, username string, password string, from string, recipients []string) *Mailer {
	if from == "" {
		from = username
	}
	return &Mailer{
		sender:     gomail.NewDialer(host, port, username, password),
		from:       from,
		recipients: recipients,
	}
}

func (m *Mailer) Send(report Report) error {
	if len(m.recipients) == 0 {
		return fmt.Errorf("no report recipients configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", Subject(report))
	msg.SetBody("text/plain", renderText(report))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.WithField("brand", report.Brand).WithField("recipients", len(m.recipients)).Info("mailed report")
	return nil
}

func Subject(report Report) string {
	return fmt.Sprintf("Brand report for %s: %d mentions (%s)", report.Brand, report.Mentions, report.GeneratedAt.Format("2006-01-02"))
}
