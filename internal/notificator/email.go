package notificator

import (
	"fmt"
	"mime"
	"net/smtp"
	"strconv"

	"github.com/sadaqapass/sadaqa/pkg/logger"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotificator sends plain-text mail over SMTP. Without a host it is
// disabled and Send is a no-op.
type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost   string
	SMTPPort   int
	SMTPSender string

	SMTPAuth smtp.Auth

	sendMail sendMailFunc
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string) *EmailNotificator {
	var auth smtp.Auth
	if SMTPUser != "" {
		auth = smtp.PlainAuth("", SMTPUser, SMTPPassword, SMTPHost)
	}
	if SMTPHost == "" {
		logger.Warn("SMTP_HOST is not set, email notifications disabled")
	}

	return &EmailNotificator{
		logger:     logger,
		SMTPAuth:   auth,
		SMTPHost:   SMTPHost,
		SMTPPort:   SMTPPort,
		SMTPSender: SMTPSender,
		sendMail:   smtp.SendMail,
	}
}

func (e *EmailNotificator) Enabled() bool {
	return e.SMTPHost != ""
}

func (e *EmailNotificator) Send(to, subject, body string) error {
	if !e.Enabled() {
		e.logger.Debug("Email disabled, message skipped", "to", to)
		return nil
	}
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		e.SMTPSender,
		to,
		mime.QEncoding.Encode("utf-8", subject),
		body,
	)
	if err := e.sendMail(addr, e.SMTPAuth, e.SMTPSender, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
