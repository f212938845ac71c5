package service

import (
	mail "github.com/go-mail/mail/v2"
)

// Mailer dispatches confirmation codes. The auth service treats a send
// failure as fatal unless configured for legacy silent mode.
type Mailer interface {
	SendConfirmationCode(to, code string) error
}

// SMTPMailer sends over authenticated SMTP with mandatory STARTTLS.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) SendConfirmationCode(to, code string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirmation code")
	msg.SetBody("text/plain", "Confirmation code is "+code)

	d := mail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return d.DialAndSend(msg)
}
