package notifier

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers HTML reports over SMTP with implicit TLS (the Gmail
// port-465 style setup the report targets).
type EmailSender struct {
	Host     string
	Port     int
	From     string
	Password string
}

// NewEmailSender creates a sender for the given SMTP account.
func NewEmailSender(host string, port int, from, password string) *EmailSender {
	return &EmailSender{Host: host, Port: port, From: from, Password: password}
}

// Send delivers one HTML message to the recipient.
func (e *EmailSender) Send(recipient, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	client, err := smtp.NewClient(conn, e.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", e.From, e.Password, e.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(e.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := buildMessage(e.From, recipient, subject, htmlBody)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return client.Quit()
}

func buildMessage(from, to, subject, htmlBody string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}
