// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// ErrDisabled is returned by Send when no SMTP account is configured.
var ErrDisabled = errors.New("mail: sender not configured")

// Config holds the SMTP account. The account's address is also the sender.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// Message is a single HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers messages through one SMTP account.
type Mailer struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

func New(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg, now: time.Now}
	if cfg.Port == "465" {
		m.send = m.sendImplicitTLS
	} else {
		m.send = smtp.SendMail
	}
	return m
}

// Enabled reports whether an SMTP account is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Username != ""
}

func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.Username, msg.To, m.build(msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(msg.To, ","), err)
	}
	return nil
}

func (m *Mailer) build(msg Message) []byte {
	from := m.cfg.Username
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.cfg.Username)
	}

	var b bytes.Buffer
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + m.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// sendImplicitTLS is used for port 465, where the connection is TLS from the
// first byte and STARTTLS is not offered.
func (m *Mailer) sendImplicitTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
