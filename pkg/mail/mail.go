// Package mail sends SMTP email with optional attachments.
//
//	m := mail.New(mail.FromConfig())
//	err := m.Send(mail.To("asha@example.com").
//	    Subject("Your order").
//	    Text("Thanks!").
//	    Attach("invoice_1.pdf", "application/pdf", pdf))
package mail

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/shashiranjanraj/heartscript/config"
)

// ErrDisabled is returned by Send when no SMTP host is configured.
var ErrDisabled = errors.New("mail: MAIL_HOST not configured")

// SMTP holds connection settings.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// FromConfig reads the MAIL_* settings.
func FromConfig() SMTP {
	return SMTP{
		Host:     config.MailHost(),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@heartscript.local"),
		FromName: config.Get("MAIL_FROM_NAME", "HeartScript"),
	}
}

// Message is a fluent builder for one email.
type Message struct {
	to          []string
	subject     string
	body        string
	isHTML      bool
	attachments []attachment
}

type attachment struct {
	name        string
	contentType string
	content     []byte
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body, m.isHTML = text, false
	return m
}

// HTML sets an HTML body.
func (m *Message) HTML(html string) *Message {
	m.body, m.isHTML = html, true
	return m
}

// Attach adds an in-memory file.
func (m *Message) Attach(name, contentType string, content []byte) *Message {
	m.attachments = append(m.attachments, attachment{name: name, contentType: contentType, content: content})
	return m
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers messages through one SMTP server.
type Mailer struct {
	cfg  SMTP
	send sendFunc
}

func New(cfg SMTP) *Mailer {
	m := &Mailer{cfg: cfg}
	m.send = m.deliver
	return m
}

// Enabled reports whether a host is configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

// Send builds and delivers msg.
func (m *Mailer) Send(msg *Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}
	if len(msg.to) == 0 {
		return errors.New("mail: no recipients")
	}

	from := (&mailAddress{name: m.cfg.FromName, addr: m.cfg.From}).String()
	raw, err := msg.build(from)
	if err != nil {
		return err
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, a, m.cfg.From, msg.to, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// deliver uses implicit TLS on port 465 and STARTTLS otherwise.
func (m *Mailer) deliver(addr string, a smtp.Auth, from string, to []string, raw []byte) error {
	if m.cfg.Port != "465" {
		return smtp.SendMail(addr, a, from, to, raw)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if a != nil {
		if err := client.Auth(a); err != nil {
			return err
		}
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
		w.Close()
		return err
	}
	return w.Close()
}

type mailAddress struct{ name, addr string }

func (a *mailAddress) String() string {
	if a.name == "" {
		return "<" + a.addr + ">"
	}
	return mime.QEncoding.Encode("utf-8", a.name) + " <" + a.addr + ">"
}

// build renders the RFC 5322 message; attachments make it multipart/mixed.
func (m *Message) build(from string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	bodyType := `text/plain; charset="UTF-8"`
	if m.isHTML {
		bodyType = `text/html; charset="UTF-8"`
	}

	if len(m.attachments) == 0 {
		b.WriteString("Content-Type: " + bodyType + "\r\n\r\n")
		b.WriteString(m.body)
		return b.Bytes(), nil
	}

	mw := multipart.NewWriter(&b)
	b.WriteString("Content-Type: multipart/mixed; boundary=" + mw.Boundary() + "\r\n\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {bodyType}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(m.body)); err != nil {
		return nil, err
	}

	for _, a := range m.attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {a.contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.name})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writeBase64 wraps encoded lines at 76 characters.
func writeBase64(w interface{ Write([]byte) (int, error) }, content []byte) error {
	enc := base64.StdEncoding.EncodeToString(content)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc + "\r\n"))
	return err
}
