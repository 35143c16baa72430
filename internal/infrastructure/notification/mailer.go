package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMailNotConfigured is returned when no SMTP host is configured
var ErrMailNotConfigured = errors.New("mail: smtp host not configured")

// Message is an outgoing mail. HTML is optional; Text is always sent.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends mail
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP relay with STARTTLS when offered
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
	dialer *net.Dialer
	now    func() time.Time
}

// NewSMTPMailer creates a mailer for cfg
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
		dialer: &net.Dialer{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Configured reports whether an SMTP host is set
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Host != ""
}

// Send delivers msg. The context bounds the whole SMTP conversation.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrMailNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}
	for _, rcpt := range msg.To {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return fmt.Errorf("mail: invalid recipient %q: %w", rcpt, err)
		}
	}

	body, err := m.compose(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("mail: auth: %w", err)
			}
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: close body: %w", err)
	}
	if err := client.Quit(); err != nil {
		m.logger.Debug("SMTP quit failed", zap.Error(err))
	}

	m.logger.Info("Mail sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// compose builds the RFC 5322 message with a text part and, when present,
// an HTML alternative
func (m *SMTPMailer) compose(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	from := (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String()

	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domainOf(m.cfg.From)+">")
	header("MIME-Version", "1.0")

	if msg.HTML == "" {
		header("Content-Type", `text/plain; charset="utf-8"`)
		header("Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQP(&buf, msg.Text); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	boundary := "nancy-" + base64.RawURLEncoding.EncodeToString([]byte(uuid.NewString()))[:24]
	header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
	buf.WriteString("\r\n")

	for _, part := range []struct{ ctype, content string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		buf.WriteString("--" + boundary + "\r\n")
		header("Content-Type", part.ctype+`; charset="utf-8"`)
		header("Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQP(&buf, part.content); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")
	return buf.Bytes(), nil
}

func writeQP(buf *bytes.Buffer, s string) error {
	w := quotedprintable.NewWriter(buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	return w.Close()
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}

var _ Mailer = (*SMTPMailer)(nil)
