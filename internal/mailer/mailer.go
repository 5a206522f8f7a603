package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/digest"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type Config struct {
	Host string
	Port int
	// Secure dials implicit TLS (port 465). Otherwise the connection is upgraded with STARTTLS
	// when the server offers it.
	Secure bool
	User   string
	Pass   string
	From   string
	// To may hold several comma separated addresses.
	To string
}

// SMTP delivers the digest as a single HTML email.
type SMTP struct {
	cfg      Config
	location *time.Location
	now      func() time.Time
	tls      *tls.Config
}

func New(cfg Config, loc *time.Location) *SMTP {
	if loc == nil {
		loc = time.UTC
	}
	return &SMTP{
		cfg:      cfg,
		location: loc,
		now:      time.Now,
		tls:      &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

// Subject is the subject line for a digest sent at t.
func Subject(t time.Time, loc *time.Location) string {
	return "Daily job roundup — " + t.In(loc).Format(digest.DateLayout)
}

// Send delivers html and returns the Message-ID of the sent email. Failures are not retried.
func (s *SMTP) Send(ctx context.Context, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return "", fmt.Errorf("parse sender %q: %w", s.cfg.From, err)
	}
	to, err := mail.ParseAddressList(s.cfg.To)
	if err != nil {
		return "", fmt.Errorf("parse recipients %q: %w", s.cfg.To, err)
	}

	msg, id, err := s.compose(from, to, html)
	if err != nil {
		return "", err
	}

	rcpts := make([]string, len(to))
	for i, a := range to {
		rcpts[i] = a.Address
	}
	if err := s.deliver(ctx, from.Address, rcpts, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("smtp: %w", ctxErr)
		}
		return "", err
	}
	return id, nil
}

func (s *SMTP) deliver(ctx context.Context, from string, to []string, msg []byte) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	// Closing the connection unblocks whatever command is in flight when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c := smtp.NewClient(conn)
	defer c.Close()

	if !s.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(s.tls); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if s.cfg.User != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.User, s.cfg.Pass)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.SendMail(from, to, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}
	return nil
}

func (s *SMTP) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	if s.cfg.Secure {
		d := &tls.Dialer{Config: s.tls}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("smtp dial tls %s: %w", addr, err)
		}
		return conn, nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	return conn, nil
}

func (s *SMTP) compose(from *mail.Address, to []*mail.Address, html string) ([]byte, string, error) {
	var h mail.Header
	now := s.now()
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(Subject(now, s.location))
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("generate message id: %w", err)
	}
	id, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("read message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, "", fmt.Errorf("create message: %w", err)
	}
	if _, err := io.WriteString(w, html); err != nil {
		return nil, "", fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finish message: %w", err)
	}
	return buf.Bytes(), "<" + id + ">", nil
}

// Preview writes the digest to W instead of sending it.
type Preview struct {
	W io.Writer
}

func (p Preview) Send(_ context.Context, html string) (string, error) {
	if _, err := fmt.Fprintln(p.W, html); err != nil {
		return "", err
	}
	return "dry-run", nil
}
