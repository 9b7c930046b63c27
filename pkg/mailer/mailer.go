package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/omsapp/oms-backend/config"
	"github.com/omsapp/oms-backend/pkg/logger"
)

var ErrNotConfigured = errors.New("smtp host is not configured")

// Sender delivers a single HTML message
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Client sends mail through an SMTP relay. Port 465 uses implicit TLS; any other port
// upgrades with STARTTLS when the server offers it.
type Client struct {
	cfg config.EmailConfig
}

func NewClient(cfg config.EmailConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if c.cfg.Host == "" {
		return ErrNotConfigured
	}

	from := c.cfg.From
	if from == "" {
		from = c.cfg.Username
	}
	if from == "" {
		return fmt.Errorf("smtp from address is not configured")
	}

	msg, err := buildHTMLMessage(from, to, subject, htmlBody)
	if err != nil {
		return err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if c.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: c.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if c.cfg.Username != "" || c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(c.cfg.Host, fmt.Sprintf("%d", c.cfg.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	if c.cfg.Port == 465 {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: c.cfg.Host}}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

func buildHTMLMessage(from, to, subject, htmlBody string) ([]byte, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	toAddr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if strings.ContainsAny(subject, "\r\n") {
		return nil, fmt.Errorf("subject contains a line break")
	}

	msg := fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		fromAddr.String(), toAddr.String(), subject, htmlBody,
	)
	return []byte(msg), nil
}

// LogSender stands in for SMTP when no relay is configured. Bodies carry reset links and are not logged.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	logger.Info("SMTP not configured, email not delivered", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// NewSender picks the SMTP client when a host is configured and the log sender otherwise
func NewSender(cfg config.EmailConfig) Sender {
	if cfg.Host == "" {
		return LogSender{}
	}
	return NewClient(cfg)
}
