package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"sync"
	"time"

	"github.com/omsapp/oms-backend/pkg/logger"
)

const PasswordResetSubject = "Reset your OMS password"

var (
	//go:embed templates/password_reset.html
	emailTemplates embed.FS

	passwordResetTemplate = template.Must(template.New("password_reset.html").ParseFS(emailTemplates, "templates/password_reset.html"))
)

type passwordResetData struct {
	FirstName string
	ResetLink string
	ExpiresIn string
}

// ResetMailer renders reset emails and hands them to a Sender on a background goroutine
type ResetMailer struct {
	sender      Sender
	frontendURL string
	expiresIn   time.Duration
	timeout     time.Duration
	wg          sync.WaitGroup
}

func NewResetMailer(sender Sender, frontendURL string, expiresIn, timeout time.Duration) *ResetMailer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ResetMailer{
		sender:      sender,
		frontendURL: frontendURL,
		expiresIn:   expiresIn,
		timeout:     timeout,
	}
}

// ResetLink is the frontend page that redeems token
func (m *ResetMailer) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, url.QueryEscape(token))
}

// SendPasswordReset renders the email and returns; delivery happens detached from ctx
// so a finished request does not cancel it. Delivery failures are logged only.
func (m *ResetMailer) SendPasswordReset(_ context.Context, email, firstName, token string) error {
	var body bytes.Buffer
	data := passwordResetData{
		FirstName: firstName,
		ResetLink: m.ResetLink(token),
		ExpiresIn: humanDuration(m.expiresIn),
	}
	if err := passwordResetTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.sender.Send(ctx, email, PasswordResetSubject, body.String()); err != nil {
			logger.Error("Failed to send password reset email", err)
			return
		}
		logger.Debug("Password reset email dispatched")
	}()

	return nil
}

// Wait blocks until every in-flight delivery has finished
func (m *ResetMailer) Wait() {
	m.wg.Wait()
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}
