package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/omsapp/oms-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      string
	subject string
	body    string
	hasDL   bool
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody, hasDL: hasDeadline})
	return f.err
}

func TestResetMailer_SendPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	m := NewResetMailer(sender, "https://oms.example", time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.SendPasswordReset(ctx, "user@oms.com", "Ada", "a+b/c="))
	cancel()
	m.Wait()

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "user@oms.com", mail.to)
	assert.Equal(t, PasswordResetSubject, mail.subject)
	assert.True(t, mail.hasDL)
	assert.Contains(t, mail.body, "https://oms.example/reset-password?token=a%2Bb%2Fc%3D")
	assert.Contains(t, mail.body, "Hello Ada")
	assert.Contains(t, mail.body, "1 hour")
}

func TestResetMailer_EscapesName(t *testing.T) {
	sender := &fakeSender{}
	m := NewResetMailer(sender, "https://oms.example", time.Hour, time.Second)

	require.NoError(t, m.SendPasswordReset(context.Background(), "user@oms.com", "<script>", "tok"))
	m.Wait()

	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].body, "<script>")
}

func TestResetMailer_DeliveryFailureIsNotReturned(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	m := NewResetMailer(sender, "https://oms.example", time.Hour, time.Second)

	assert.NoError(t, m.SendPasswordReset(context.Background(), "user@oms.com", "", "tok"))
	m.Wait()
	assert.Len(t, sender.sent, 1)
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: time.Hour, want: "1 hour"},
		{in: 3 * time.Hour, want: "3 hours"},
		{in: 30 * time.Minute, want: "30 minutes"},
		{in: 90 * time.Second, want: "1m30s"},
		{in: 0, want: "a short time"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, humanDuration(tt.in))
		})
	}
}

func TestBuildHTMLMessage(t *testing.T) {
	msg, err := buildHTMLMessage("admin@oms.com", "user@oms.com", "Hi", "<p>body</p>")
	require.NoError(t, err)

	text := string(msg)
	assert.True(t, strings.HasPrefix(text, "From: <admin@oms.com>\r\nTo: <user@oms.com>\r\nSubject: Hi\r\n"))
	assert.Contains(t, text, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(text, "\r\n\r\n<p>body</p>"))

	_, err = buildHTMLMessage("admin@oms.com", "user@oms.com\r\nBcc: x@evil.example", "Hi", "")
	assert.Error(t, err)

	_, err = buildHTMLMessage("admin@oms.com", "user@oms.com", "Hi\r\nBcc: x@evil.example", "")
	assert.Error(t, err)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, LogSender{}, NewSender(config.EmailConfig{}))
	assert.IsType(t, &Client{}, NewSender(config.EmailConfig{Host: "smtp.oms.example", Port: 587}))

	err := NewClient(config.EmailConfig{}).Send(context.Background(), "user@oms.com", "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
