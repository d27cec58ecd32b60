package mail

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

func newTestSender(t *testing.T, cfg config.MailConfig) (*SMTPSender, *[]*gomail.Msg) {
	t.Helper()
	s, err := NewSMTPSender(cfg)
	require.NoError(t, err)
	var sent []*gomail.Msg
	s.deliver = func(ctx context.Context, m *gomail.Msg) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func rendered(t *testing.T, m *gomail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPSenderComposesHTMLMessage(t *testing.T) {
	s, sent := newTestSender(t, config.MailConfig{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com", Password: "pw"})

	err := s.Send(context.Background(), Message{To: "user@example.com", Subject: "Reset Password", HTML: "<p>Hi 👋</p><a href='x'>here</a>"})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	raw := rendered(t, (*sent)[0])
	assert.Contains(t, raw, "From: <noreply@example.com>")
	assert.Contains(t, raw, "To: <user@example.com>")
	assert.Contains(t, raw, "Subject: Reset Password")
	assert.Contains(t, raw, "Message-ID:")
	assert.Contains(t, raw, "Date:")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.Contains(t, raw, "Content-Transfer-Encoding: quoted-printable")
	assert.NotContains(t, raw, "👋")
}

func TestSMTPSenderEncodesNonASCIISubject(t *testing.T) {
	s, sent := newTestSender(t, config.MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"})

	require.NoError(t, s.Send(context.Background(), Message{To: "user@example.com", Subject: "Redefinição de senha", HTML: "<p>ok</p>"}))
	raw := rendered(t, (*sent)[0])
	assert.Contains(t, raw, "=?UTF-8?q?")
	assert.NotContains(t, raw, "Redefinição")
}

func TestSMTPSenderRejectsBadRecipient(t *testing.T) {
	s, sent := newTestSender(t, config.MailConfig{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com"})
	require.Error(t, s.Send(context.Background(), Message{To: "not an address"}))
	assert.Empty(t, *sent)
}

func TestSMTPSenderRequiresFromAddress(t *testing.T) {
	s, sent := newTestSender(t, config.MailConfig{Host: "smtp.example.com", Port: 587})
	require.Error(t, s.Send(context.Background(), Message{To: "user@example.com"}))
	assert.Empty(t, *sent)
}

func TestSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{Port: 587, Username: "noreply@example.com"})
	require.Error(t, err)
}

func TestSMTPSenderWrapsFailure(t *testing.T) {
	s, err := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com"})
	require.NoError(t, err)
	s.deliver = func(context.Context, *gomail.Msg) error { return errors.New("refused") }

	err = s.Send(context.Background(), Message{To: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

type captureSender struct {
	got chan Message
}

func (c *captureSender) Send(ctx context.Context, msg Message) error {
	c.got <- msg
	return nil
}

func TestDispatcherDeliversInBackground(t *testing.T) {
	sender := &captureSender{got: make(chan Message, 1)}
	d := NewDispatcher(sender, 1, 0, zap.NewNop())
	d.Start(context.Background())
	defer d.Stop()

	require.NoError(t, d.Send(context.Background(), Message{To: "user@example.com", Subject: "hi"}))
	select {
	case msg := <-sender.got:
		assert.Equal(t, "user@example.com", msg.To)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

type failingSender struct{}

func (failingSender) Send(ctx context.Context, msg Message) error {
	return errors.New("535 authentication failed")
}

func TestDispatcherReportsEveryAttempt(t *testing.T) {
	attempts := make(chan error, 4)
	d := NewDispatcher(failingSender{}, 1, 0, zap.NewNop())
	d.OnAttempt(func(err error) { attempts <- err })
	d.Start(context.Background())
	defer d.Stop()

	require.NoError(t, d.Send(context.Background(), Message{To: "user@example.com"}))
	select {
	case err := <-attempts:
		assert.EqualError(t, err, "535 authentication failed")
	case <-time.After(2 * time.Second):
		t.Fatal("attempt not reported")
	}
}

type countingSender struct {
	delivered int32
}

func (c *countingSender) Send(ctx context.Context, msg Message) error {
	atomic.AddInt32(&c.delivered, 1)
	return nil
}

func TestDispatcherShutdownDeliversQueuedMessages(t *testing.T) {
	sender := &countingSender{}
	d := NewDispatcher(sender, 1, 0, zap.NewNop())
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(context.Background(), Message{To: "user@example.com"}))
	}
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(5), atomic.LoadInt32(&sender.delivered))
	assert.Error(t, d.Send(context.Background(), Message{To: "late@example.com"}))
}
