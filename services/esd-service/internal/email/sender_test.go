package email

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageHeaders(t *testing.T) {
	m := newMessage("shop@example.com", Message{
		FromName: "No Reply",
		To:       "jane@example.com",
		ToName:   "Jane Doe",
		Subject:  "Your serial number",
		HTML:     "<p>hi</p>",
		Plain:    "hi",
	})

	assert.Equal(t, []string{`"No Reply" <shop@example.com>`}, m.GetHeader("From"))
	assert.Equal(t, []string{`"Jane Doe" <jane@example.com>`}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your serial number"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "text/plain")
	assert.Contains(t, body, "text/html")
}

func TestNewMessageSinglePart(t *testing.T) {
	m := newMessage("shop@example.com", Message{To: "jane@example.com", Plain: "only text"})
	assert.Equal(t, []string{"shop@example.com"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "multipart/alternative")
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1}, slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, NewNoopSender(slog.New(slog.DiscardHandler)).Send(context.Background(), Message{To: "a@example.com"}))
}
