package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetMessage(t *testing.T) {
	msg, err := ResetMessage("ana@example.com", "https://ecohistorias.com.br/reset-password?token=abc", 2*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, ResetSubject, msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://ecohistorias.com.br/reset-password?token=abc"`)
	assert.Contains(t, msg.HTML, "2 horas")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hora", humanDuration(time.Hour))
	assert.Equal(t, "3 horas", humanDuration(3*time.Hour))
	assert.Equal(t, "90 minutos", humanDuration(90*time.Minute))
	assert.Equal(t, "30s", humanDuration(30*time.Second))
}

func TestCompose(t *testing.T) {
	raw := string(compose("Eco <no-reply@ecohistorias.com.br>", Message{
		To:      "ana@example.com",
		Subject: ResetSubject,
		HTML:    "<p>oi</p>\n",
	}))

	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.NotContains(t, raw, "Redefinição")
	assert.True(t, strings.HasSuffix(raw, "<p>oi</p>\r\n"))
}

func TestLogMailer(t *testing.T) {
	var m Mailer = LogMailer{}
	assert.NoError(t, m.Send(context.Background(), Message{To: "ana@example.com", Subject: "x"}))
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestSMTPMailer_RequiresRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: "2525", From: "no-reply@example.com"})
	assert.ErrorIs(t, m.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipient)
}
