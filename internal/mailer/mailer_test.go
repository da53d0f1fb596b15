package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketapi/internal/config"
	"marketapi/internal/model"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	assert.True(t, r.Has(model.NotifyBookingConfirmed))
	assert.False(t, r.Has(model.NotifyNewReview))

	msg, err := r.Render(model.NotifyBookingRequest, "host@example.com", Data{
		Name:            "Hank",
		Counterpart:     "Gina",
		ExperienceTitle: "Sunset <kayak> tour",
		Date:            "2026-06-01",
		Guests:          2,
		Amount:          "USD 120.00",
		Hours:           48,
		Link:            "https://market.example/host/bookings/b-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "host@example.com", msg.To)
	assert.Equal(t, "New booking request for Sunset <kayak> tour", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Hank,")
	assert.Contains(t, msg.HTML, "Sunset &lt;kayak&gt; tour")
	assert.Contains(t, msg.HTML, "within 48 hours")
	assert.Contains(t, msg.HTML, `href="https://market.example/host/bookings/b-1"`)

	_, err = r.Render(model.NotifyNewReview, "x@example.com", Data{})
	assert.Error(t, err)
}

func TestRenderer_AllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for kind := range r.templates {
		msg, err := r.Render(kind, "a@example.com", Data{ExperienceTitle: "Walk", Counterpart: "Ann", Amount: "USD 1.00"})
		require.NoError(t, err, kind)
		assert.NotEmpty(t, msg.Subject, kind)
		assert.Contains(t, msg.HTML, "Hi there,", kind)
	}
}

func TestNew_FallsBackToLogSender(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(config.SMTPConfig{}, zerolog.New(&buf))
	require.NoError(t, err)
	require.IsType(t, &LogSender{}, s)

	require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "Hello", HTML: "<p>x</p>"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "email_logged", entry["event"])
	assert.Equal(t, "a@example.com", entry["to"])
}

func TestNew_SMTP(t *testing.T) {
	s, err := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "no-reply@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}
