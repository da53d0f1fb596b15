package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"marketapi/internal/config"
	"marketapi/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Data feeds the templates. Fields a template does not use are ignored.
type Data struct {
	Name            string
	Counterpart     string
	ExperienceTitle string
	Date            string
	Guests          int
	Amount          string
	Hours           int
	Note            string
	Link            string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Renderer turns notification types into emails.
type Renderer struct {
	templates map[model.NotificationType]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{templates: make(map[model.NotificationType]*template.Template)}
	for _, kind := range []model.NotificationType{
		model.NotifyBookingRequest,
		model.NotifyBookingConfirmed,
		model.NotifyBookingDeclined,
		model.NotifyBookingCancelled,
		model.NotifyReviewReminder,
		model.NotifyPayoutSent,
		model.NotifyNewMessage,
	} {
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

// Has reports whether kind has an email template.
func (r *Renderer) Has(kind model.NotificationType) bool {
	_, ok := r.templates[kind]
	return ok
}

// Render builds the subject and HTML body for kind.
func (r *Renderer) Render(kind model.NotificationType, to string, data Data) (Message, error) {
	t, ok := r.templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("no email template for %s", kind)
	}
	// The subject is rendered through the HTML escaper too, so entities are undone afterwards.
	var subject, body bytes.Buffer
	if err := t.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := t.ExecuteTemplate(&body, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", kind, err)
	}
	return Message{To: to, Subject: html.UnescapeString(strings.TrimSpace(subject.String())), HTML: body.String()}, nil
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender configures the relay client. No connection is made until Send.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("event", "email_logged").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("bytes", len(msg.HTML)).
		Msg("smtp disabled, email not sent")
	return nil
}

// New picks the SMTP sender when a host is configured and the log sender otherwise.
func New(cfg config.SMTPConfig, log zerolog.Logger) (Sender, error) {
	if cfg.Host == "" {
		return NewLogSender(log), nil
	}
	return NewSMTPSender(cfg)
}
