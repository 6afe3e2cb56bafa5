// Package notify sends transactional email to club owners and members.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	log "github.com/sirupsen/logrus"
)

// Message is one email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Result is the provider's receipt for a sent message.
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
//
//go:generate mockgen -source=$GOFILE -destination=../service/notify_mocks_test.go -package=service_test
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// ResendSender sends email via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("resend send: %w", err)
	}

	log.WithFields(log.Fields{"message_id": sent.Id, "subject": msg.Subject}).Debug("email sent")
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// LogSender only logs. Used when no provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) (Result, error) {
	log.WithFields(log.Fields{"to": msg.To, "subject": msg.Subject}).Info("email not sent, no provider configured")
	return Result{SentAt: time.Now()}, nil
}

// NewSender picks the sender for the configured provider.
func NewSender(provider, apiKey, from string) Sender {
	if provider == "resend" {
		return NewResendSender(apiKey, from)
	}
	return LogSender{}
}
