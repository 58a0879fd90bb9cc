package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ErrEmptyAPIKey ключ Resend не задан
var ErrEmptyAPIKey = errors.New("resend api key is empty")

// Message письмо для отправки
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender отправляет транзакционные письма
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender реализация Sender через API Resend
type ResendSender struct {
	client *resend.Client
}

// NewResendSender создает клиента Resend
func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	return nil
}
