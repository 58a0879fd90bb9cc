package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/mailer"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactConfig адреса писем контактной формы
type ContactConfig struct {
	From             string
	ContactEmail     string
	SendConfirmation bool
}

// ContactService отправляет сообщения контактной формы владельцу магазина
type ContactService struct {
	sender   mailer.Sender
	renderer *mailer.Renderer
	cfg      ContactConfig
	logger   interfaces.LoggerPort
}

// NewContactService создает сервис. sender = nil означает, что почта не настроена.
func NewContactService(sender mailer.Sender, renderer *mailer.Renderer, cfg ContactConfig, logger interfaces.LoggerPort) *ContactService {
	return &ContactService{
		sender:   sender,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Validate проверяет обязательные поля и формат адреса
func (s *ContactService) Validate(req models.ContactRequest) error {
	switch {
	case isBlank(req.Name):
		return required("name")
	case isBlank(req.Email):
		return required("email")
	case isBlank(req.Message):
		return required("message")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

// Submit отправляет уведомление владельцу и, если включено, подтверждение отправителю.
// Ошибка подтверждения только логируется.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if s.sender == nil || s.renderer == nil {
		s.logger.ErrorWithContext(ctx, "Почтовый сервис не настроен")
		return ErrMailerUnavailable
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.Validate(req); err != nil {
		return err
	}

	subject, html, err := s.renderer.Notification(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	err = s.sender.Send(ctx, mailer.Message{
		From:    s.cfg.From,
		To:      []string{s.cfg.ContactEmail},
		ReplyTo: req.Email,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		contactMessages.WithLabelValues("notification", "error").Inc()
		s.logger.ErrorWithContext(ctx, "Ошибка отправки уведомления",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	contactMessages.WithLabelValues("notification", "ok").Inc()

	if s.cfg.SendConfirmation {
		s.sendConfirmation(ctx, req)
	}
	return nil
}

func (s *ContactService) sendConfirmation(ctx context.Context, req models.ContactRequest) {
	locale := models.ParseLocale(req.Locale)

	subject, html, err := s.renderer.Confirmation(req, locale)
	if err == nil {
		err = s.sender.Send(ctx, mailer.Message{
			From:    s.cfg.From,
			To:      []string{req.Email},
			Subject: subject,
			HTML:    html,
		})
	}
	if err != nil {
		contactMessages.WithLabelValues("confirmation", "error").Inc()
		s.logger.WarnWithContext(ctx, "Не удалось отправить подтверждение",
			interfaces.LogField{Key: "locale", Value: locale.String()},
			interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}
	contactMessages.WithLabelValues("confirmation", "ok").Inc()
}
