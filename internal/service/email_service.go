package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// EmailMessage - письмо для отправки
type EmailMessage struct {
	To             string
	Subject        string
	Text           string
	HTML           string
	IdempotencyKey string
}

// EmailSender отправляет письма
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NoopEmailSender используется, когда отправка почты не настроена
type NoopEmailSender struct{}

// Send всегда отклоняет письмо: без провайдера отправка недоступна
func (s *NoopEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	logger.Log.Warn("Отправка почты не настроена", zap.String("to", msg.To))
	return fmt.Errorf("%w: email delivery is not configured", apperrors.ErrUnavailable)
}

// ResendEmailSender отправляет письма через Resend REST API
type ResendEmailSender struct {
	from   string
	client *resend.Client
}

// NewResendEmailSender создает отправителя Resend
func NewResendEmailSender(apiKey, from string) (*ResendEmailSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailSender{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

// NewEmailSender возвращает Resend при наличии ключа, иначе заглушку
func NewEmailSender(apiKey, from string) EmailSender {
	if apiKey == "" {
		return &NoopEmailSender{}
	}
	sender, err := NewResendEmailSender(apiKey, from)
	if err != nil {
		logger.Log.Warn("Resend не настроен, отправка почты отключена", zap.Error(err))
		return &NoopEmailSender{}
	}
	return sender
}

// Send отправляет письмо, повторяя попытку при rate limit и временных сетевых ошибках
func (s *ResendEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" || msg.Subject == "" {
		return fmt.Errorf("%w: recipient and subject are required", apperrors.ErrValidation)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}

	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			logger.Log.Warn("Повтор отправки письма", zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("%w: resend send failed: %v", apperrors.ErrUnavailable, err)
	}

	return fmt.Errorf("%w: resend send failed after retries: %v", apperrors.ErrUnavailable, lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
