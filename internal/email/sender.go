package email

import (
	"context"
	"errors"
	"time"

	"colors-coach/internal/domain"
)

// Sender define la interfaz para envio de correos (verificacion y reportes).
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendProfileReport(ctx context.Context, toEmail string, displayName string, analysis domain.Analysis) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendProfileReport(_ context.Context, _ string, _ string, _ domain.Analysis) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
