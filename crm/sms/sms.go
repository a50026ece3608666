// Package sms delivers verification codes to phone numbers.
package sms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"crmbot/core/logger"
	"crmbot/crm/validate"
)

// Sender delivers a one-time verification code to a phone number.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender writes the code to the log instead of dispatching a real SMS.
// It stands in until an SMS provider is wired up and doubles as the local
// development sender.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) SendCode(ctx context.Context, phone, code string) error {
	logger.LogEvent(ctx, logger.SMS, slog.LevelInfo, "sms.code_sent",
		slog.String("message_id", uuid.NewString()),
		slog.String("phone", validate.MaskPhone(phone)),
		slog.String("code", code),
	)
	return nil
}
