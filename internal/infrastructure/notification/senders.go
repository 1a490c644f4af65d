package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/notification"
)

// LogEmailSender is a development stand-in for an email gateway.
// It logs the delivery instead of talking to an SMTP relay or provider API.
type LogEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender creates a log-backed email sender
func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger.Named("email")}
}

// Channel returns the channel this sender serves
func (s *LogEmailSender) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send logs the email delivery
func (s *LogEmailSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.Contains(msg.Recipient, "@") {
		return fmt.Errorf("invalid email recipient: %q", msg.Recipient)
	}
	s.logger.Info("email sent",
		zap.String("to", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.Int("body_length", len(msg.Body)))
	return nil
}

// LogSMSSender is a development stand-in for an SMS gateway.
type LogSMSSender struct {
	logger *zap.Logger
}

// NewLogSMSSender creates a log-backed SMS sender
func NewLogSMSSender(logger *zap.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger.Named("sms")}
}

// Channel returns the channel this sender serves
func (s *LogSMSSender) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send logs the SMS delivery. SMS bodies are truncated to a single
// message segment, the subject line is dropped.
func (s *LogSMSSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Recipient == "" {
		return fmt.Errorf("sms recipient cannot be empty")
	}
	body := msg.Body
	if len(body) > smsSegmentLimit {
		body = body[:smsSegmentLimit]
	}
	s.logger.Info("sms sent",
		zap.String("to", msg.Recipient),
		zap.String("body", body))
	return nil
}

// smsSegmentLimit is the GSM-7 single segment budget
const smsSegmentLimit = 160

// LogPushSender is a development stand-in for a push gateway.
type LogPushSender struct {
	logger *zap.Logger
}

// NewLogPushSender creates a log-backed push sender
func NewLogPushSender(logger *zap.Logger) *LogPushSender {
	return &LogPushSender{logger: logger.Named("push")}
}

// Channel returns the channel this sender serves
func (s *LogPushSender) Channel() notification.Channel {
	return notification.ChannelPush
}

// Send logs the push delivery
func (s *LogPushSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Recipient == "" {
		return fmt.Errorf("push recipient cannot be empty")
	}
	s.logger.Info("push sent",
		zap.String("to", msg.Recipient),
		zap.String("title", msg.Subject))
	return nil
}

var (
	_ notification.Notifier = (*LogEmailSender)(nil)
	_ notification.Notifier = (*LogSMSSender)(nil)
	_ notification.Notifier = (*LogPushSender)(nil)
)
