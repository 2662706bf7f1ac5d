package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender 只记录日志的发送实现，本地开发默认使用
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender logger 为 nil 时使用全局 logger
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerification(ctx context.Context, v Verification) error {
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("verification notification",
		zap.String("account_id", v.AccountID),
		zap.String("channel", v.Channel),
		zap.String("email", v.Email),
		zap.String("phone", v.Phone),
		zap.Time("sent_at", v.SentAt),
	)
	return nil
}

func (s *LogSender) Close() error { return nil }

var _ Sender = (*LogSender)(nil)
