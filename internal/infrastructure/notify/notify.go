// Package notify 负责注册成功后的验证通知
// Service 层只依赖 Notifier，发送实现（日志、Kafka、阿里云短信）由启动时选择
package notify

import (
	"context"
	"time"

	"register_server/internal/model"
	"register_server/pkg/util/jwt"
)

// Verification 一次验证通知的内容
type Verification struct {
	AccountID string    `json:"accountId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Channel   string    `json:"channel"`
	Token     string    `json:"token"`
	SentAt    time.Time `json:"sentAt"`
}

// Sender 同步发送验证通知
type Sender interface {
	SendVerification(ctx context.Context, v Verification) error
	Close() error
}

// Notifier 异步投递验证通知，调用方不等待发送结果
type Notifier interface {
	Notify(v Verification) bool
}

// NewVerification 根据新建账号构造验证通知并签发验证 Token
func NewVerification(acc *model.Account, channel string, sentAt time.Time) (Verification, error) {
	token, err := jwt.GenerateVerificationToken(acc.AccountId, acc.Email, channel, sentAt)
	if err != nil {
		return Verification{}, err
	}
	return Verification{
		AccountID: acc.AccountId,
		FullName:  acc.FullName,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Channel:   channel,
		Token:     token,
		SentAt:    sentAt,
	}, nil
}
