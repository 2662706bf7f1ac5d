package sms

import (
	"context"
	"os"
	"strings"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi20170525 "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"register_server/internal/config"
	"register_server/internal/infrastructure/notify"
	"register_server/pkg/constants"
	"register_server/pkg/errorx"
	"register_server/pkg/util/random"
)

// smsClient 阿里云短信客户端的最小子集
type smsClient interface {
	SendSmsWithOptions(request *dysmsapi20170525.SendSmsRequest, runtime *util.RuntimeOptions) (*dysmsapi20170525.SendSmsResponse, error)
}

// codeSender 生成验证码并写入 CodeStore，deliver 负责实际下发
type codeSender struct {
	store   CodeStore
	deliver func(phone, code string) error
}

func codeKey(accountID string) string {
	return constants.VERIFICATION_CODE_PREFIX + accountID
}

// SendVerification 同一账号已有未过期验证码时不重复发送
func (s *codeSender) SendVerification(ctx context.Context, v notify.Verification) error {
	if v.Phone == "" {
		return errorx.Newf(errorx.CodeNotifyError, "account %s has no phone number", v.AccountID)
	}
	key := codeKey(v.AccountID)
	if s.store != nil {
		existing, err := s.store.Get(ctx, key)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeNotifyError, "check verification code")
		}
		if existing != "" {
			zap.L().Info("verification code already sent", zap.String("account_id", v.AccountID))
			return nil
		}
	}

	code := random.GetVerificationCode(6)
	// 先占位后发送，发送失败时回滚
	if s.store != nil {
		if err := s.store.Set(ctx, key, code, codeTTL); err != nil {
			return errorx.Wrap(err, errorx.CodeNotifyError, "store verification code")
		}
	}
	if err := s.deliver(v.Phone, code); err != nil {
		if s.store != nil {
			_ = s.store.Delete(context.Background(), key)
		}
		return errorx.Wrap(err, errorx.CodeNotifyError, "deliver verification sms")
	}
	return nil
}

func (s *codeSender) Close() error { return nil }

// NewMockSender 不调用第三方短信，仅记录日志
func NewMockSender(store CodeStore) notify.Sender {
	return &codeSender{
		store: store,
		deliver: func(phone, code string) error {
			zap.L().Info("【MockSMS】verification code", zap.String("phone", phone), zap.String("code", code))
			return nil
		},
	}
}

// NewAliyunSender 使用阿里云短信发送验证码
func NewAliyunSender(client smsClient, auth config.AuthCodeConfig, store CodeStore) notify.Sender {
	signName := auth.SignName
	if signName == "" {
		signName = "阿里云短信测试"
	}
	templateCode := auth.TemplateCode
	if templateCode == "" {
		templateCode = "SMS_154950909"
	}
	return &codeSender{
		store: store,
		deliver: func(phone, code string) error {
			req := &dysmsapi20170525.SendSmsRequest{
				SignName:      tea.String(signName),
				TemplateCode:  tea.String(templateCode),
				PhoneNumbers:  tea.String(phone),
				TemplateParam: tea.String(`{"code":"` + code + `"}`),
			}
			rsp, err := client.SendSmsWithOptions(req, &util.RuntimeOptions{})
			if err != nil {
				return err
			}
			// err 为 nil 时仍需检查业务码
			if rsp != nil && rsp.Body != nil && tea.StringValue(rsp.Body.Code) != "OK" {
				return errorx.Newf(errorx.CodeNotifyError, "aliyun sms rejected: %s %s",
					tea.StringValue(rsp.Body.Code), tea.StringValue(rsp.Body.Message))
			}
			zap.L().Info("短信发送接口响应", zap.String("response", tea.StringValue(util.ToJSONString(rsp))))
			return nil
		},
	}
}

// shouldUseMock 环境变量指定或未配置真实 AccessKey 时使用 Mock
func shouldUseMock(auth config.AuthCodeConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("REGISTER_SMS_MODE")))
	if mode == "mock" || mode == "local" || mode == "test" {
		return true
	}
	ak := strings.ToLower(strings.TrimSpace(auth.AccessKeyID))
	ask := strings.ToLower(strings.TrimSpace(auth.AccessKeySecret))
	if ak == "" || ask == "" {
		return true
	}
	return strings.Contains(ak, "your accesskey") || strings.Contains(ask, "your accesskey")
}

// Init 创建短信验证发送器
func Init(auth config.AuthCodeConfig, store CodeStore) (notify.Sender, error) {
	if store == nil {
		zap.L().Warn("SMS sender has no code store, verification codes will not be persisted")
	}
	if shouldUseMock(auth) {
		zap.L().Warn("SMS Service 使用本地 Mock 模式（不调用第三方短信）")
		return NewMockSender(store), nil
	}

	conf := &openapi.Config{
		AccessKeyId:     tea.String(auth.AccessKeyID),
		AccessKeySecret: tea.String(auth.AccessKeySecret),
		Endpoint:        tea.String("dysmsapi.aliyuncs.com"),
	}
	client, err := dysmsapi20170525.NewClient(conf)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeNotifyError, "init aliyun sms client")
	}
	return NewAliyunSender(client, auth, store), nil
}
