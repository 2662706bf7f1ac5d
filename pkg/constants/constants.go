package constants

const (
	IDEMPOTENCY_HEADER          = "Idempotency-Key"    // 幂等键请求头
	IDEMPOTENCY_CTX_KEY         = "idempotency_key"    // gin.Context 中的幂等键
	IDEMPOTENCY_CACHE_PREFIX    = "register:idem:"     // 幂等结果缓存前缀
	IDEMPOTENCY_REPLAY_TTL      = 86400                // 幂等结果缓存有效期（秒）
	ACCOUNT_ID_PREFIX           = "usr_"               // 账号 ID 前缀
	VERIFICATION_CHANNEL_EMAIL  = "email"              // 邮件验证渠道
	VERIFICATION_CHANNEL_SMS    = "sms"                // 短信验证渠道
	VERIFICATION_TOKEN_SUBJECT  = "verification_token" // 验证 Token 的 Subject
	VERIFICATION_TOKEN_EXPIRY_H = 48                   // 验证 Token 有效期（小时）
	VERIFICATION_CODE_PREFIX    = "verify_code_"       // 短信验证码缓存前缀
	MIN_REGISTER_AGE            = 13                   // 最小注册年龄
	DATE_LAYOUT                 = "2006-01-02"         // 出生日期格式
	SERVICE_NAME                = "User Registration API"
)
