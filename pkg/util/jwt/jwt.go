package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"register_server/pkg/constants"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret             string
	VerificationExpiry time.Duration // 验证 Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig *JWTConfig

var (
	// ErrNotInitialized Init 之前调用签发/解析
	ErrNotInitialized = errors.New("jwt: not initialized")
	// ErrEmptySecret 未配置签名密钥
	ErrEmptySecret = errors.New("jwt: empty secret")
)

// Init 初始化 JWT 配置，密钥为空时返回 ErrEmptySecret 且不修改已有配置
func Init(secret string, verificationExpiryHours int) error {
	if strings.TrimSpace(secret) == "" {
		return ErrEmptySecret
	}
	if verificationExpiryHours <= 0 {
		verificationExpiryHours = constants.VERIFICATION_TOKEN_EXPIRY_H
	}
	jwtConfig = &JWTConfig{
		Secret:             secret,
		VerificationExpiry: time.Duration(verificationExpiryHours) * time.Hour,
	}
	return nil
}

// Claims 验证 Token 声明
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Channel   string `json:"channel"`
	jwt.RegisteredClaims
}

// GenerateVerificationToken 生成账号验证 Token，随验证通知一起下发
// issuedAt 使用账号创建时间，重放时得到的 Token 声明保持一致
func GenerateVerificationToken(accountID, email, channel string, issuedAt time.Time) (string, error) {
	if jwtConfig == nil {
		return "", ErrNotInitialized
	}
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		Channel:   channel,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(jwtConfig.VerificationExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    "register_server",
			Subject:   constants.VERIFICATION_TOKEN_SUBJECT,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}

// ParseToken 解析并验证 Token，供后续的账号验证接口使用
func ParseToken(tokenString string) (*Claims, error) {
	if jwtConfig == nil {
		return nil, ErrNotInitialized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
