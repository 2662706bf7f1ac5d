// Package model 定义数据库实体模型
// 本文件定义注册账号模型
package model

import (
	"database/sql"
	"time"

	"golang.org/x/crypto/bcrypt" // 密码哈希库
	"gorm.io/gorm"
)

// Account 注册账号模型
// 对应数据库 account 表；username/email/phone/idempotency_key 均有唯一索引，
// 并发注册时由数据库唯一约束兜底
type Account struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// AccountId 账号对外唯一标识，格式：usr_ + 32 位十六进制
	AccountId string `gorm:"column:account_id;uniqueIndex:uk_account_account_id;type:char(36);not null;comment:账号唯一id"`

	// FullName 姓名
	FullName string `gorm:"column:full_name;type:varchar(100);not null;comment:姓名"`

	// Username 用户名
	Username string `gorm:"column:username;uniqueIndex:uk_account_username;type:varchar(50);not null;comment:用户名"`

	// Email 邮箱
	Email string `gorm:"column:email;uniqueIndex:uk_account_email;type:varchar(255);not null;comment:邮箱"`

	// Phone 手机号，国际格式
	Phone string `gorm:"column:phone;uniqueIndex:uk_account_phone;type:varchar(16);not null;comment:电话"`

	// Password bcrypt 哈希后的密码，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码" json:"-"`

	// Dob 出生日期
	Dob time.Time `gorm:"column:dob;type:date;not null;comment:出生日期"`

	// AcceptTerms 是否同意服务条款
	AcceptTerms bool `gorm:"column:accept_terms;not null;comment:是否同意条款"`

	// Status 账号状态，见 account_status_enum
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.待验证，1.已验证，2.禁用"`

	// IdempotencyKey 创建该账号的幂等键，每个幂等键最多对应一个账号
	IdempotencyKey string `gorm:"column:idempotency_key;uniqueIndex:uk_account_idempotency_key;type:varchar(255);not null;comment:幂等键"`

	// VerifiedAt 完成验证的时间
	VerifiedAt sql.NullTime `gorm:"column:verified_at;type:datetime(3);comment:验证时间"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "account"
}

// SetPassword 使用 bcrypt 哈希明文密码并写入 Password 字段
// cost 小于 bcrypt.MinCost 时使用 bcrypt.DefaultCost
func (a *Account) SetPassword(plaintext string, cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return err
	}
	a.Password = string(hash)
	return nil
}

// CheckPassword 校验明文密码是否与存储的哈希匹配，供后续登录流程使用
func (a *Account) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(plaintext)) == nil
}
