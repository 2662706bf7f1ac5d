// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string `toml:"host"`        // 服务器监听地址，如 "0.0.0.0"
	Port        int    `toml:"port"`        // 服务器监听端口，如 8000
	Mode        string `toml:"mode"`        // 运行模式：dev / release
	SSLRedirect bool   `toml:"sslRedirect"` // 是否将 HTTP 重定向到 HTTPS
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// StorageConfig 账号存储配置
type StorageConfig struct {
	Mode string `toml:"mode"` // 存储模式："mysql" 或 "memory"
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`  // 是否启用幂等结果缓存
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// IdempotencyConfig 幂等配置
type IdempotencyConfig struct {
	ReplayTTL int `toml:"replayTTL"` // 幂等结果缓存有效期（秒）
}

// AuthCodeConfig 短信验证码服务配置（阿里云 SMS）
type AuthCodeConfig struct {
	AccessKeyID     string `toml:"accessKeyID"`     // 阿里云 AccessKey ID
	AccessKeySecret string `toml:"accessKeySecret"` // 阿里云 AccessKey Secret
	SignName        string `toml:"signName"`        // 短信签名名称
	TemplateCode    string `toml:"templateCode"`    // 短信模板 Code
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	HostPort          string        `toml:"hostPort"`          // Kafka 服务器地址，如 "localhost:9092"
	VerificationTopic string        `toml:"verificationTopic"` // 验证通知主题
	Partition         int           `toml:"partition"`         // 分区数
	Timeout           time.Duration `toml:"timeout"`           // 超时时间（秒）
}

// VerificationConfig 注册验证通知配置
type VerificationConfig struct {
	Channel          string `toml:"channel"`          // 验证渠道："email" 或 "sms"
	Sender           string `toml:"sender"`           // 发送实现："log"、"kafka" 或 "aliyun"
	Workers          int    `toml:"workers"`          // 异步发送协程数
	Buffer           int    `toml:"buffer"`           // 异步发送队列长度
	TokenSecret      string `toml:"tokenSecret"`      // 验证 Token 签名密钥
	TokenExpiryHours int    `toml:"tokenExpiryHours"` // 验证 Token 有效期（小时）
}

// PasswordConfig 密码哈希配置
type PasswordConfig struct {
	BcryptCost int `toml:"bcryptCost"` // bcrypt 代价因子，0 表示使用默认值
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig         `toml:"mainConfig"`
	MysqlConfig        `toml:"mysqlConfig"`
	StorageConfig      `toml:"storageConfig"`
	RedisConfig        `toml:"redisConfig"`
	IdempotencyConfig  `toml:"idempotencyConfig"`
	AuthCodeConfig     `toml:"authCodeConfig"`
	LogConfig          `toml:"logConfig"`
	KafkaConfig        `toml:"kafkaConfig"`
	VerificationConfig `toml:"verificationConfig"`
	PasswordConfig     `toml:"passwordConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml",
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 从指定路径加载配置文件（测试或命令行指定路径时使用）
func LoadFile(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return conf, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
