// Package mq 通过 Kafka 投递注册验证事件，由下游邮件/短信服务消费
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"register_server/internal/config"
	"register_server/internal/infrastructure/notify"
)

// EventVerificationRequested 验证事件类型
const EventVerificationRequested = "verification.requested"

// VerificationEvent 写入 Kafka 的消息体
type VerificationEvent struct {
	Type       string              `json:"type"`
	OccurredAt time.Time           `json:"occurredAt"`
	Payload    notify.Verification `json:"payload"`
}

// messageWriter kafka.Writer 的最小子集，便于替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender 将验证通知写入 Kafka 主题
type KafkaSender struct {
	writer messageWriter
	topic  string
}

// NewKafkaSender 根据配置创建 Writer
func NewKafkaSender(cfg *config.KafkaConfig) *KafkaSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.VerificationTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	return &KafkaSender{writer: writer, topic: cfg.VerificationTopic}
}

// CreateTopic 创建验证事件主题，已存在时 Kafka 返回错误，仅记录日志
func CreateTopic(cfg *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", cfg.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions := cfg.Partition
	if partitions <= 0 {
		partitions = 1
	}
	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.VerificationTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		zap.L().Warn("create kafka topic", zap.String("topic", cfg.VerificationTopic), zap.Error(err))
	}
	return nil
}

// newVerificationMessage 以账号 ID 作为消息 Key，同一账号的事件落在同一分区
func newVerificationMessage(v notify.Verification, now time.Time) (kafka.Message, error) {
	value, err := json.Marshal(VerificationEvent{
		Type:       EventVerificationRequested,
		OccurredAt: now,
		Payload:    v,
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(v.AccountID),
		Value: value,
		Time:  now,
	}, nil
}

func (k *KafkaSender) SendVerification(ctx context.Context, v notify.Verification) error {
	msg, err := newVerificationMessage(v, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	zap.L().Debug("verification event published", zap.String("topic", k.topic), zap.String("account_id", v.AccountID))
	return nil
}

func (k *KafkaSender) Close() error {
	return k.writer.Close()
}

var _ notify.Sender = (*KafkaSender)(nil)
