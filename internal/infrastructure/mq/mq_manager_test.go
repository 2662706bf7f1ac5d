package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"register_server/internal/config"
	"register_server/internal/infrastructure/notify"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSender_PublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	sender := &KafkaSender{writer: w, topic: "user-verification"}
	v := notify.Verification{
		AccountID: "usr_123",
		Email:     "jane@example.com",
		Channel:   "email",
		Token:     "tok",
		SentAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, sender.SendVerification(context.Background(), v))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "usr_123", string(w.msgs[0].Key))

	var event VerificationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, EventVerificationRequested, event.Type)
	assert.Equal(t, v.AccountID, event.Payload.AccountID)
	assert.Equal(t, v.Token, event.Payload.Token)
	assert.True(t, v.SentAt.Equal(event.Payload.SentAt))

	require.NoError(t, sender.Close())
	assert.True(t, w.closed)
}

func TestKafkaSender_WriteError(t *testing.T) {
	sender := &KafkaSender{writer: &fakeWriter{err: errors.New("broker unavailable")}}
	err := sender.SendVerification(context.Background(), notify.Verification{AccountID: "usr_1"})
	assert.EqualError(t, err, "broker unavailable")
}

func TestNewKafkaSender_DefaultsTimeout(t *testing.T) {
	sender := NewKafkaSender(&config.KafkaConfig{HostPort: "localhost:9092", VerificationTopic: "user-verification"})
	w, ok := sender.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "user-verification", w.Topic)
	assert.Equal(t, 5*time.Second, w.WriteTimeout)
}
