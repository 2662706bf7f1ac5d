package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkers     = 2
	defaultBuffer      = 256
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher 用固定数量的 Worker 异步调用 Sender
// 发送失败只记录日志，不影响注册结果
type Dispatcher struct {
	sender  Sender
	tasks   chan Verification
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewDispatcher 创建并启动 Dispatcher
func NewDispatcher(sender Sender, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		sender:  sender,
		tasks:   make(chan Verification, buffer),
		timeout: defaultSendTimeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	zap.L().Info("Notify Dispatcher started", zap.Int("workers", workers), zap.Int("buffer", buffer))
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for v := range d.tasks {
		d.send(v)
	}
}

// Notify 投递验证通知，不阻塞调用方；队列满或已关闭时丢弃并记录日志
// 返回值表示是否入队
func (d *Dispatcher) Notify(v Verification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		zap.L().Warn("Notify dispatcher closed, verification dropped", zap.String("account_id", v.AccountID))
		return false
	}
	select {
	case d.tasks <- v:
		return true
	default:
		zap.L().Warn("Notify task channel full, verification dropped",
			zap.String("account_id", v.AccountID),
			zap.String("channel", v.Channel),
		)
		return false
	}
}

func (d *Dispatcher) send(v Verification) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Notify sender panic", zap.Any("recover", rec), zap.String("account_id", v.AccountID))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.sender.SendVerification(ctx, v); err != nil {
		zap.L().Error("send verification failed",
			zap.Error(err),
			zap.String("account_id", v.AccountID),
			zap.String("channel", v.Channel),
		)
	}
}

// Close 等待队列中的通知发送完毕，然后关闭 Sender
func (d *Dispatcher) Close() error {
	var err error
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.tasks)
		d.mu.Unlock()

		d.wg.Wait()
		err = d.sender.Close()
	})
	return err
}

var _ Notifier = (*Dispatcher)(nil)
