package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket 实现令牌桶算法的限流器
// 只负责限速, 不做重试
type TokenBucket struct {
	rate           float64    // 每秒生成的令牌数
	capacity       float64    // 桶的容量
	tokens         float64    // 当前令牌数
	lastRefillTime time.Time  // 上次填充令牌的时间
	mutex          sync.Mutex // 互斥锁，保证并发安全
	now            func() time.Time
}

// NewTokenBucket 创建一个新的令牌桶限流器
// capacity <= 0 时取 QPM 的一半 (至少为1)
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	tb := &TokenBucket{
		rate:     float64(qpm) / 60.0,
		capacity: float64(capacity),
		tokens:   float64(capacity), // 初始填满
		now:      time.Now,
	}
	tb.lastRefillTime = tb.now()
	return tb
}

// refill 根据经过的时间填充令牌, 调用方持有锁
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.lastRefillTime = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 判断是否允许通过一个请求，消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Wait 等待直到有令牌可用, 上下文取消时返回其错误
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mutex.Lock()
		tb.refill()

		if tb.tokens >= 1.0 {
			tb.tokens -= 1.0
			tb.mutex.Unlock()
			return nil
		}

		waitTime := time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mutex.Unlock()

		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
