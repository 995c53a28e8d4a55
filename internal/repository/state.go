package repository

import (
	"context"
	"time"
)

// StateRepository 定义与实时连接状态相关的操作，由 Redis 实现。
type StateRepository interface {
	// CheckRateLimit 递增 key 的计数，超出 limit 时返回 true。
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Ping 检查状态存储是否可用。
	Ping(ctx context.Context) error
}
