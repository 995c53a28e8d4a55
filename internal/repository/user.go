package repository

import (
	"context"

	"collaborative-workspace/internal/domain"
)

// UserRepository 定义用户数据的存储和检索操作。
type UserRepository interface {
	// FindByUsername 根据用户名查找用户，不存在时返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID 根据用户 ID 查找用户，不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByIDs 批量查找用户，不存在的 ID 直接忽略。
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)

	// Save 创建或更新用户。用户名冲突时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error
}
