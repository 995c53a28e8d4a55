package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

// FindByUsername 实现根据用户名查找用户
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by username '%s': %w", username, err)
	}
	return &user, nil
}

// FindByID 实现根据用户 ID 查找用户
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id '%s': %w", id, err)
	}
	return &user, nil
}

// FindByIDs 批量查找用户，用于解析房间成员的显示名
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	var users []domain.User
	if len(ids) == 0 {
		return users, nil // 避免空的 IN 查询
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("gorm: find users by ids: %w", err)
	}
	return users, nil
}

// Save 新用户走 INSERT，已有用户走 UPDATE。
// 不使用 db.Save 的 upsert，避免用户名冲突时覆盖他人的记录。
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	var err error
	if user.CreatedAt.IsZero() {
		err = r.db.WithContext(ctx).Create(user).Error
	} else {
		err = r.db.WithContext(ctx).Save(user).Error
	}
	if err != nil {
		if dup := translateWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("gorm: save user (id: %s, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}
