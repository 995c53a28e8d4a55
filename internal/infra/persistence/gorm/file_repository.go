package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
)

// GormFileRepository 是 FileRepository 接口的 GORM 实现
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository 创建 GormFileRepository 实例
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	if db == nil {
		panic("database connection cannot be nil for GormFileRepository")
	}
	return &GormFileRepository{db: db}
}

// Create 创建文件，同级重名由唯一索引拒绝
func (r *GormFileRepository) Create(ctx context.Context, file *domain.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		if dup := translateWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("gorm: create file '%s' in room '%s': %w", file.Name, file.RoomID, err)
	}
	return nil
}

// FindByID 根据 ID 查找文件
func (r *GormFileRepository) FindByID(ctx context.Context, fileID string) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrFileNotFound
		}
		return nil, fmt.Errorf("gorm: find file '%s': %w", fileID, err)
	}
	return &file, nil
}

// FindInRoom 查找属于指定房间的文件
func (r *GormFileRepository) FindInRoom(ctx context.Context, fileID, roomID string) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).Where("id = ? AND room_id = ?", fileID, roomID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrFileNotFound
		}
		return nil, fmt.Errorf("gorm: find file '%s' in room '%s': %w", fileID, roomID, err)
	}
	return &file, nil
}

// ListByRoom 返回房间内全部文件
func (r *GormFileRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.File, error) {
	files := make([]domain.File, 0)
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at asc").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list files of room '%s': %w", roomID, err)
	}
	return files, nil
}

// UpdateContent 整体覆盖内容。不做版本比较，最后完成的写入生效。
func (r *GormFileRepository) UpdateContent(ctx context.Context, fileID, roomID, content, editorID string) (*domain.File, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&domain.File{}).
		Where("id = ? AND room_id = ?", fileID, roomID).
		Updates(map[string]interface{}{
			"content":        content,
			"last_edited_by": editorID,
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: update content of file '%s': %w", fileID, err)
	}
	// MySQL 在值未变化时 RowsAffected 为 0，因此用回读判断文件是否存在
	return r.FindInRoom(ctx, fileID, roomID)
}

// Delete 删除文件
func (r *GormFileRepository) Delete(ctx context.Context, fileID, roomID string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND room_id = ?", fileID, roomID).Delete(&domain.File{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete file '%s' in room '%s': %w", fileID, roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrFileNotFound
	}
	return nil
}
