package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
)

// GormFolderRepository 是 FolderRepository 接口的 GORM 实现
type GormFolderRepository struct {
	db *gorm.DB
}

// NewGormFolderRepository 创建 GormFolderRepository 实例
func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	if db == nil {
		panic("database connection cannot be nil for GormFolderRepository")
	}
	return &GormFolderRepository{db: db}
}

// Create 创建目录，同级重名由唯一索引拒绝
func (r *GormFolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		if dup := translateWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("gorm: create folder '%s' in room '%s': %w", folder.Name, folder.RoomID, err)
	}
	return nil
}

// FindInRoom 查找属于指定房间的目录
func (r *GormFolderRepository) FindInRoom(ctx context.Context, folderID, roomID string) (*domain.Folder, error) {
	var folder domain.Folder
	err := r.db.WithContext(ctx).Where("id = ? AND room_id = ?", folderID, roomID).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrFolderNotFound
		}
		return nil, fmt.Errorf("gorm: find folder '%s' in room '%s': %w", folderID, roomID, err)
	}
	return &folder, nil
}

// ListByRoom 返回房间内全部目录
func (r *GormFolderRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Folder, error) {
	folders := make([]domain.Folder, 0)
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at asc").Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list folders of room '%s': %w", roomID, err)
	}
	return folders, nil
}

// Rename 修改目录名称
func (r *GormFolderRepository) Rename(ctx context.Context, folderID, roomID, name string) (*domain.Folder, error) {
	folder, err := r.FindInRoom(ctx, folderID, roomID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(folder).Update("name", name).Error; err != nil {
		if dup := translateWriteError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("gorm: rename folder '%s' in room '%s': %w", folderID, roomID, err)
	}
	folder.Name = name
	return folder, nil
}

// DeleteTree 在一个事务内后序删除整棵子树
func (r *GormFolderRepository) DeleteTree(ctx context.Context, folderID, roomID string) ([]string, []string, error) {
	var folderIDs, fileIDs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 事务失败时整体回滚，重置收集结果
		folderIDs, fileIDs = nil, nil
		return deleteSubtree(tx, roomID, folderID, map[string]bool{}, &folderIDs, &fileIDs)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gorm: delete folder tree '%s' in room '%s': %w", folderID, roomID, err)
	}
	return folderIDs, fileIDs, nil
}

// deleteSubtree 先递归子目录，再删除本目录下的文件，最后删除目录本身。
// 已不存在的节点直接跳过，因此对部分删除的子树重复执行会收敛。
func deleteSubtree(tx *gorm.DB, roomID, folderID string, visited map[string]bool, folderIDs, fileIDs *[]string) error {
	if visited[folderID] {
		return nil
	}
	visited[folderID] = true

	var children []string
	if err := tx.Model(&domain.Folder{}).
		Where("room_id = ? AND parent_folder_id = ?", roomID, folderID).
		Pluck("id", &children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteSubtree(tx, roomID, child, visited, folderIDs, fileIDs); err != nil {
			return err
		}
	}

	var files []string
	if err := tx.Model(&domain.File{}).
		Where("room_id = ? AND folder_id = ?", roomID, folderID).
		Pluck("id", &files).Error; err != nil {
		return err
	}
	if len(files) > 0 {
		if err := tx.Where("room_id = ? AND folder_id = ?", roomID, folderID).Delete(&domain.File{}).Error; err != nil {
			return err
		}
		*fileIDs = append(*fileIDs, files...)
	}

	result := tx.Where("id = ? AND room_id = ?", folderID, roomID).Delete(&domain.Folder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		*folderIDs = append(*folderIDs, folderID)
	}
	return nil
}
