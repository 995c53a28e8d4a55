package repository

import (
	"context"

	"collaborative-workspace/internal/domain"
)

// FolderRepository 定义房间目录树的存储操作。
type FolderRepository interface {
	// Create 创建目录。同级重名时返回 ErrDuplicateEntry。
	Create(ctx context.Context, folder *domain.Folder) error

	// FindInRoom 查找属于 roomID 的目录，不存在时返回 ErrFolderNotFound。
	FindInRoom(ctx context.Context, folderID, roomID string) (*domain.Folder, error)

	// ListByRoom 返回房间内全部目录，按创建时间排序。
	ListByRoom(ctx context.Context, roomID string) ([]domain.Folder, error)

	// Rename 修改目录名称并返回更新后的目录。
	Rename(ctx context.Context, folderID, roomID, name string) (*domain.Folder, error)

	// DeleteTree 后序删除 folderID 及其全部子目录和其中的文件，整体在一个事务内完成。
	// 返回被删除的目录 ID 和文件 ID。子树已部分删除时继续删除剩余部分。
	DeleteTree(ctx context.Context, folderID, roomID string) (folderIDs []string, fileIDs []string, err error)
}

// FileRepository 定义房间内文件的存储操作。
type FileRepository interface {
	// Create 创建文件。同级重名时返回 ErrDuplicateEntry。
	Create(ctx context.Context, file *domain.File) error

	// FindByID 根据 ID 查找文件，不存在时返回 ErrFileNotFound。
	FindByID(ctx context.Context, fileID string) (*domain.File, error)

	// FindInRoom 查找属于 roomID 的文件，不存在时返回 ErrFileNotFound。
	FindInRoom(ctx context.Context, fileID, roomID string) (*domain.File, error)

	// ListByRoom 返回房间内全部文件，按创建时间排序。
	ListByRoom(ctx context.Context, roomID string) ([]domain.File, error)

	// UpdateContent 覆盖文件内容并记录编辑者，返回更新后的文件。
	// 最后完成的写入生效。
	UpdateContent(ctx context.Context, fileID, roomID, content, editorID string) (*domain.File, error)

	// Delete 删除文件，不存在时返回 ErrFileNotFound。
	Delete(ctx context.Context, fileID, roomID string) error
}
