package service

import (
	"context"
	"errors"
	"strings"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FolderDeletion 是一次目录级联删除的结果，以及删除后的完整列表。
type FolderDeletion struct {
	FolderIDs []string // 后序：子目录在父目录之前
	FileIDs   []string
	Folders   []domain.Folder
	Files     []domain.File
}

// TreeService 管理房间内的目录树：文件和目录的创建、重命名和删除。
type TreeService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
}

// NewTreeService 创建 TreeService 实例。
func NewTreeService(folderRepo repository.FolderRepository, fileRepo repository.FileRepository) *TreeService {
	if folderRepo == nil {
		panic("FolderRepository cannot be nil for TreeService")
	}
	if fileRepo == nil {
		panic("FileRepository cannot be nil for TreeService")
	}
	return &TreeService{folderRepo: folderRepo, fileRepo: fileRepo}
}

// CreateFile 在房间（可选目录）下创建空文件，返回新文件和房间的完整文件列表。
func (s *TreeService) CreateFile(ctx context.Context, userID, roomID, folderID, name, language string) (*domain.File, []domain.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || roomID == "" {
		return nil, nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "CreateFile"})

	if err := s.checkFolder(ctx, folderID, roomID); err != nil {
		return nil, nil, err
	}

	file := &domain.File{
		ID:           uuid.NewString(),
		Name:         name,
		Language:     InferLanguage(name, language),
		RoomID:       roomID,
		FolderID:     folderID,
		CreatedBy:    userID,
		LastEditedBy: userID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, nil, ErrDuplicateName
		}
		logCtx.WithError(err).Error("Failed to create file")
		return nil, nil, internalError(err)
	}

	files, err := s.ListFiles(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	logCtx.WithField("file_id", file.ID).Info("File created")
	return file, files, nil
}

// CreateFolder 在房间（可选父目录）下创建目录，返回新目录和房间的完整目录列表。
func (s *TreeService) CreateFolder(ctx context.Context, userID, roomID, parentFolderID, name string) (*domain.Folder, []domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" || roomID == "" {
		return nil, nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "CreateFolder"})

	if err := s.checkFolder(ctx, parentFolderID, roomID); err != nil {
		return nil, nil, err
	}

	folder := &domain.Folder{
		ID:             uuid.NewString(),
		Name:           name,
		RoomID:         roomID,
		ParentFolderID: parentFolderID,
		CreatedBy:      userID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, nil, ErrDuplicateName
		}
		logCtx.WithError(err).Error("Failed to create folder")
		return nil, nil, internalError(err)
	}

	folders, err := s.ListFolders(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	logCtx.WithField("folder_id", folder.ID).Info("Folder created")
	return folder, folders, nil
}

// RenameFolder 重命名目录，返回更新后的目录和完整目录列表。
func (s *TreeService) RenameFolder(ctx context.Context, roomID, folderID, name string) (*domain.Folder, []domain.Folder, error) {
	name = strings.TrimSpace(name)
	if folderID == "" || roomID == "" || name == "" {
		return nil, nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "folder_id": folderID, "operation": "RenameFolder"})

	folder, err := s.folderRepo.Rename(ctx, folderID, roomID, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrFolderNotFound):
			return nil, nil, ErrFolderNotFound
		case errors.Is(err, repository.ErrDuplicateEntry):
			return nil, nil, ErrDuplicateName
		}
		logCtx.WithError(err).Error("Failed to rename folder")
		return nil, nil, internalError(err)
	}

	folders, err := s.ListFolders(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return folder, folders, nil
}

// DeleteFile 删除文件并返回房间剩余的文件列表。
func (s *TreeService) DeleteFile(ctx context.Context, roomID, fileID string) ([]domain.File, error) {
	if fileID == "" || roomID == "" {
		return nil, ErrMissingFields
	}
	if err := s.fileRepo.Delete(ctx, fileID, roomID); err != nil {
		if !errors.Is(err, repository.ErrFileNotFound) {
			logrus.WithFields(logrus.Fields{"room_id": roomID, "file_id": fileID, "operation": "DeleteFile"}).WithError(err).Error("Failed to delete file")
		}
		return nil, mapRepoError(err, ErrFileGone)
	}
	return s.ListFiles(ctx, roomID)
}

// DeleteFolder 后序删除目录子树（子目录、各自的文件、目录本身），返回删除结果和剩余列表。
func (s *TreeService) DeleteFolder(ctx context.Context, roomID, folderID string) (*FolderDeletion, error) {
	if folderID == "" || roomID == "" {
		return nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "folder_id": folderID, "operation": "DeleteFolder"})

	if _, err := s.folderRepo.FindInRoom(ctx, folderID, roomID); err != nil {
		return nil, mapRepoError(err, ErrFolderGone)
	}
	folderIDs, fileIDs, err := s.folderRepo.DeleteTree(ctx, folderID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrFolderNotFound) {
			return nil, ErrFolderGone
		}
		logCtx.WithError(err).Error("Failed to delete folder subtree")
		return nil, internalError(err)
	}

	folders, err := s.ListFolders(ctx, roomID)
	if err != nil {
		return nil, err
	}
	files, err := s.ListFiles(ctx, roomID)
	if err != nil {
		return nil, err
	}
	logCtx.WithFields(logrus.Fields{"folders": len(folderIDs), "files": len(fileIDs)}).Info("Folder subtree deleted")
	return &FolderDeletion{FolderIDs: folderIDs, FileIDs: fileIDs, Folders: folders, Files: files}, nil
}

// GetFile 按 ID 读取文件。
func (s *TreeService) GetFile(ctx context.Context, fileID string) (*domain.File, error) {
	if fileID == "" {
		return nil, ErrMissingFields
	}
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		return nil, mapRepoError(err, ErrFileNotFound)
	}
	return file, nil
}

func (s *TreeService) ListFiles(ctx context.Context, roomID string) ([]domain.File, error) {
	files, err := s.fileRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "ListFiles"}).WithError(err).Error("Failed to list files")
		return nil, internalError(err)
	}
	return files, nil
}

func (s *TreeService) ListFolders(ctx context.Context, roomID string) ([]domain.Folder, error) {
	folders, err := s.folderRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "ListFolders"}).WithError(err).Error("Failed to list folders")
		return nil, internalError(err)
	}
	return folders, nil
}

// checkFolder 校验非根目录必须存在于同一房间。
func (s *TreeService) checkFolder(ctx context.Context, folderID, roomID string) error {
	if folderID == domain.RootFolderID {
		return nil
	}
	if _, err := s.folderRepo.FindInRoom(ctx, folderID, roomID); err != nil {
		return mapRepoError(err, ErrFolderNotFound)
	}
	return nil
}
