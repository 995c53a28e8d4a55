package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"

	"github.com/sirupsen/logrus"
)

// DocumentService 负责文件内容的实时同步。冲突策略为整份内容 last-write-wins：
// 最后完成的写入就是存储值，也是此后广播的值。
type DocumentService struct {
	fileRepo  repository.FileRepository
	stateRepo repository.StateRepository

	editLimit  int           // 每个 (用户, 文件) 在 editWindow 内允许的编辑次数，<=0 表示不限流
	editWindow time.Duration
}

// NewDocumentService 创建 DocumentService 实例。
func NewDocumentService(fileRepo repository.FileRepository, stateRepo repository.StateRepository, editLimit int, editWindow time.Duration) *DocumentService {
	if fileRepo == nil {
		panic("FileRepository cannot be nil for DocumentService")
	}
	if stateRepo == nil {
		panic("StateRepository cannot be nil for DocumentService")
	}
	if editWindow <= 0 {
		editWindow = time.Second
	}
	return &DocumentService{fileRepo: fileRepo, stateRepo: stateRepo, editLimit: editLimit, editWindow: editWindow}
}

// OpenFile 读取房间内的文件，供 joinFile 使用。
func (s *DocumentService) OpenFile(ctx context.Context, roomID, fileID string) (*domain.File, error) {
	if fileID == "" || roomID == "" {
		return nil, ErrMissingFields
	}
	file, err := s.fileRepo.FindInRoom(ctx, fileID, roomID)
	if err != nil {
		return nil, mapRepoError(err, ErrFileNotFound)
	}
	return file, nil
}

// ApplyChange 持久化一次实时编辑并返回更新后的文件。content 为 nil 表示字段缺失。
func (s *DocumentService) ApplyChange(ctx context.Context, userID, roomID, fileID string, content *string) (*domain.File, error) {
	if fileID == "" || roomID == "" || content == nil || userID == "" {
		return nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "file_id": fileID, "operation": "ApplyChange"})

	if s.editLimit > 0 {
		key := fmt.Sprintf("edit:%s:%s", userID, fileID)
		exceeded, err := s.stateRepo.CheckRateLimit(ctx, key, s.editLimit, s.editWindow)
		if err != nil {
			// 状态存储不可用时放行，不阻塞编辑
			logCtx.WithError(err).Warn("Edit rate limit check failed, allowing edit")
		} else if exceeded {
			return nil, ErrRateLimited
		}
	}

	file, err := s.fileRepo.UpdateContent(ctx, fileID, roomID, *content, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrFileNotFound) {
			logCtx.WithError(err).Error("Failed to persist content change")
		}
		return nil, mapRepoError(err, ErrFileNotLive)
	}
	logCtx.WithField("content_length", len(*content)).Debug("Content change persisted")
	return file, nil
}

// Save 是一次手动保存：与实时编辑相同的持久化，不受编辑限流约束。
// 返回更新后的文件和房间的完整文件列表。
func (s *DocumentService) Save(ctx context.Context, userID, roomID, fileID string, content *string) (*domain.File, []domain.File, error) {
	if fileID == "" || roomID == "" || content == nil {
		return nil, nil, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "file_id": fileID, "operation": "Save"})

	file, err := s.fileRepo.UpdateContent(ctx, fileID, roomID, *content, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrFileNotFound) {
			logCtx.WithError(err).Error("Failed to save file")
		}
		return nil, nil, mapRepoError(err, ErrFileNotFound)
	}
	files, err := s.fileRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list files after save")
		return nil, nil, internalError(err)
	}
	logCtx.Info("File saved")
	return file, files, nil
}
