package hub

import (
	"context"
	"time"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/service"
)

func (h *Hub) onJoinFile(ctx context.Context, c *Client, cmd *dto.JoinFile) error {
	if cmd.FileID == "" || cmd.RoomID == "" {
		return service.ErrMissingFields
	}
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	file, err := h.docs.OpenFile(ctx, cmd.RoomID, cmd.FileID)
	if err != nil {
		return err
	}

	channel := fileChannel(file.ID)
	h.subscribe(c, channel)
	c.files[file.ID] = file.RoomID
	active, _ := h.presence.Add(file.ID, file.RoomID, c.userID)
	h.observePresence()

	c.emit(dto.FileContent{
		FileID:       file.ID,
		Content:      file.Content,
		Language:     file.Language,
		LastEditedBy: file.LastEditedBy,
		UpdatedAt:    file.UpdatedAt,
	})
	h.broadcast(channel, dto.UserJoinedFile{
		FileID:      file.ID,
		UserID:      c.userID,
		JoinedAt:    time.Now().UTC(),
		ActiveUsers: active,
	}, c)
	c.emit(dto.ActiveUsersInFile{FileID: file.ID, ActiveUsers: active})
	return nil
}

func (h *Hub) onLeaveFile(c *Client, cmd *dto.LeaveFile) error {
	if cmd.FileID == "" || cmd.RoomID == "" {
		return nil
	}
	h.leaveFile(c, cmd.FileID)
	return nil
}

// leaveFile 让连接离开文件频道。同一用户没有其他连接留在该文件上时才移除在线状态并通知其他人。
func (h *Hub) leaveFile(c *Client, fileID string) {
	channel := fileChannel(fileID)
	h.unsubscribe(c, channel)
	delete(c.files, fileID)

	if h.userSubscribed(c.userID, channel, c) {
		return
	}
	active, removed := h.presence.Remove(fileID, c.userID)
	if !removed {
		return
	}
	h.observePresence()
	h.broadcast(channel, dto.UserLeftFile{
		FileID:      fileID,
		UserID:      c.userID,
		LeftAt:      time.Now().UTC(),
		ActiveUsers: active,
	}, c)
}

func (h *Hub) onFileContentChange(ctx context.Context, c *Client, cmd *dto.FileContentChange) error {
	if cmd.FileID == "" || cmd.RoomID == "" || cmd.Content == nil {
		return service.ErrMissingFields
	}
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	file, err := h.docs.ApplyChange(ctx, c.userID, cmd.RoomID, cmd.FileID, cmd.Content)
	if err != nil {
		return err
	}

	// 广播的是刚写入的内容，其他客户端据此整体替换
	h.broadcast(fileChannel(file.ID), dto.FileContentChanged{
		FileID:         file.ID,
		Content:        *cmd.Content,
		UserID:         c.userID,
		Timestamp:      cmd.Timestamp,
		CursorPosition: cmd.CursorPosition,
		LastEditedBy:   file.LastEditedBy,
		UpdatedAt:      file.UpdatedAt,
	}, c)
	c.emit(dto.FileContentChangeConfirm{
		FileID:    file.ID,
		Timestamp: cmd.Timestamp,
		Saved:     true,
		UpdatedAt: file.UpdatedAt,
	})
	return nil
}

func (h *Hub) onSaveFile(ctx context.Context, c *Client, cmd *dto.SaveFile) error {
	if cmd.FileID == "" || cmd.RoomID == "" || cmd.Content == nil {
		return service.ErrMissingFields
	}
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	file, files, err := h.docs.Save(ctx, c.userID, cmd.RoomID, cmd.FileID, cmd.Content)
	if err != nil {
		return err
	}

	c.emit(dto.FileSaved{FileID: file.ID, SavedAt: file.UpdatedAt, LastEditedBy: c.userID})
	h.broadcast(roomChannel(cmd.RoomID), dto.FilesUpdate(dto.NewFileViews(files)), nil)
	h.broadcast(fileChannel(file.ID), dto.FileContentSync{
		FileID:        file.ID,
		Content:       *cmd.Content,
		LastEditedBy:  c.userID,
		UpdatedAt:     file.UpdatedAt,
		SavedManually: true,
	}, c)
	return nil
}

// onCursorPositionChange 只在已加入文件的连接之间转发，不落库。
func (h *Hub) onCursorPositionChange(c *Client, cmd *dto.CursorPositionChange) {
	if cmd.FileID == "" || cmd.RoomID == "" {
		return
	}
	channel := fileChannel(cmd.FileID)
	if !h.isSubscribed(c, channel) {
		return
	}
	h.broadcast(channel, dto.CursorPositionChanged{
		FileID:         cmd.FileID,
		UserID:         c.userID,
		CursorPosition: cmd.CursorPosition,
		Selection:      cmd.Selection,
		Timestamp:      time.Now().UTC(),
	}, c)
}
