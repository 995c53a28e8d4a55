package hub

import (
	"context"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/service"
)

func (h *Hub) onCreateFile(ctx context.Context, c *Client, cmd *dto.CreateFile) error {
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	file, files, err := h.tree.CreateFile(ctx, c.userID, cmd.RoomID, cmd.FolderID, cmd.Name, cmd.Language)
	if err != nil {
		return err
	}
	h.broadcast(roomChannel(cmd.RoomID), dto.FilesUpdate(dto.NewFileViews(files)), nil)
	c.emit(dto.FileCreated(dto.NewFileView(*file)))
	return nil
}

func (h *Hub) onDeleteFile(ctx context.Context, c *Client, cmd *dto.DeleteFile) error {
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	files, err := h.tree.DeleteFile(ctx, cmd.RoomID, cmd.FileID)
	if err != nil {
		return err
	}
	h.dropFile(cmd.FileID)

	channel := roomChannel(cmd.RoomID)
	h.broadcast(channel, dto.FilesUpdate(dto.NewFileViews(files)), nil)
	h.broadcast(channel, dto.FileDeleted{FileID: cmd.FileID}, nil)
	return nil
}

func (h *Hub) onCreateFolder(ctx context.Context, c *Client, cmd *dto.CreateFolder) error {
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	folder, folders, err := h.tree.CreateFolder(ctx, c.userID, cmd.RoomID, cmd.ParentFolderID, cmd.Name)
	if err != nil {
		return err
	}
	h.broadcast(roomChannel(cmd.RoomID), dto.FoldersUpdate(dto.NewFolderViews(folders)), nil)
	c.emit(dto.FolderCreated(dto.NewFolderView(*folder)))
	return nil
}

func (h *Hub) onRenameFolder(ctx context.Context, c *Client, cmd *dto.RenameFolder) error {
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	folder, folders, err := h.tree.RenameFolder(ctx, cmd.RoomID, cmd.FolderID, cmd.Name)
	if err != nil {
		return err
	}
	h.broadcast(roomChannel(cmd.RoomID), dto.FoldersUpdate(dto.NewFolderViews(folders)), nil)
	c.emit(dto.FolderRenamed{FolderID: folder.ID, Name: folder.Name})
	return nil
}

func (h *Hub) onDeleteFolder(ctx context.Context, c *Client, cmd *dto.DeleteFolder) error {
	if err := h.requireRoom(ctx, c, cmd.RoomID); err != nil {
		return err
	}
	res, err := h.tree.DeleteFolder(ctx, cmd.RoomID, cmd.FolderID)
	if err != nil {
		return err
	}
	for _, fileID := range res.FileIDs {
		h.dropFile(fileID)
	}

	channel := roomChannel(cmd.RoomID)
	h.broadcast(channel, dto.FoldersUpdate(dto.NewFolderViews(res.Folders)), nil)
	h.broadcast(channel, dto.FilesUpdate(dto.NewFileViews(res.Files)), nil)
	h.broadcast(channel, dto.FolderDeleted{FolderID: cmd.FolderID}, nil)
	return nil
}

// onGetFile 只向文件所在房间的成员返回内容，否则按不存在处理。
func (h *Hub) onGetFile(ctx context.Context, c *Client, cmd *dto.GetFile) error {
	file, err := h.tree.GetFile(ctx, cmd.FileID)
	if err != nil {
		return err
	}
	if err := h.requireRoom(ctx, c, file.RoomID); err != nil {
		if err == service.ErrNotRoomMember {
			return service.ErrFileNotFound
		}
		return err
	}
	c.emit(dto.FileContent{
		FileID:       file.ID,
		Content:      file.Content,
		Language:     file.Language,
		LastEditedBy: file.LastEditedBy,
		UpdatedAt:    file.UpdatedAt,
	})
	return nil
}

// dropFile 在文件被删除后丢弃其在线集合和文件频道。
func (h *Hub) dropFile(fileID string) {
	h.presence.DropFile(fileID)

	channel := fileChannel(fileID)
	h.mu.Lock()
	for c := range h.channels[channel] {
		delete(c.channels, channel)
	}
	delete(h.channels, channel)
	h.mu.Unlock()
	h.observePresence()
}
