package hub

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/metrics"
	"collaborative-workspace/internal/service"

	"github.com/sirupsen/logrus"
)

// failureMessages 是存储错误等非业务错误时发给客户端的通用文案。
var failureMessages = map[string]string{
	"createRoom":           "Failed to create room",
	"joinRoom":             "Failed to join room",
	"leaveRoom":            "Failed to leave room",
	"getMyRooms":           "Failed to fetch your rooms",
	"createFile":           "Failed to create file",
	"deleteFile":           "Failed to delete file",
	"createFolder":         "Failed to create folder",
	"renameFolder":         "Failed to rename folder",
	"deleteFolder":         "Failed to delete folder",
	"getFile":              "Failed to get file",
	"joinFile":             "Failed to join file",
	"leaveFile":            "Failed to leave file",
	"fileContentChange":    "Failed to process real-time update",
	"saveFile":             "Failed to save file",
	"cursorPositionChange": "Failed to share cursor position",
	"typing":               "Failed to share typing status",
	"cursorMove":           "Failed to share cursor position",
	"joinPrivateChat":      "Failed to join private chat",
	"sendPrivateMessage":   "Failed to send private message",
	"fetchPrivateChat":     "Failed to fetch private chat",
	"markAsRead":           "Failed to mark messages as read",
	"getUnreadCounts":      "Failed to get unread counts",
}

func failureMessage(command string) string {
	if msg, ok := failureMessages[command]; ok {
		return msg
	}
	return "Request failed"
}

// handleCommand 在独立的超时 context 中执行一条命令。
// 错误只发送给发送者；处理函数中的 panic 被恢复并记录。
func (h *Hub) handleCommand(c *Client, cmd dto.Command) {
	name := cmd.CommandName()
	start := time.Now()
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "conn_id": c.id, "operation": name})

	defer func() {
		if r := recover(); r != nil {
			logCtx.WithField("panic", r).Errorf("Recovered from panic in command handler\n%s", debug.Stack())
			metrics.CommandsTotal.WithLabelValues(name, "panic").Inc()
			c.emit(dto.ErrorEvent{Message: failureMessage(name)})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.commandTimeout)
	defer cancel()

	err := h.dispatch(ctx, c, cmd)
	metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(name, "error").Inc()
		h.reportError(c, name, err, logCtx)
		return
	}
	metrics.CommandsTotal.WithLabelValues(name, "ok").Inc()
}

// dispatch 是命令的唯一分发点。
func (h *Hub) dispatch(ctx context.Context, c *Client, cmd dto.Command) error {
	switch cmd := cmd.(type) {
	case *dto.CreateRoom:
		return h.onCreateRoom(ctx, c, cmd)
	case *dto.JoinRoom:
		return h.onJoinRoom(ctx, c, cmd)
	case *dto.LeaveRoom:
		return h.onLeaveRoom(ctx, c, cmd)
	case *dto.GetMyRooms:
		return h.onGetMyRooms(ctx, c)
	case *dto.CreateFile:
		return h.onCreateFile(ctx, c, cmd)
	case *dto.DeleteFile:
		return h.onDeleteFile(ctx, c, cmd)
	case *dto.CreateFolder:
		return h.onCreateFolder(ctx, c, cmd)
	case *dto.RenameFolder:
		return h.onRenameFolder(ctx, c, cmd)
	case *dto.DeleteFolder:
		return h.onDeleteFolder(ctx, c, cmd)
	case *dto.GetFile:
		return h.onGetFile(ctx, c, cmd)
	case *dto.JoinFile:
		return h.onJoinFile(ctx, c, cmd)
	case *dto.LeaveFile:
		return h.onLeaveFile(c, cmd)
	case *dto.FileContentChange:
		return h.onFileContentChange(ctx, c, cmd)
	case *dto.SaveFile:
		return h.onSaveFile(ctx, c, cmd)
	case *dto.CursorPositionChange:
		h.onCursorPositionChange(c, cmd)
		return nil
	case *dto.Typing:
		h.onTyping(c, cmd)
		return nil
	case *dto.CursorMove:
		h.onCursorMove(c, cmd)
		return nil
	case *dto.JoinPrivateChat:
		return h.onJoinPrivateChat(c, cmd)
	case *dto.SendPrivateMessage:
		return h.onSendPrivateMessage(ctx, c, cmd)
	case *dto.FetchPrivateChat:
		return h.onFetchPrivateChat(ctx, c, cmd)
	case *dto.MarkAsRead:
		return h.onMarkAsRead(ctx, c, cmd)
	case *dto.GetUnreadCounts:
		return h.onGetUnreadCounts(ctx, c, cmd)
	}
	logrus.WithField("command", cmd.CommandName()).Warn("No handler for command")
	return nil
}

// reportError 记录错误并把对应文案发给发送者。
func (h *Hub) reportError(c *Client, command string, err error, logCtx *logrus.Entry) {
	msg := service.PublicMessage(err, failureMessage(command))
	switch {
	case errors.Is(err, service.ErrRateLimited):
		metrics.RateLimitHits.WithLabelValues(command).Inc()
		logCtx.Debug("Command rate limited")
	case errors.Is(err, service.ErrInternalServer), msg == failureMessage(command):
		logCtx.WithError(err).Error("Command failed")
	default:
		logCtx.WithError(err).Info("Command rejected")
	}
	c.emit(dto.ErrorEvent{Message: msg})
}

// requireRoom 确认调用者属于房间：本连接已订阅房间频道，或存储中记录其为成员。
func (h *Hub) requireRoom(ctx context.Context, c *Client, roomID string) error {
	if roomID == "" {
		return service.ErrMissingFields
	}
	if h.isSubscribed(c, roomChannel(roomID)) {
		return nil
	}
	member, err := h.rooms.IsMember(ctx, roomID, c.userID)
	if err != nil {
		return err
	}
	if !member {
		return service.ErrNotRoomMember
	}
	return nil
}
