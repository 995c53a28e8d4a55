package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-workspace/internal/hub"
	"collaborative-workspace/internal/tasks"
)

// RoomCleaner 删除已没有成员的房间及其全部内容，由 service.RoomService 实现。
type RoomCleaner interface {
	CleanupRoom(ctx context.Context, roomID string) error
}

// RoomCleanupHandler 处理 LeaveRoom 级联删除失败后补发的清理任务
type RoomCleanupHandler struct {
	rooms RoomCleaner
}

func NewRoomCleanupHandler(rooms RoomCleaner) *RoomCleanupHandler {
	if rooms == nil {
		panic("RoomCleaner cannot be nil for RoomCleanupHandler")
	}
	return &RoomCleanupHandler{rooms: rooms}
}

// ProcessTask 实现 asynq.Handler 接口。返回错误时由 asynq 按 MaxRetry 重试。
func (h *RoomCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	var payload tasks.RoomCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.RoomID == "" {
		logCtx.WithError(err).Error("Invalid room cleanup payload")
		return fmt.Errorf("invalid room cleanup payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("room_id", payload.RoomID)
	logCtx.Info("Processing room cleanup task...")

	if err := h.rooms.CleanupRoom(ctx, payload.RoomID); err != nil {
		logCtx.WithError(err).Error("Room cleanup failed")
		return fmt.Errorf("cleanup room %s: %w", payload.RoomID, err)
	}
	logCtx.Info("Room cleanup task processed successfully")
	return nil
}

// PresenceSweeper 清理失效的在线状态，由 hub.Hub 实现。
type PresenceSweeper interface {
	SweepPresence(ctx context.Context, isMember hub.MembershipChecker) int
}

// PresenceSweepHandler 处理周期性的在线状态巡检任务
type PresenceSweepHandler struct {
	sweeper  PresenceSweeper
	isMember hub.MembershipChecker
}

func NewPresenceSweepHandler(sweeper PresenceSweeper, isMember hub.MembershipChecker) *PresenceSweepHandler {
	if sweeper == nil {
		panic("PresenceSweeper cannot be nil for PresenceSweepHandler")
	}
	if isMember == nil {
		panic("MembershipChecker cannot be nil for PresenceSweepHandler")
	}
	return &PresenceSweepHandler{sweeper: sweeper, isMember: isMember}
}

// ProcessTask 实现 asynq.Handler 接口。巡检本身不会失败，成员检查出错的条目留到下一轮。
func (h *PresenceSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)
	removed := h.sweeper.SweepPresence(ctx, h.isMember)
	logCtx.WithField("removed", removed).Debug("Presence sweep finished")
	return nil
}

func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
		"max_retry": maxRetry,
	})
}
