package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 定义任务类型常量
const (
	TypeRoomCleanup   = "room:cleanup"   // 成员清空后的房间级联删除（失败重试）
	TypePresenceSweep = "presence:sweep" // 周期性清理失效的在线状态
)

// RoomCleanupPayload 定义房间清理任务的数据结构
type RoomCleanupPayload struct {
	RoomID string `json:"room_id"`
}

// NewRoomCleanupPayload 序列化房间清理任务的 payload
func NewRoomCleanupPayload(roomID string) ([]byte, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id cannot be empty")
	}
	return json.Marshal(RoomCleanupPayload{RoomID: roomID})
}

// NewRoomCleanupTask 创建房间清理任务。同一房间的任务以 room id 作为去重 ID。
func NewRoomCleanupTask(roomID string) (*asynq.Task, error) {
	payload, err := NewRoomCleanupPayload(roomID)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRoomCleanup, payload, asynq.TaskID(TypeRoomCleanup+":"+roomID), asynq.MaxRetry(10)), nil
}

// NewPresenceSweepTask 创建在线状态巡检任务，无 payload。
func NewPresenceSweepTask() *asynq.Task {
	return asynq.NewTask(TypePresenceSweep, nil, asynq.MaxRetry(0))
}
