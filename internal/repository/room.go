package repository

import (
	"context"

	"collaborative-workspace/internal/domain"
)

// RoomRepository 定义房间及其成员关系的存储操作。
// 返回的 Room 均已填充 Members。
type RoomRepository interface {
	// FindByID 查找房间，不存在时返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id string) (*domain.Room, error)

	// Create 创建房间并把 room.Members 写入成员表。ID 已存在时返回 ErrDuplicateEntry。
	Create(ctx context.Context, room *domain.Room) error

	// AddMember 把用户加入房间。已是成员时 added 为 false，不视为错误；
	// 房间不存在时返回 ErrRoomNotFound，且不写入任何成员行。
	AddMember(ctx context.Context, roomID, userID string) (added bool, err error)

	// RemoveMember 把用户移出房间，返回剩余成员。用户不是成员时返回 ErrNotFound。
	RemoveMember(ctx context.Context, roomID, userID string) (remaining []string, err error)

	// ListMembers 返回房间成员 ID，按加入时间排序。
	ListMembers(ctx context.Context, roomID string) ([]string, error)

	// FindByMember 返回用户所在的全部房间。
	FindByMember(ctx context.Context, userID string) ([]domain.Room, error)

	// DeleteIfEmpty 在一个事务内确认房间仍无成员后删除房间、文件夹和文件。
	// 期间有人加入时 deleted 为 false；房间已不存在时返回 (false, nil)，重复调用可收敛。
	DeleteIfEmpty(ctx context.Context, roomID string) (deleted bool, err error)
}
