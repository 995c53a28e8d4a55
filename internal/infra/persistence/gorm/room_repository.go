package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
)

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// FindByID 实现根据房间 ID 查找房间
func (r *GormRoomRepository) FindByID(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id '%s': %w", id, err)
	}
	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Members = members
	return &room, nil
}

// Create 在一个事务内写入房间和初始成员
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		// 新房间不应继承任何遗留的成员行
		if err := tx.Where("room_id = ?", room.ID).Delete(&domain.RoomMember{}).Error; err != nil {
			return err
		}
		for _, userID := range room.Members {
			if err := tx.Create(&domain.RoomMember{RoomID: room.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if dup := translateWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("gorm: create room '%s': %w", room.ID, err)
	}
	return nil
}

// AddMember 幂等地加入成员。插入与房间存在性检查在同一事务内，并锁住房间行，
// 与 DeleteIfEmpty 串行，不会给已删除的房间留下成员行。
func (r *GormRoomRepository) AddMember(ctx context.Context, roomID, userID string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, roomID); err != nil {
			return err
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.RoomMember{RoomID: roomID, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		added = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, err
		}
		return false, fmt.Errorf("gorm: add member '%s' to room '%s': %w", userID, roomID, err)
	}
	if added {
		r.touch(ctx, roomID)
	}
	return added, nil
}

// RemoveMember 删除成员关系并返回剩余成员
func (r *GormRoomRepository) RemoveMember(ctx context.Context, roomID, userID string) ([]string, error) {
	var remaining []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&domain.RoomMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return tx.Model(&domain.RoomMember{}).
			Where("room_id = ?", roomID).
			Order("created_at asc").
			Pluck("user_id", &remaining).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: remove member '%s' from room '%s': %w", userID, roomID, err)
	}
	if len(remaining) > 0 {
		r.touch(ctx, roomID)
	}
	return remaining, nil
}

// ListMembers 返回房间成员 ID
func (r *GormRoomRepository) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	members := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&domain.RoomMember{}).
		Where("room_id = ?", roomID).
		Order("created_at asc").
		Pluck("user_id", &members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list members of room '%s': %w", roomID, err)
	}
	return members, nil
}

// FindByMember 返回用户参与的所有房间，并批量填充成员
func (r *GormRoomRepository) FindByMember(ctx context.Context, userID string) ([]domain.Room, error) {
	db := r.db.WithContext(ctx)
	rooms := make([]domain.Room, 0)
	memberOf := db.Model(&domain.RoomMember{}).Select("room_id").Where("user_id = ?", userID)
	if err := db.Where("id IN (?)", memberOf).Order("created_at asc").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("gorm: find rooms by member '%s': %w", userID, err)
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	var rows []domain.RoomMember
	if err := db.Where("room_id IN ?", ids).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm: load members for %d rooms: %w", len(ids), err)
	}
	byRoom := make(map[string][]string, len(rooms))
	for _, row := range rows {
		byRoom[row.RoomID] = append(byRoom[row.RoomID], row.UserID)
	}
	for i := range rooms {
		rooms[i].Members = byRoom[rooms[i].ID]
	}
	return rooms, nil
}

// DeleteIfEmpty 锁住房间行后重新统计成员，仅在成员为空时级联删除房间及其全部子数据。
// 房间已不存在时返回 (false, nil)，可重复执行。
func (r *GormRoomRepository) DeleteIfEmpty(ctx context.Context, roomID string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, roomID); err != nil {
			return err
		}
		var members int64
		if err := tx.Model(&domain.RoomMember{}).Where("room_id = ?", roomID).Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return nil
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&domain.File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&domain.Folder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", roomID).Delete(&domain.Room{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("gorm: cascade delete room '%s': %w", roomID, err)
	}
	return deleted, nil
}

// lockRoom 在事务内对房间行加写锁（SQLite 下由数据库级写锁代替），房间不存在时返回 ErrRoomNotFound
func lockRoom(tx *gorm.DB, roomID string) error {
	var room domain.Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", roomID).
		Take(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrRoomNotFound
	}
	return err
}

// touch 更新房间的 updated_at，失败不影响主流程
func (r *GormRoomRepository) touch(ctx context.Context, roomID string) {
	_ = r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("updated_at", time.Now().UTC()).Error
}
