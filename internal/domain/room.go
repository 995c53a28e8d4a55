package domain

import "time"

// Room 是一个协作会话：成员名单加上一棵文件夹/文件树。
// 成员为空的房间不允许存在。
type Room struct {
	ID        string    `gorm:"primaryKey;size:191" json:"id"` // 由创建者指定
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Members 不直接映射列，由 room_members 表填充
	Members []string `gorm:"-" json:"users"`
}

// RoomMember 是房间成员关系的一行记录。
type RoomMember struct {
	RoomID    string    `gorm:"primaryKey;size:191"`
	UserID    string    `gorm:"primaryKey;size:64;index:idx_member_user"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// HasMember 判断 userID 是否在成员名单中。
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}
