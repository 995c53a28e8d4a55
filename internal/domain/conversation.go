package domain

import "time"

// Conversation 是房间内两个用户之间的私聊。
// UserA < UserB，保证同一对用户在同一房间只有一条记录。
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:64"`
	RoomID    string    `gorm:"size:191;not null;uniqueIndex:idx_conversation_pair,priority:1"`
	UserA     string    `gorm:"size:64;not null;uniqueIndex:idx_conversation_pair,priority:2;index:idx_conversation_user_a"`
	UserB     string    `gorm:"size:64;not null;uniqueIndex:idx_conversation_pair,priority:3;index:idx_conversation_user_b"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Counterpart 返回会话中除 userID 以外的另一方。
func (c *Conversation) Counterpart(userID string) string {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// CanonicalPair 对两个用户 ID 排序，返回 (较小, 较大)。
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// ReadReceipt 记录某个用户读过一条消息的时间。
type ReadReceipt struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

// Message 一经追加即不可修改。
type Message struct {
	ID             string        `gorm:"primaryKey;size:64"`
	ConversationID string        `gorm:"size:64;not null;index:idx_message_conversation_created,priority:1"`
	Sender         string        `gorm:"size:64;not null"`
	Text           string        `gorm:"type:text;not null"`
	ReadBy         []ReadReceipt `gorm:"serializer:json;type:text"`
	CreatedAt      time.Time     `gorm:"not null;index:idx_message_conversation_created,priority:2"`
}

// LastRead 是某用户在某会话中的已读水位线。
type LastRead struct {
	ConversationID string    `gorm:"primaryKey;size:64"`
	UserID         string    `gorm:"primaryKey;size:64"`
	LastReadAt     time.Time `gorm:"not null"`
}
