package repository

import (
	"context"
	"time"

	"collaborative-workspace/internal/domain"
)

// ConversationRepository 定义私聊会话、消息和已读水位线的存储操作。
type ConversationRepository interface {
	// FindByPair 按 (roomID, a, b) 查找会话，两种顺序都会尝试。
	FindByPair(ctx context.Context, roomID, a, b string) (*domain.Conversation, error)

	// Create 创建会话。同一规范化用户对已存在时返回 ErrDuplicateEntry。
	Create(ctx context.Context, conv *domain.Conversation) error

	// ListByParticipant 返回用户在房间内参与的全部会话。
	ListByParticipant(ctx context.Context, roomID, userID string) ([]domain.Conversation, error)

	// AppendMessage 追加一条消息。
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages 返回会话的全部消息，按创建时间升序。
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)

	// SetLastRead 写入（或覆盖）用户的已读水位线。
	SetLastRead(ctx context.Context, conversationID, userID string, at time.Time) error

	// GetLastRead 返回用户的已读水位线，从未读过时返回零值时间。
	GetLastRead(ctx context.Context, conversationID, userID string) (time.Time, error)

	// CountUnread 统计非 viewerID 发送且创建时间严格晚于 since 的消息数。
	CountUnread(ctx context.Context, conversationID, viewerID string, since time.Time) (int64, error)
}
