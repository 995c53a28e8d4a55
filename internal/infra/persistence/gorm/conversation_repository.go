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

// GormConversationRepository 是 ConversationRepository 接口的 GORM 实现
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository 创建 GormConversationRepository 实例
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormConversationRepository")
	}
	return &GormConversationRepository{db: db}
}

// FindByPair 两种顺序都查，兼容规范化之前写入的旧记录
func (r *GormConversationRepository) FindByPair(ctx context.Context, roomID, a, b string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND ((user_a = ? AND user_b = ?) OR (user_a = ? AND user_b = ?))", roomID, a, b, b, a).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}
		return nil, fmt.Errorf("gorm: find conversation in room '%s' for %s/%s: %w", roomID, a, b, err)
	}
	return &conv, nil
}

// Create 创建会话
func (r *GormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		if dup := translateWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("gorm: create conversation in room '%s': %w", conv.RoomID, err)
	}
	return nil
}

// ListByParticipant 返回用户在房间内参与的会话
func (r *GormConversationRepository) ListByParticipant(ctx context.Context, roomID, userID string) ([]domain.Conversation, error) {
	convs := make([]domain.Conversation, 0)
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND (user_a = ? OR user_b = ?)", roomID, userID, userID).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list conversations of '%s' in room '%s': %w", userID, roomID, err)
	}
	return convs, nil
}

// AppendMessage 追加消息并刷新会话的 updated_at
func (r *GormConversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: append message to conversation '%s': %w", msg.ConversationID, err)
	}
	return nil
}

// ListMessages 按创建时间升序返回消息
func (r *GormConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list messages of conversation '%s': %w", conversationID, err)
	}
	return messages, nil
}

// SetLastRead upsert 已读水位线
func (r *GormConversationRepository) SetLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	row := domain.LastRead{ConversationID: conversationID, UserID: userID, LastReadAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("gorm: set last read of '%s' in conversation '%s': %w", userID, conversationID, err)
	}
	return nil
}

// GetLastRead 读取水位线，没有记录时返回零值
func (r *GormConversationRepository) GetLastRead(ctx context.Context, conversationID, userID string) (time.Time, error) {
	var row domain.LastRead
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("gorm: get last read of '%s' in conversation '%s': %w", userID, conversationID, err)
	}
	return row.LastReadAt, nil
}

// CountUnread 统计对方在水位线之后发送的消息数
func (r *GormConversationRepository) CountUnread(ctx context.Context, conversationID, viewerID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("conversation_id = ? AND sender <> ? AND created_at > ?", conversationID, viewerID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count unread for '%s' in conversation '%s': %w", viewerID, conversationID, err)
	}
	return count, nil
}
