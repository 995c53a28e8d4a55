package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event 是服务端推送给客户端的一条通知，每种类型对应固定的事件名。
type Event interface {
	EventName() string
}

// Encode 把事件编码为一条 {"event","data"} 文本帧。
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("dto: encode %s: %w", ev.EventName(), err)
	}
	return json.Marshal(Frame{Event: ev.EventName(), Data: data})
}

// ErrorEvent 只发送给出错命令的发送者。
type ErrorEvent struct {
	Message string `json:"message"`
}

// AuthError 在身份校验失败、关闭连接前发送。
type AuthError struct {
	Message string `json:"message"`
}

// --- 房间 ---

type RoomCreated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomJoined struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Users   []string     `json:"users"`
	Files   []FileView   `json:"files"`
	Folders []FolderView `json:"folders"`
}

type MyRoomsUpdate []RoomView

type RoomUsers []UserObject

type UserJoined struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type UserLeft struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type RoomDeleted struct {
	RoomID string `json:"roomId"`
}

// --- 文件树 ---

type FilesUpdate []FileView

type FoldersUpdate []FolderView

type FileCreated FileView

type FolderCreated FolderView

type FileDeleted struct {
	FileID string `json:"fileId"`
}

type FolderDeleted struct {
	FolderID string `json:"folderId"`
}

type FolderRenamed struct {
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
}

// --- 文档同步 ---

type FileContent struct {
	FileID       string    `json:"fileId"`
	Content      string    `json:"content"`
	Language     string    `json:"language"`
	LastEditedBy string    `json:"lastEditedBy"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FileContentChanged struct {
	FileID         string          `json:"fileId"`
	Content        string          `json:"content"`
	UserID         string          `json:"userId"`
	Timestamp      json.RawMessage `json:"timestamp,omitempty"`
	CursorPosition json.RawMessage `json:"cursorPosition,omitempty"`
	LastEditedBy   string          `json:"lastEditedBy"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type FileContentChangeConfirm struct {
	FileID    string          `json:"fileId"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Saved     bool            `json:"saved"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type FileSaved struct {
	FileID       string    `json:"fileId"`
	SavedAt      time.Time `json:"savedAt"`
	LastEditedBy string    `json:"lastEditedBy"`
}

type FileContentSync struct {
	FileID        string    `json:"fileId"`
	Content       string    `json:"content"`
	LastEditedBy  string    `json:"lastEditedBy"`
	UpdatedAt     time.Time `json:"updatedAt"`
	SavedManually bool      `json:"savedManually"`
}

type CursorPositionChanged struct {
	FileID         string          `json:"fileId"`
	UserID         string          `json:"userId"`
	CursorPosition json.RawMessage `json:"cursorPosition,omitempty"`
	Selection      json.RawMessage `json:"selection,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// --- 在线状态 ---

type UserJoinedFile struct {
	FileID      string    `json:"fileId"`
	UserID      string    `json:"userId"`
	JoinedAt    time.Time `json:"joinedAt"`
	ActiveUsers []string  `json:"activeUsers"`
}

type UserLeftFile struct {
	FileID      string    `json:"fileId"`
	UserID      string    `json:"userId"`
	LeftAt      time.Time `json:"leftAt"`
	ActiveUsers []string  `json:"activeUsers"`
}

type ActiveUsersInFile struct {
	FileID      string   `json:"fileId"`
	ActiveUsers []string `json:"activeUsers"`
}

type UserTyping struct {
	UserID   string `json:"userId"`
	FileID   string `json:"fileId"`
	IsTyping bool   `json:"isTyping"`
}

type UserCursorMoved struct {
	UserID   string          `json:"userId"`
	FileID   string          `json:"fileId"`
	Position json.RawMessage `json:"position,omitempty"`
}

// --- 私聊 ---

type NewPrivateMessage struct {
	ID        string    `json:"_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Username  string    `json:"username"`
}

// UnreadCountUpdate 中 UserID 是会话的另一方，Count 是接收者来自该方的未读数。
type UnreadCountUpdate struct {
	UserID string `json:"userId"`
	Count  int64  `json:"count"`
}

type MessageDelivered struct {
	MessageID string `json:"messageId"`
	Delivered bool   `json:"delivered"`
}

type MarkAsReadSuccess struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

type PrivateChatHistory struct {
	RoomID      string        `json:"roomId"`
	OtherUserID string        `json:"otherUserId"`
	Messages    []MessageView `json:"messages"`
}

// UnreadCounts 以对方 userId 为键，未读数为 0 的会话不出现。
type UnreadCounts map[string]int64

func (ErrorEvent) EventName() string               { return "error" }
func (AuthError) EventName() string                { return "auth_error" }
func (RoomCreated) EventName() string              { return "roomCreated" }
func (RoomJoined) EventName() string               { return "roomJoined" }
func (MyRoomsUpdate) EventName() string            { return "myRoomsUpdate" }
func (RoomUsers) EventName() string                { return "roomUsers" }
func (UserJoined) EventName() string               { return "userJoined" }
func (UserLeft) EventName() string                 { return "userLeft" }
func (RoomDeleted) EventName() string              { return "roomDeleted" }
func (FilesUpdate) EventName() string              { return "filesUpdate" }
func (FoldersUpdate) EventName() string            { return "foldersUpdate" }
func (FileCreated) EventName() string              { return "fileCreated" }
func (FolderCreated) EventName() string            { return "folderCreated" }
func (FileDeleted) EventName() string              { return "fileDeleted" }
func (FolderDeleted) EventName() string            { return "folderDeleted" }
func (FolderRenamed) EventName() string            { return "folderRenamed" }
func (FileContent) EventName() string              { return "fileContent" }
func (FileContentChanged) EventName() string       { return "fileContentChange" }
func (FileContentChangeConfirm) EventName() string { return "fileContentChangeConfirm" }
func (FileSaved) EventName() string                { return "fileSaved" }
func (FileContentSync) EventName() string          { return "fileContentSync" }
func (CursorPositionChanged) EventName() string    { return "cursorPositionChange" }
func (UserJoinedFile) EventName() string           { return "userJoinedFile" }
func (UserLeftFile) EventName() string             { return "userLeftFile" }
func (ActiveUsersInFile) EventName() string        { return "activeUsersInFile" }
func (UserTyping) EventName() string               { return "userTyping" }
func (UserCursorMoved) EventName() string          { return "userCursorMoved" }
func (NewPrivateMessage) EventName() string        { return "newPrivateMessage" }
func (UnreadCountUpdate) EventName() string        { return "unreadCountUpdate" }
func (MessageDelivered) EventName() string         { return "messageDelivered" }
func (MarkAsReadSuccess) EventName() string        { return "markAsReadSuccess" }
func (PrivateChatHistory) EventName() string       { return "privateChatHistory" }
func (UnreadCounts) EventName() string             { return "unreadCounts" }
