package dto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame 是 WebSocket 上双向传输的 JSON 文本帧：{"event": "...", "data": {...}}。
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var (
	// ErrMalformedFrame 表示帧不是合法 JSON 或缺少 event 字段
	ErrMalformedFrame = errors.New("dto: malformed frame")
	// ErrUnknownCommand 表示 event 名称不属于任何已知命令
	ErrUnknownCommand = errors.New("dto: unknown command")
)

// Command 是客户端发来的一条命令。具体类型是一个封闭集合，由 DecodeCommand 产生。
type Command interface {
	CommandName() string
}

// --- 房间 ---

type CreateRoom struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type JoinRoom struct {
	ID string `json:"id"`
}

type LeaveRoom struct {
	ID string `json:"id"`
}

type GetMyRooms struct{}

// --- 文件树 ---

type CreateFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	RoomID   string `json:"roomId"`
	FolderID string `json:"folderId"`
}

type DeleteFile struct {
	FileID string `json:"fileId"`
	RoomID string `json:"roomId"`
}

type CreateFolder struct {
	Name           string `json:"name"`
	RoomID         string `json:"roomId"`
	ParentFolderID string `json:"parentFolderId"`
}

type RenameFolder struct {
	FolderID string `json:"folderId"`
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
}

type DeleteFolder struct {
	FolderID string `json:"folderId"`
	RoomID   string `json:"roomId"`
}

type GetFile struct {
	FileID string `json:"fileId"`
}

// --- 文档同步 ---

type JoinFile struct {
	FileID string `json:"fileId"`
	RoomID string `json:"roomId"`
}

type LeaveFile struct {
	FileID string `json:"fileId"`
	RoomID string `json:"roomId"`
}

// FileContentChange 是一次实时编辑。Content 为 nil 表示字段缺失，空字符串是合法内容。
// 客户端附带的 userId 被忽略，发送者始终是连接绑定的身份。
type FileContentChange struct {
	FileID         string          `json:"fileId"`
	RoomID         string          `json:"roomId"`
	Content        *string         `json:"content"`
	Timestamp      json.RawMessage `json:"timestamp,omitempty"`
	CursorPosition json.RawMessage `json:"cursorPosition,omitempty"`
}

type SaveFile struct {
	FileID  string  `json:"fileId"`
	RoomID  string  `json:"roomId"`
	Content *string `json:"content"`
}

type CursorPositionChange struct {
	FileID         string          `json:"fileId"`
	RoomID         string          `json:"roomId"`
	CursorPosition json.RawMessage `json:"cursorPosition,omitempty"`
	Selection      json.RawMessage `json:"selection,omitempty"`
}

// --- 在线状态 ---

type Typing struct {
	RoomID   string `json:"roomId"`
	FileID   string `json:"fileId"`
	IsTyping bool   `json:"isTyping"`
}

type CursorMove struct {
	RoomID   string          `json:"roomId"`
	FileID   string          `json:"fileId"`
	Position json.RawMessage `json:"position,omitempty"`
}

// --- 私聊 ---

type JoinPrivateChat struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type SendPrivateMessage struct {
	Token    string `json:"token"`
	RoomID   string `json:"roomId"`
	ToUserID string `json:"toUserId"`
	Message  string `json:"message"`
}

type FetchPrivateChat struct {
	RoomID string `json:"roomId"`
	UserA  string `json:"userA"`
	UserB  string `json:"userB"`
}

type MarkAsRead struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

type GetUnreadCounts struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

func (*CreateRoom) CommandName() string           { return "createRoom" }
func (*JoinRoom) CommandName() string             { return "joinRoom" }
func (*LeaveRoom) CommandName() string            { return "leaveRoom" }
func (*GetMyRooms) CommandName() string           { return "getMyRooms" }
func (*CreateFile) CommandName() string           { return "createFile" }
func (*DeleteFile) CommandName() string           { return "deleteFile" }
func (*CreateFolder) CommandName() string         { return "createFolder" }
func (*RenameFolder) CommandName() string         { return "renameFolder" }
func (*DeleteFolder) CommandName() string         { return "deleteFolder" }
func (*GetFile) CommandName() string              { return "getFile" }
func (*JoinFile) CommandName() string             { return "joinFile" }
func (*LeaveFile) CommandName() string            { return "leaveFile" }
func (*FileContentChange) CommandName() string    { return "fileContentChange" }
func (*SaveFile) CommandName() string             { return "saveFile" }
func (*CursorPositionChange) CommandName() string { return "cursorPositionChange" }
func (*Typing) CommandName() string               { return "typing" }
func (*CursorMove) CommandName() string           { return "cursorMove" }
func (*JoinPrivateChat) CommandName() string      { return "joinPrivateChat" }
func (*SendPrivateMessage) CommandName() string   { return "sendPrivateMessage" }
func (*FetchPrivateChat) CommandName() string     { return "fetchPrivateChat" }
func (*MarkAsRead) CommandName() string           { return "markAsRead" }
func (*GetUnreadCounts) CommandName() string      { return "getUnreadCounts" }

// newCommand 按事件名返回对应命令的零值。
func newCommand(event string) Command {
	switch event {
	case "createRoom":
		return &CreateRoom{}
	case "joinRoom":
		return &JoinRoom{}
	case "leaveRoom":
		return &LeaveRoom{}
	case "getMyRooms":
		return &GetMyRooms{}
	case "createFile":
		return &CreateFile{}
	case "deleteFile":
		return &DeleteFile{}
	case "createFolder":
		return &CreateFolder{}
	case "renameFolder":
		return &RenameFolder{}
	case "deleteFolder":
		return &DeleteFolder{}
	case "getFile":
		return &GetFile{}
	case "joinFile":
		return &JoinFile{}
	case "leaveFile":
		return &LeaveFile{}
	case "fileContentChange":
		return &FileContentChange{}
	case "saveFile":
		return &SaveFile{}
	case "cursorPositionChange":
		return &CursorPositionChange{}
	case "typing":
		return &Typing{}
	case "cursorMove":
		return &CursorMove{}
	case "joinPrivateChat":
		return &JoinPrivateChat{}
	case "sendPrivateMessage":
		return &SendPrivateMessage{}
	case "fetchPrivateChat":
		return &FetchPrivateChat{}
	case "markAsRead":
		return &MarkAsRead{}
	case "getUnreadCounts":
		return &GetUnreadCounts{}
	}
	return nil
}

// DecodeCommand 把一条原始文本帧解码为具体的 Command。
func DecodeCommand(raw []byte) (Command, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if frame.Event == "" {
		return nil, ErrMalformedFrame
	}
	cmd := newCommand(frame.Event)
	if cmd == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, frame.Event)
	}
	// 无参数命令允许省略 data 或传 null
	if len(frame.Data) == 0 || string(frame.Data) == "null" {
		return cmd, nil
	}
	if err := json.Unmarshal(frame.Data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, frame.Event, err)
	}
	return cmd, nil
}
