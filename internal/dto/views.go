package dto

import (
	"time"

	"collaborative-workspace/internal/domain"
)

// UserObject 是房间成员的展示形式。用户名解析失败时 Username 等于 ID。
type UserObject struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type RoomView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Users     []string  `json:"users"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FolderView 中根目录渲染为 null。
type FolderView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	RoomID         string    `json:"roomId"`
	ParentFolderID *string   `json:"parentFolderId"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FileView 中根目录渲染为 null。
type FileView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	Language     string    `json:"language"`
	RoomID       string    `json:"roomId"`
	FolderID     *string   `json:"folderId"`
	CreatedBy    string    `json:"createdBy"`
	LastEditedBy string    `json:"lastEditedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type MessageView struct {
	ID        string               `json:"_id"`
	Sender    string               `json:"sender"`
	Message   string               `json:"message"`
	CreatedAt time.Time            `json:"createdAt"`
	ReadBy    []domain.ReadReceipt `json:"readBy"`
}

func folderRef(id string) *string {
	if id == domain.RootFolderID {
		return nil
	}
	return &id
}

func NewRoomView(r domain.Room) RoomView {
	users := r.Members
	if users == nil {
		users = []string{}
	}
	return RoomView{ID: r.ID, Name: r.Name, Users: users, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func NewRoomViews(rooms []domain.Room) []RoomView {
	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, NewRoomView(r))
	}
	return views
}

func NewFolderView(f domain.Folder) FolderView {
	return FolderView{
		ID:             f.ID,
		Name:           f.Name,
		RoomID:         f.RoomID,
		ParentFolderID: folderRef(f.ParentFolderID),
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func NewFolderViews(folders []domain.Folder) []FolderView {
	views := make([]FolderView, 0, len(folders))
	for _, f := range folders {
		views = append(views, NewFolderView(f))
	}
	return views
}

func NewFileView(f domain.File) FileView {
	return FileView{
		ID:           f.ID,
		Name:         f.Name,
		Content:      f.Content,
		Language:     f.Language,
		RoomID:       f.RoomID,
		FolderID:     folderRef(f.FolderID),
		CreatedBy:    f.CreatedBy,
		LastEditedBy: f.LastEditedBy,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func NewFileViews(files []domain.File) []FileView {
	views := make([]FileView, 0, len(files))
	for _, f := range files {
		views = append(views, NewFileView(f))
	}
	return views
}

func NewMessageView(m domain.Message) MessageView {
	readBy := m.ReadBy
	if readBy == nil {
		readBy = []domain.ReadReceipt{}
	}
	return MessageView{ID: m.ID, Sender: m.Sender, Message: m.Text, CreatedAt: m.CreatedAt, ReadBy: readBy}
}

func NewMessageViews(msgs []domain.Message) []MessageView {
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, NewMessageView(m))
	}
	return views
}
