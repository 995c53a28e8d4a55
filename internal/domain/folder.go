package domain

import "time"

// RootFolderID 表示房间根目录。存储为空字符串，使唯一索引同样约束根目录下的同名项。
const RootFolderID = ""

// Folder 是房间内文件树的一个目录节点。
// 同一 (RoomID, ParentFolderID) 下名称唯一。
type Folder struct {
	ID             string    `gorm:"primaryKey;size:64"`
	Name           string    `gorm:"size:191;not null;uniqueIndex:idx_folder_sibling,priority:3"`
	RoomID         string    `gorm:"size:191;not null;uniqueIndex:idx_folder_sibling,priority:1;index:idx_folder_room"`
	ParentFolderID string    `gorm:"size:64;not null;default:'';uniqueIndex:idx_folder_sibling,priority:2"`
	CreatedBy      string    `gorm:"size:64"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

