package domain

import "time"

// File 是房间内的一个文本文件。同一 (RoomID, FolderID) 下名称唯一。
// Content 采用整体覆盖（last-write-wins），不做字符级合并。
type File struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Name         string    `gorm:"size:191;not null;uniqueIndex:idx_file_sibling,priority:3"`
	Content      string    `gorm:"type:longtext"`
	Language     string    `gorm:"size:32;not null;default:'javascript'"`
	RoomID       string    `gorm:"size:191;not null;uniqueIndex:idx_file_sibling,priority:1;index:idx_file_room"`
	FolderID     string    `gorm:"size:64;not null;default:'';uniqueIndex:idx_file_sibling,priority:2"`
	CreatedBy    string    `gorm:"size:64"`
	LastEditedBy string    `gorm:"size:64"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
