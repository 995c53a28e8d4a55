package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"collaborative-workspace/internal/domain"
)

// MigrateDB 迁移全部表结构。索引列都带有长度限制，MySQL 与 SQLite 均可直接 AutoMigrate。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	models := []interface{}{
		&domain.User{},
		&domain.Room{},
		&domain.RoomMember{},
		&domain.Folder{},
		&domain.File{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.LastRead{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			logrus.Errorf("Failed to auto-migrate %T: %v", model, err)
			return fmt.Errorf("failed to auto-migrate %T: %w", model, err)
		}
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
