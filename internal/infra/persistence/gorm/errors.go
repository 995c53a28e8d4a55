package gormpersistence

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"collaborative-workspace/internal/repository"
)

// translateWriteError 把唯一约束冲突映射为 repository.ErrDuplicateEntry，其它错误返回 nil。
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return repository.ErrDuplicateEntry
	}
	if isDuplicateEntryError(err) {
		return repository.ErrDuplicateEntry
	}
	return nil
}

// isDuplicateEntryError 兜底检查，SQLite 驱动只能通过错误信息识别。
func isDuplicateEntryError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
