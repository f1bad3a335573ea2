package repository

import (
	"errors"

	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// notFound 将 gorm 的记录不存在转换为业务错误
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}

// orderConflict 唯一索引冲突（同一父级下 order 重复）
func orderConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrDuplicateOrder
	}
	return err
}
