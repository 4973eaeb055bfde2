package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// storageErr turns a missing row into a typed 404 and wraps anything else.
func storageErr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func exists(db *gorm.DB, model interface{}, id string) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
