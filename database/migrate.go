package database

import (
	"fmt"

	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.DutyRoster{},
	&models.Assignment{},
	&models.Notification{},
	&models.Session{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
