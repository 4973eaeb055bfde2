package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/duty-roster/database"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	summary, err := database.Seed(db, now)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 18, summary.Rosters)
	assert.Equal(t, 18, summary.Assignments)
	assert.Equal(t, 5, summary.Notifications)

	var night int64
	db.Model(&models.DutyRoster{}).Where("shift = ?", models.ShiftNight).Count(&night)
	assert.Equal(t, int64(4), night)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@roster.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(database.SeedPassword)))

	var unread int64
	db.Model(&models.Notification{}).Where("is_read = ?", false).Count(&unread)
	assert.Equal(t, int64(5), unread)
}

func TestSeedTwiceFailsOnUniqueEmail(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := database.Seed(db, time.Now())
	require.NoError(t, err)

	_, err = database.Seed(db, time.Now())
	assert.Error(t, err)

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(5), users, "failed seed rolls back")
}
