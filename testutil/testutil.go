// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/database"
	"github.com/Krish-Depani/mold-tracker/models"
)

const Password = "password123"

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T, singleActive bool) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteClient(fmt.Sprintf("file:test%d?mode=memory&cache=shared", seq.Add(1)), false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, singleActive))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreatePlant(t *testing.T, db *gorm.DB, code string, lat, lon float64) *models.Plant {
	t.Helper()
	plant := &models.Plant{
		Site: models.Site{Code: code, Name: "Plant " + code, Latitude: &lat, Longitude: &lon, IsActive: true},
		Type: models.LocationPlant,
	}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

// CreateMold inserts an active mold. Pass a plant to give it a location.
func CreateMold(t *testing.T, db *gorm.DB, code string, plant *models.Plant) *models.Mold {
	t.Helper()
	qr := "QR-" + code
	mold := &models.Mold{
		MoldCode: code,
		Name:     "Mold " + code,
		Status:   models.MoldActive,
		QRCode:   &qr,
		IsActive: true,
	}
	if plant != nil {
		mold.CurrentLocationType = models.LocationPlant
		mold.CurrentLocationID = &plant.ID
	}
	require.NoError(t, db.Create(mold).Error)
	return mold
}

// Deactivate clears is_active, which a zero value on create cannot do
// because of the column default.
func Deactivate(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()
	require.NoError(t, db.Model(model).Update("is_active", false).Error)
}

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
