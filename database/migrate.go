package database

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/models"
)

const oneActiveScanIndex = "idx_scan_sessions_one_active"

// Migrate creates or updates every table. When singleActive is set, a partial
// unique index guarantees at most one active scan session per user.
func Migrate(db *gorm.DB, singleActive bool) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Plant{},
		&models.Partner{},
		&models.Manufacturer{},
		&models.Mold{},
		&models.ScanSession{},
		&models.DailyCheck{},
		&models.RegularInspection{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	if singleActive {
		// Postgres and SQLite share the partial index syntax.
		if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS " + oneActiveScanIndex +
			" ON scan_sessions (user_id) WHERE status = 'active'").Error; err != nil {
			return errors.Wrap(err, "create single active scan index")
		}
	} else if db.Migrator().HasIndex(&models.ScanSession{}, oneActiveScanIndex) {
		if err := db.Migrator().DropIndex(&models.ScanSession{}, oneActiveScanIndex); err != nil {
			return errors.Wrap(err, "drop single active scan index")
		}
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
