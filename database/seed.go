package database

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/models"
)

// Seed inserts demo locations, users and molds into an empty database.
func Seed(db *gorm.DB, password string) error {
	var moldCount int64
	if err := db.Model(&models.Mold{}).Count(&moldCount).Error; err != nil {
		return errors.Wrap(err, "count molds")
	}
	if moldCount > 0 {
		logrus.Info("Seed data already exists, skipping...")
		return nil
	}

	logrus.Info("Seeding database with initial data...")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash seed password")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		plants := []models.Plant{
			{Site: models.Site{Code: "HQ-001", Name: "Headquarters", Latitude: ptr(37.5665), Longitude: ptr(126.9780), IsActive: true}, Type: models.LocationHQ},
			{Site: models.Site{Code: "PLT-001", Name: "Ulsan Plant", Latitude: ptr(35.5384), Longitude: ptr(129.3114), IsActive: true}, Type: models.LocationPlant},
			{Site: models.Site{Code: "PLT-002", Name: "Asan Plant", Latitude: ptr(36.7898), Longitude: ptr(127.0018), IsActive: true}, Type: models.LocationPlant},
		}
		if err := tx.Create(&plants).Error; err != nil {
			return errors.Wrap(err, "create plants")
		}

		partners := []models.Partner{
			{Site: models.Site{Code: "PTN-001", Name: "Daehan Precision", Latitude: ptr(35.1796), Longitude: ptr(129.0756), IsActive: true}},
		}
		if err := tx.Create(&partners).Error; err != nil {
			return errors.Wrap(err, "create partners")
		}

		manufacturers := []models.Manufacturer{
			{Site: models.Site{Code: "MFR-001", Name: "Hanil Mold Works", Latitude: ptr(37.4563), Longitude: ptr(126.7052), IsActive: true}},
		}
		if err := tx.Create(&manufacturers).Error; err != nil {
			return errors.Wrap(err, "create manufacturers")
		}

		users := []models.User{
			{Username: "admin", Name: "System Admin", Email: "admin@example.com", Role: models.RoleAdmin},
			{Username: "hq01", Name: "HQ Staff", Email: "hq01@example.com", Role: models.RoleHQStaff},
			{Username: "partner01", Name: "Partner Staff", Email: "partner01@example.com", Role: models.RolePartner, PartnerID: &partners[0].ID},
			{Username: "worker01", Name: "Field Worker", Email: "worker01@example.com", Role: models.RoleWorker},
			{Username: "worker02", Name: "Field Worker 2", Email: "worker02@example.com", Role: models.RoleWorker},
		}
		for i := range users {
			users[i].PasswordHash = string(hash)
			users[i].IsActive = true
		}
		if err := tx.Create(&users).Error; err != nil {
			return errors.Wrap(err, "create users")
		}

		molds := []models.Mold{
			{MoldCode: "M-2024-001", Name: "Front Bumper Upper", PartNumber: "86511-AA000", VehicleModel: "NX4", QRCode: ptr("QR-M-2024-001"),
				CurrentLocationType: models.LocationPlant, CurrentLocationID: &plants[1].ID},
			{MoldCode: "M-2024-002", Name: "Door Trim LH", PartNumber: "82301-BB000", VehicleModel: "CN7", QRCode: ptr("QR-M-2024-002"),
				CurrentLocationType: models.LocationPartner, CurrentLocationID: &partners[0].ID, PartnerID: &partners[0].ID},
			{MoldCode: "M-2024-003", Name: "Console Box", PartNumber: "84611-CC000", VehicleModel: "MQ4", QRCode: ptr("QR-M-2024-003"),
				Status: models.MoldRepair, CurrentLocationType: models.LocationManufacturer, CurrentLocationID: &manufacturers[0].ID, ManufacturerID: &manufacturers[0].ID},
		}
		for i := range molds {
			molds[i].IsActive = true
			molds[i].CreatedBy = &users[0].ID
			if molds[i].Status == "" {
				molds[i].Status = models.MoldActive
			}
		}
		if err := tx.Create(&molds).Error; err != nil {
			return errors.Wrap(err, "create molds")
		}

		logrus.Info("Database seeding completed successfully")
		return nil
	})
}

func ptr[T any](v T) *T {
	return &v
}
