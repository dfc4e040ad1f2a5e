package repository

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
)

type MoldRepository struct {
	db *gorm.DB
}

func NewMoldRepository(db *gorm.DB) *MoldRepository {
	return &MoldRepository{db: db}
}

// FindActive returns the mold with id if it exists and is flagged active.
func (r *MoldRepository) FindActive(ctx context.Context, id uint) (*models.Mold, error) {
	var mold models.Mold
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&mold).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrMoldNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find mold %d", id)
	}
	return &mold, nil
}

// Location resolves the mold's current location record, or nil if it has none.
func (r *MoldRepository) Location(ctx context.Context, mold *models.Mold) (*models.Location, error) {
	if mold.CurrentLocationID == nil {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	id := *mold.CurrentLocationID

	var (
		site models.Site
		err  error
	)
	switch mold.CurrentLocationType {
	case models.LocationHQ, models.LocationPlant:
		var plant models.Plant
		err = db.First(&plant, id).Error
		site = plant.Site
	case models.LocationPartner:
		var partner models.Partner
		err = db.First(&partner, id).Error
		site = partner.Site
	case models.LocationManufacturer:
		var manufacturer models.Manufacturer
		err = db.First(&manufacturer, id).Error
		site = manufacturer.Site
	default:
		return nil, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "resolve %s location %d", mold.CurrentLocationType, id)
	}
	return site.AsLocation(mold.CurrentLocationType), nil
}
