package repository

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
)

type InspectionKind string

const (
	KindDaily   InspectionKind = "daily"
	KindRegular InspectionKind = "regular"
)

func (k InspectionKind) Valid() bool {
	return k == KindDaily || k == KindRegular
}

func (k InspectionKind) model() interface{} {
	if k == KindDaily {
		return &models.DailyCheck{}
	}
	return &models.RegularInspection{}
}

type ReviewCount struct {
	Status models.ReviewStatus `json:"status"`
	Count  int64               `json:"count"`
}

type TypeCount struct {
	InspectionType models.InspectionType `json:"inspection_type"`
	Count          int64                 `json:"count"`
}

type ConditionCount struct {
	OverallStatus models.Condition `json:"overall_status"`
	Count         int64            `json:"count"`
}

type DailyCheckStats struct {
	Total    int64         `json:"total"`
	ByStatus []ReviewCount `json:"by_status"`
}

type RegularInspectionStats struct {
	Total    int64            `json:"total"`
	ByType   []TypeCount      `json:"by_type"`
	ByResult []ConditionCount `json:"by_result"`
}

type InspectionStats struct {
	DailyChecks        DailyCheckStats        `json:"daily_checks"`
	RegularInspections RegularInspectionStats `json:"regular_inspections"`
}

type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// CreateDailyCheck stores check and rolls its production quantity and date
// into the mold in the same transaction.
func (r *InspectionRepository) CreateDailyCheck(ctx context.Context, check *models.DailyCheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(check).Error; err != nil {
			return pkgerrors.Wrap(err, "create daily check")
		}
		err := tx.Model(&models.Mold{}).Where("id = ?", check.MoldID).Updates(map[string]interface{}{
			"last_daily_check": check.CheckDate,
			"production_count": gorm.Expr("production_count + ?", check.ProductionQuantity),
		}).Error
		return pkgerrors.Wrap(err, "update mold after daily check")
	})
}

func (r *InspectionRepository) CreateRegularInspection(ctx context.Context, inspection *models.RegularInspection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inspection).Error; err != nil {
			return pkgerrors.Wrap(err, "create regular inspection")
		}
		updates := map[string]interface{}{
			"last_regular_inspection": inspection.InspectionDate,
		}
		if inspection.NextInspectionDue != nil {
			updates["next_inspection_due"] = *inspection.NextInspectionDue
		}
		err := tx.Model(&models.Mold{}).Where("id = ?", inspection.MoldID).Updates(updates).Error
		return pkgerrors.Wrap(err, "update mold after regular inspection")
	})
}

// Review approves or rejects a pending record of the given kind.
func (r *InspectionRepository) Review(ctx context.Context, kind InspectionKind, id uint, status models.ReviewStatus, reviewerID uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(kind.model()).
			Where("id = ? AND status = ?", id, models.ReviewPending).
			Updates(map[string]interface{}{
				"status":      status,
				"approved_by": reviewerID,
				"approved_at": at,
			})
		if result.Error != nil {
			return pkgerrors.Wrapf(result.Error, "review %s inspection %d", kind, id)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(kind.model()).Where("id = ?", id).Count(&count).Error; err != nil {
			return pkgerrors.Wrapf(err, "find %s inspection %d", kind, id)
		}
		if count == 0 {
			return errs.ErrInspectionNotFound
		}
		return errs.ErrAlreadyReviewed
	})
}

// InspectorOf returns the inspector who recorded the given record.
func (r *InspectionRepository) InspectorOf(ctx context.Context, kind InspectionKind, id uint) (uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(kind.model()).Where("id = ?", id).Limit(1).Pluck("inspector_id", &ids).Error
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "find inspector of %s inspection %d", kind, id)
	}
	if len(ids) == 0 {
		return 0, errs.ErrInspectionNotFound
	}
	return ids[0], nil
}

func (r *InspectionRepository) Update(ctx context.Context, kind InspectionKind, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(kind.model()).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrapf(result.Error, "update %s inspection %d", kind, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrInspectionNotFound
	}
	return nil
}

func (r *InspectionRepository) FindDailyCheck(ctx context.Context, id uint) (*models.DailyCheck, error) {
	var check models.DailyCheck
	if err := r.find(ctx, &check, id); err != nil {
		return nil, err
	}
	return &check, nil
}

func (r *InspectionRepository) FindRegularInspection(ctx context.Context, id uint) (*models.RegularInspection, error) {
	var inspection models.RegularInspection
	if err := r.find(ctx, &inspection, id); err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *InspectionRepository) find(ctx context.Context, dest interface{}, id uint) error {
	err := r.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrInspectionNotFound
	}
	return pkgerrors.Wrapf(err, "find inspection %d", id)
}

func (r *InspectionRepository) Stats(ctx context.Context, dr DateRange) (*InspectionStats, error) {
	db := r.db.WithContext(ctx)
	stats := &InspectionStats{
		DailyChecks: DailyCheckStats{ByStatus: make([]ReviewCount, 0)},
		RegularInspections: RegularInspectionStats{
			ByType:   make([]TypeCount, 0),
			ByResult: make([]ConditionCount, 0),
		},
	}

	daily := func() *gorm.DB { return dr.apply(db.Model(&models.DailyCheck{}), "created_at") }
	regular := func() *gorm.DB { return dr.apply(db.Model(&models.RegularInspection{}), "created_at") }

	if err := daily().Count(&stats.DailyChecks.Total).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count daily checks")
	}
	if err := daily().Select("status, COUNT(id) AS count").Group("status").Order("status").
		Scan(&stats.DailyChecks.ByStatus).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "group daily checks by status")
	}

	if err := regular().Count(&stats.RegularInspections.Total).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "count regular inspections")
	}
	if err := regular().Select("inspection_type, COUNT(id) AS count").Group("inspection_type").Order("inspection_type").
		Scan(&stats.RegularInspections.ByType).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "group regular inspections by type")
	}
	if err := regular().Select("overall_status, COUNT(id) AS count").Where("overall_status <> ''").
		Group("overall_status").Order("overall_status").
		Scan(&stats.RegularInspections.ByResult).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "group regular inspections by result")
	}

	return stats, nil
}
