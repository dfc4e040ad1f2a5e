package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/policy"
	"github.com/Krish-Depani/mold-tracker/repository"
)

type InspectionStore interface {
	CreateDailyCheck(ctx context.Context, check *models.DailyCheck) error
	CreateRegularInspection(ctx context.Context, inspection *models.RegularInspection) error
	Review(ctx context.Context, kind repository.InspectionKind, id uint, status models.ReviewStatus, reviewerID uint, at time.Time) error
	FindDailyCheck(ctx context.Context, id uint) (*models.DailyCheck, error)
	FindRegularInspection(ctx context.Context, id uint) (*models.RegularInspection, error)
	InspectorOf(ctx context.Context, kind repository.InspectionKind, id uint) (uint, error)
	Update(ctx context.Context, kind repository.InspectionKind, id uint, updates map[string]interface{}) error
	Stats(ctx context.Context, dr repository.DateRange) (*repository.InspectionStats, error)
}

type InspectionRecorder struct {
	molds       MoldStore
	inspections InspectionStore
	now         func() time.Time
}

func NewInspectionRecorder(molds MoldStore, inspections InspectionStore, now func() time.Time) *InspectionRecorder {
	if now == nil {
		now = time.Now
	}
	return &InspectionRecorder{molds: molds, inspections: inspections, now: now}
}

// InspectionInput carries the fields common to both inspection kinds.
type InspectionInput struct {
	MoldID       uint
	CheckItems   datatypes.JSON
	Findings     string
	ActionsTaken string
	Images       datatypes.JSON
	Latitude     *float64
	Longitude    *float64
}

type DailyCheckInput struct {
	InspectionInput
	CheckDate          *time.Time
	ProductionQuantity int64
}

type RegularInspectionInput struct {
	InspectionInput
	InspectionDate    *time.Time
	InspectionType    models.InspectionType
	OverallStatus     models.Condition
	NextInspectionDue *time.Time
}

// InspectionUpdate lists the editable fields of a recorded inspection. Nil
// fields are left unchanged. OverallStatus and NextInspectionDue only apply
// to regular inspections.
type InspectionUpdate struct {
	CheckItems        datatypes.JSON
	Findings          *string
	ActionsTaken      *string
	Images            datatypes.JSON
	OverallStatus     *models.Condition
	NextInspectionDue *time.Time
}

func (u InspectionUpdate) columns(kind repository.InspectionKind) map[string]interface{} {
	updates := make(map[string]interface{})
	if u.CheckItems != nil {
		updates["check_items"] = u.CheckItems
	}
	if u.Findings != nil {
		updates["findings"] = *u.Findings
	}
	if u.ActionsTaken != nil {
		updates["actions_taken"] = *u.ActionsTaken
	}
	if u.Images != nil {
		updates["images"] = u.Images
	}
	if kind == repository.KindRegular {
		if u.OverallStatus != nil {
			updates["overall_status"] = *u.OverallStatus
		}
		if u.NextInspectionDue != nil {
			updates["next_inspection_due"] = *u.NextInspectionDue
		}
	}
	return updates
}

func (r *InspectionRecorder) base(p policy.Principal, in InspectionInput) models.Inspection {
	return models.Inspection{
		MoldID:       in.MoldID,
		InspectorID:  p.ID,
		CheckItems:   in.CheckItems,
		Findings:     in.Findings,
		ActionsTaken: in.ActionsTaken,
		Images:       in.Images,
		GPSLatitude:  in.Latitude,
		GPSLongitude: in.Longitude,
		Status:       models.ReviewPending,
	}
}

func (r *InspectionRecorder) CreateDailyCheck(ctx context.Context, p policy.Principal, in DailyCheckInput) (*models.DailyCheck, error) {
	if in.ProductionQuantity < 0 {
		return nil, errs.Validation("VALIDATION_ERROR", "Production quantity cannot be negative")
	}
	if _, err := r.molds.FindActive(ctx, in.MoldID); err != nil {
		return nil, err
	}

	checkDate := r.now()
	if in.CheckDate != nil {
		checkDate = *in.CheckDate
	}
	check := &models.DailyCheck{
		Inspection:         r.base(p, in.InspectionInput),
		CheckDate:          checkDate,
		ProductionQuantity: in.ProductionQuantity,
	}
	if err := r.inspections.CreateDailyCheck(ctx, check); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"check_id": check.ID, "mold_id": in.MoldID, "inspector_id": p.ID}).
		Info("daily check recorded")
	return check, nil
}

func (r *InspectionRecorder) CreateRegularInspection(ctx context.Context, p policy.Principal, in RegularInspectionInput) (*models.RegularInspection, error) {
	switch in.InspectionType {
	case models.InspectionRegular, models.InspectionFitting, models.InspectionCleaning:
	default:
		return nil, errs.Validation("VALIDATION_ERROR", "Unsupported inspection type: "+string(in.InspectionType))
	}
	if _, err := r.molds.FindActive(ctx, in.MoldID); err != nil {
		return nil, err
	}

	date := r.now()
	if in.InspectionDate != nil {
		date = *in.InspectionDate
	}
	inspection := &models.RegularInspection{
		Inspection:        r.base(p, in.InspectionInput),
		InspectionDate:    date,
		InspectionType:    in.InspectionType,
		OverallStatus:     in.OverallStatus,
		NextInspectionDue: in.NextInspectionDue,
	}
	if err := r.inspections.CreateRegularInspection(ctx, inspection); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"inspection_id": inspection.ID, "mold_id": in.MoldID, "inspector_id": p.ID}).
		Info("regular inspection recorded")
	return inspection, nil
}

// Review approves or rejects a pending inspection and returns the updated record.
func (r *InspectionRecorder) Review(ctx context.Context, p policy.Principal, kind repository.InspectionKind, id uint, approve bool) (interface{}, error) {
	if !policy.CanReview(p) {
		return nil, errs.ErrReviewForbidden
	}
	if !kind.Valid() {
		return nil, errs.Validation("INVALID_KIND", "Inspection kind must be daily or regular")
	}

	status := models.ReviewRejected
	if approve {
		status = models.ReviewApproved
	}
	if err := r.inspections.Review(ctx, kind, id, status, p.ID, r.now()); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"kind": kind, "inspection_id": id, "reviewer_id": p.ID, "status": status}).
		Info("inspection reviewed")
	return r.fetch(ctx, kind, id)
}

// Update edits an inspection. Workers may only edit records they recorded.
func (r *InspectionRecorder) Update(ctx context.Context, p policy.Principal, kind repository.InspectionKind, id uint, in InspectionUpdate) (interface{}, error) {
	if !kind.Valid() {
		return nil, errs.Validation("INVALID_KIND", "Inspection kind must be daily or regular")
	}
	updates := in.columns(kind)
	if len(updates) == 0 {
		return nil, errs.Validation("VALIDATION_ERROR", "No fields to update")
	}

	inspectorID, err := r.inspections.InspectorOf(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if policy.CanEdit(p, inspectorID) != policy.Allow {
		return nil, errs.ErrInspectionForbidden
	}
	if err := r.inspections.Update(ctx, kind, id, updates); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"kind": kind, "inspection_id": id, "user_id": p.ID}).Info("inspection updated")
	return r.fetch(ctx, kind, id)
}

func (r *InspectionRecorder) fetch(ctx context.Context, kind repository.InspectionKind, id uint) (interface{}, error) {
	if kind == repository.KindDaily {
		check, err := r.inspections.FindDailyCheck(ctx, id)
		if err != nil {
			return nil, err
		}
		return check, nil
	}
	inspection, err := r.inspections.FindRegularInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	return inspection, nil
}

func (r *InspectionRecorder) Statistics(ctx context.Context, dr repository.DateRange) (*repository.InspectionStats, error) {
	return r.inspections.Stats(ctx, dr)
}
