package validators

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/services"
)

type inspectionFields struct {
	MoldID       uint           `json:"mold_id" validate:"required"`
	CheckItems   datatypes.JSON `json:"check_items"`
	Findings     string         `json:"findings" validate:"max=5000"`
	ActionsTaken string         `json:"actions_taken" validate:"max=5000"`
	Images       datatypes.JSON `json:"images"`
	Latitude     *float64       `json:"gps_latitude" validate:"omitempty,latitude"`
	Longitude    *float64       `json:"gps_longitude" validate:"omitempty,longitude"`
}

func (f inspectionFields) input() services.InspectionInput {
	return services.InspectionInput{
		MoldID:       f.MoldID,
		CheckItems:   f.CheckItems,
		Findings:     f.Findings,
		ActionsTaken: f.ActionsTaken,
		Images:       f.Images,
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
	}
}

type DailyCheckRequest struct {
	inspectionFields
	CheckDate          *time.Time `json:"check_date"`
	ProductionQuantity int64      `json:"production_quantity" validate:"gte=0"`
}

type RegularInspectionRequest struct {
	inspectionFields
	InspectionDate    *time.Time `json:"inspection_date"`
	InspectionType    string     `json:"inspection_type" validate:"required,oneof=regular fitting cleaning"`
	OverallStatus     string     `json:"overall_status" validate:"omitempty,oneof=good fair poor critical"`
	NextInspectionDue *time.Time `json:"next_inspection_due"`
}

type UpdateInspectionRequest struct {
	CheckItems        datatypes.JSON `json:"check_items"`
	Findings          *string        `json:"findings" validate:"omitempty,max=5000"`
	ActionsTaken      *string        `json:"actions_taken" validate:"omitempty,max=5000"`
	Images            datatypes.JSON `json:"images"`
	OverallStatus     *string        `json:"overall_status" validate:"omitempty,oneof=good fair poor critical"`
	NextInspectionDue *time.Time     `json:"next_inspection_due"`
}

type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func ValidateDailyCheckRequest(c *gin.Context) (*services.DailyCheckInput, error) {
	var req DailyCheckRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	return &services.DailyCheckInput{
		InspectionInput:    req.input(),
		CheckDate:          req.CheckDate,
		ProductionQuantity: req.ProductionQuantity,
	}, nil
}

func ValidateRegularInspectionRequest(c *gin.Context) (*services.RegularInspectionInput, error) {
	var req RegularInspectionRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	return &services.RegularInspectionInput{
		InspectionInput:   req.input(),
		InspectionDate:    req.InspectionDate,
		InspectionType:    models.InspectionType(req.InspectionType),
		OverallStatus:     models.Condition(req.OverallStatus),
		NextInspectionDue: req.NextInspectionDue,
	}, nil
}

// ValidateReviewRequest reports whether the reviewer approved.
func ValidateReviewRequest(c *gin.Context) (bool, error) {
	var req ReviewRequest
	if err := bindJSON(c, &req, false); err != nil {
		return false, err
	}
	return req.Action == "approve", nil
}

func ValidateUpdateInspectionRequest(c *gin.Context) (*services.InspectionUpdate, error) {
	var req UpdateInspectionRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	in := &services.InspectionUpdate{
		CheckItems:        req.CheckItems,
		Findings:          req.Findings,
		ActionsTaken:      req.ActionsTaken,
		Images:            req.Images,
		NextInspectionDue: req.NextInspectionDue,
	}
	if req.OverallStatus != nil {
		status := models.Condition(*req.OverallStatus)
		in.OverallStatus = &status
	}
	return in, nil
}
