package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Krish-Depani/mold-tracker/repository"
	"github.com/Krish-Depani/mold-tracker/services"
	"github.com/Krish-Depani/mold-tracker/validators"
)

type InspectionController struct {
	recorder *services.InspectionRecorder
}

func NewInspectionController(recorder *services.InspectionRecorder) *InspectionController {
	return &InspectionController{recorder: recorder}
}

func (ic *InspectionController) CreateDailyCheck(c *gin.Context) {
	in, err := validators.ValidateDailyCheckRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	check, err := ic.recorder.CreateDailyCheck(c.Request.Context(), principal(c), *in)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusCreated, "Daily check recorded successfully", check)
}

func (ic *InspectionController) CreateRegularInspection(c *gin.Context) {
	in, err := validators.ValidateRegularInspectionRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	inspection, err := ic.recorder.CreateRegularInspection(c.Request.Context(), principal(c), *in)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusCreated, "Regular inspection recorded successfully", inspection)
}

// Review handles PATCH /inspections/:kind/:id/review.
func (ic *InspectionController) Review(c *gin.Context) {
	id, err := validators.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	approve, err := validators.ValidateReviewRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	kind := repository.InspectionKind(c.Param("kind"))
	record, err := ic.recorder.Review(c.Request.Context(), principal(c), kind, id, approve)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Inspection reviewed successfully", record)
}

// Update handles PUT /inspections/:kind/:id.
func (ic *InspectionController) Update(c *gin.Context) {
	id, err := validators.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	in, err := validators.ValidateUpdateInspectionRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	kind := repository.InspectionKind(c.Param("kind"))
	record, err := ic.recorder.Update(c.Request.Context(), principal(c), kind, id, *in)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Inspection updated successfully", record)
}

func (ic *InspectionController) Stats(c *gin.Context) {
	dr, err := validators.ValidateDateQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	stats, err := ic.recorder.Statistics(c.Request.Context(), dr)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Inspection statistics retrieved successfully", stats)
}
