package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Krish-Depani/mold-tracker/services"
	"github.com/Krish-Depani/mold-tracker/validators"
)

type ScanSessionController struct {
	manager *services.ScanSessionManager
}

func NewScanSessionController(manager *services.ScanSessionManager) *ScanSessionController {
	return &ScanSessionController{manager: manager}
}

// Scan handles POST /qr-sessions/scan.
func (sc *ScanSessionController) Scan(c *gin.Context) {
	in, err := validators.ValidateScanRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	result, err := sc.manager.Scan(c.Request.Context(), principal(c), *in)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusCreated, result.Message, result)
}

// EndSession handles PATCH /qr-sessions/:id/end.
func (sc *ScanSessionController) EndSession(c *gin.Context) {
	id, err := validators.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	req, err := validators.ValidateEndSessionRequest(c)
	if err != nil {
		c.Error(err)
		return
	}
	session, err := sc.manager.EndSession(c.Request.Context(), principal(c), id, req.Notes)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Session ended successfully", session)
}

func (sc *ScanSessionController) List(c *gin.Context) {
	in, err := validators.ValidateListSessionsQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	page, err := sc.manager.List(c.Request.Context(), principal(c), *in)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Sessions retrieved successfully", page)
}

// Active answers with data null when the caller has no active session.
func (sc *ScanSessionController) Active(c *gin.Context) {
	session, err := sc.manager.ActiveSession(c.Request.Context(), principal(c))
	if err != nil {
		c.Error(err)
		return
	}
	if session == nil {
		sendResponse(c, http.StatusOK, "No active session", nil)
		return
	}
	sendResponse(c, http.StatusOK, "Active session retrieved successfully", session)
}

func (sc *ScanSessionController) Stats(c *gin.Context) {
	dr, err := validators.ValidateDateQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	stats, err := sc.manager.Statistics(c.Request.Context(), principal(c), dr)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

func (sc *ScanSessionController) MoldHistory(c *gin.Context) {
	moldID, err := validators.ParseID(c, "moldId")
	if err != nil {
		c.Error(err)
		return
	}
	page, err := validators.ValidatePageQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	history, err := sc.manager.MoldHistory(c.Request.Context(), moldID, page)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Scan history retrieved successfully", history)
}

func (sc *ScanSessionController) Get(c *gin.Context) {
	id, err := validators.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	session, err := sc.manager.GetSession(c.Request.Context(), principal(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	sendResponse(c, http.StatusOK, "Session retrieved successfully", session)
}
