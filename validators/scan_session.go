package validators

import (
	"github.com/gin-gonic/gin"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/services"
)

type ScanRequest struct {
	MoldID    uint     `json:"mold_id"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Accuracy  *float64 `json:"accuracy"`
	QRCode    string   `json:"qr_code" validate:"omitempty,max=100"`
}

type EndSessionRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func ValidateScanRequest(c *gin.Context) (*services.ScanInput, error) {
	var req ScanRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	if req.MoldID == 0 {
		return nil, errs.Validation("VALIDATION_ERROR", "Mold ID is required")
	}
	return &services.ScanInput{
		MoldID:    req.MoldID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		QRCode:    req.QRCode,
	}, nil
}

func ValidateEndSessionRequest(c *gin.Context) (*EndSessionRequest, error) {
	var req EndSessionRequest
	if err := bindJSON(c, &req, true); err != nil {
		return nil, err
	}
	return &req, nil
}
