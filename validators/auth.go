package validators

import (
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Krish-Depani/mold-tracker/errs"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

var errInvalidPayload = errs.Validation("VALIDATION_ERROR", "Invalid request payload")

func Validate(data interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(data)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, e := range fieldErrors {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Param(),
				})
			}
		}
	}

	return validationErrors
}

// check turns validator failures on req into a ValidationError kind.
func check(req interface{}) error {
	if fieldErrs := Validate(req); len(fieldErrs) > 0 {
		return errInvalidPayload.WithDetails(fieldErrs)
	}
	return nil
}

// bindJSON decodes the body into req and validates it. An empty body is
// accepted when optional is set.
func bindJSON(c *gin.Context, req interface{}, optional bool) error {
	if err := c.ShouldBindJSON(req); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return errInvalidPayload
		}
	}
	return check(req)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

func ValidateLoginRequest(c *gin.Context) (*LoginRequest, error) {
	var req LoginRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	return &req, nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func ValidateRefreshRequest(c *gin.Context) (*RefreshRequest, error) {
	var req RefreshRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	return &req, nil
}

// ChangePasswordRequest caps the new password at bcrypt's 72 byte input limit.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

func ValidateChangePasswordRequest(c *gin.Context) (*ChangePasswordRequest, error) {
	var req ChangePasswordRequest
	if err := bindJSON(c, &req, false); err != nil {
		return nil, err
	}
	return &req, nil
}
