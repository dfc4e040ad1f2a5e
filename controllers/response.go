package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/policy"
)

const (
	ctxPrincipal = "principal"
	ctxTokenID   = "tokenID"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorHandler renders the last error attached with c.Error. Internal errors
// are logged and their detail is only exposed when debug is set.
func ErrorHandler(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if e, ok := errs.As(err); ok && e.Kind != errs.KindInternal {
			status := e.StatusCode()
			logrus.WithFields(logrus.Fields{
				"path":   c.FullPath(),
				"status": status,
				"code":   e.Code,
			}).Debug(err)
			c.JSON(status, Response{
				Status:  status,
				Message: e.Message,
				Error:   &ErrorBody{Code: e.Code, Message: e.Message, Details: e.Details},
			})
			return
		}

		logrus.WithFields(logrus.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).Errorf("%+v", err)

		body := &ErrorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"}
		if debug {
			body.Message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, Response{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
			Error:   body,
		})
	}
}

// principal returns the caller set by AuthMiddleware.
func principal(c *gin.Context) policy.Principal {
	p, _ := c.Get(ctxPrincipal)
	pr, _ := p.(policy.Principal)
	return pr
}
