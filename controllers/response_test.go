package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krish-Depani/mold-tracker/errs"
)

func serveError(t *testing.T, debug bool, err error) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(debug))
	r.GET("/", func(c *gin.Context) { c.Error(err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	code, resp := serveError(t, false, errors.Wrap(errs.ErrSessionForbidden, "get session"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	code, resp = serveError(t, false, errs.ErrActiveSessionExists)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ACTIVE_SESSION_EXISTS", resp.Error.Code)
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	boom := errors.New("pq: connection refused")

	code, resp := serveError(t, false, boom)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Error.Message)

	_, resp = serveError(t, true, boom)
	assert.Equal(t, "pq: connection refused", resp.Error.Message)
}
