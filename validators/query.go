package validators

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Krish-Depani/mold-tracker/errs"
	"github.com/Krish-Depani/mold-tracker/models"
	"github.com/Krish-Depani/mold-tracker/repository"
	"github.com/Krish-Depani/mold-tracker/services"
)

const dateOnly = "2006-01-02"

type PageQuery struct {
	Page  int `form:"page" validate:"gte=0"`
	Limit int `form:"limit" validate:"gte=0"`
}

func (q PageQuery) pagination() repository.Pagination {
	return repository.Pagination{Page: q.Page, Limit: q.Limit}.Normalize()
}

type DateQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// dateRange parses RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func (q DateQuery) dateRange() (repository.DateRange, error) {
	var dr repository.DateRange
	if q.StartDate != "" {
		t, _, err := parseTime(q.StartDate)
		if err != nil {
			return dr, errs.Validation("INVALID_DATE", "start_date must be YYYY-MM-DD or RFC 3339")
		}
		dr.From = &t
	}
	if q.EndDate != "" {
		t, wholeDay, err := parseTime(q.EndDate)
		if err != nil {
			return dr, errs.Validation("INVALID_DATE", "end_date must be YYYY-MM-DD or RFC 3339")
		}
		if wholeDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		dr.To = &t
	}
	return dr, nil
}

func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateOnly, s)
	return t, true, err
}

type ListSessionsQuery struct {
	PageQuery
	DateQuery
	MoldID    *uint  `form:"mold_id"`
	UserID    *uint  `form:"user_id"`
	Status    string `form:"status" validate:"omitempty,oneof=active completed"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=created_at expires_at ended_at id"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

func bindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errs.Validation("VALIDATION_ERROR", "Invalid query parameters")
	}
	return check(req)
}

func ValidateListSessionsQuery(c *gin.Context) (*services.ListInput, error) {
	var q ListSessionsQuery
	if err := bindQuery(c, &q); err != nil {
		return nil, err
	}
	dr, err := q.dateRange()
	if err != nil {
		return nil, err
	}
	return &services.ListInput{
		MoldID:   q.MoldID,
		UserID:   q.UserID,
		Status:   models.ScanStatus(q.Status),
		Range:    dr,
		SortBy:   q.SortBy,
		SortDesc: q.SortOrder == "" || strings.EqualFold(q.SortOrder, "desc"),
		Page:     q.pagination(),
	}, nil
}

func ValidatePageQuery(c *gin.Context) (repository.Pagination, error) {
	var q PageQuery
	if err := bindQuery(c, &q); err != nil {
		return repository.Pagination{}, err
	}
	return q.pagination(), nil
}

func ValidateDateQuery(c *gin.Context) (repository.DateRange, error) {
	var q DateQuery
	if err := bindQuery(c, &q); err != nil {
		return repository.DateRange{}, err
	}
	return q.dateRange()
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("INVALID_ID", "Invalid "+name)
	}
	return uint(id), nil
}
