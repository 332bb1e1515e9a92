package server

import (
	"net/http"
	"strconv"
	"time"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// CheckAccess evaluates stadium entry for one member. An unknown member id
// is a meaningful answer for the gate operator, not an error, so it comes
// back as 200 with an ineligible verdict.
func (s *Server) CheckAccess(c echo.Context) error {
	memberID := c.Param("memberId")
	if memberID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "member ID is required",
		})
	}

	ctx := c.Request().Context()
	response, err := s.accessService.CheckAccess(ctx, memberID, StaffID(c))
	if err != nil {
		log.WithError(err).WithField("member_id", memberID).Error("Access check failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) GetAccessLogs(c echo.Context) error {
	filter := domain.AccessLogFilter{
		MemberID: c.QueryParam("memberId"),
		Page:     1,
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.PageSize = l
		}
	}

	if fromStr := c.QueryParam("from"); fromStr != "" {
		from, err := parseFilterDate(fromStr, false)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid from date",
			})
		}
		filter.From = &from
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		to, err := parseFilterDate(toStr, true)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid to date",
			})
		}
		filter.To = &to
	}

	ctx := c.Request().Context()
	page, err := s.accessService.ListLogs(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list access logs")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, page)
}

// parseFilterDate parses a date-range bound. A date-only upper bound is
// pushed to the end of that day so the range covers the whole calendar day.
func parseFilterDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
