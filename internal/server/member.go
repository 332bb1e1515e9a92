package server

import (
	"errors"
	"net/http"
	"strconv"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// memberBadRequestErrors are domain errors that map to a 400 response.
var memberBadRequestErrors = []error{
	domain.ErrDNIExists,
	domain.ErrEmailExists,
	domain.ErrInvalidDNI,
	domain.ErrInvalidEmail,
	domain.ErrInvalidStanding,
	domain.ErrInvalidCategory,
	domain.ErrInvalidMonths,
}

func memberErrorResponse(c echo.Context, err error, context string) error {
	if errors.Is(err, domain.ErrMemberNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "member not found",
		})
	}
	for _, known := range memberBadRequestErrors {
		if errors.Is(err, known) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}
	}
	log.WithError(err).Error(context)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func (s *Server) CreateMember(c echo.Context) error {
	var req domain.CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.CreateMember(ctx, req)
	if err != nil {
		if isRequiredFieldError(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}
		return memberErrorResponse(c, err, "Failed to create member")
	}

	return c.JSON(http.StatusCreated, member)
}

// isRequiredFieldError reports whether the service rejected the request
// before touching storage.
func isRequiredFieldError(err error) bool {
	msg := err.Error()
	return msg == "first name is required" ||
		msg == "last name is required" ||
		msg == "member ID is required" ||
		msg == "date is required"
}

func (s *Server) GetMember(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "member ID is required",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.GetMember(ctx, id)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to get member")
	}

	return c.JSON(http.StatusOK, member)
}

func (s *Server) GetMemberHistory(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	history, err := s.memberService.GetStatusHistory(ctx, id)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to get member history")
	}

	if history == nil {
		history = []domain.StatusChange{}
	}

	return c.JSON(http.StatusOK, history)
}

// GetMemberCard returns the payload the club encodes onto membership cards.
func (s *Server) GetMemberCard(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	member, err := s.memberService.GetMember(ctx, id)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to get member card")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":            member.ID,
		"name":          member.FullName(),
		"member_number": member.MemberNumber,
		"valid_until":   member.DuesExpiryDate.Format("2006-01-02"),
	})
}

func (s *Server) UpdateMember(c echo.Context) error {
	id := c.Param("id")

	var req domain.UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.UpdateMember(ctx, id, req)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to update member")
	}

	return c.JSON(http.StatusOK, member)
}

func (s *Server) DeleteMember(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if err := s.memberService.DeleteMember(ctx, id, StaffID(c)); err != nil {
		return memberErrorResponse(c, err, "Failed to delete member")
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) ListMembers(c echo.Context) error {
	filter := domain.MemberFilter{
		Query:    c.QueryParam("q"),
		Standing: c.QueryParam("standing"),
		Category: c.QueryParam("category"),
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

	ctx := c.Request().Context()
	page, err := s.memberService.ListMembers(ctx, filter)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to list members")
	}

	return c.JSON(http.StatusOK, page)
}

func (s *Server) MemberStats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := s.memberService.Stats(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch member stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

func (s *Server) ListOverdueMembers(c echo.Context) error {
	ctx := c.Request().Context()
	members, err := s.memberService.ListOverdue(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list overdue members")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	if members == nil {
		members = []domain.Member{}
	}

	return c.JSON(http.StatusOK, members)
}

func (s *Server) SeniorityRanking(c echo.Context) error {
	ctx := c.Request().Context()
	members, err := s.memberService.SeniorityRanking(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch seniority ranking")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	if members == nil {
		members = []domain.Member{}
	}

	return c.JSON(http.StatusOK, members)
}

func (s *Server) ExportMembers(c echo.Context) error {
	ctx := c.Request().Context()
	data, err := s.memberService.ExportCSV(ctx, c.QueryParam("standing"), c.QueryParam("category"))
	if err != nil {
		return memberErrorResponse(c, err, "Failed to export members")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="members.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// SuspendRequest carries the reason for a standing change.
type SuspendRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) SuspendMember(c echo.Context) error {
	id := c.Param("id")

	var req SuspendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.SuspendMember(ctx, id, req.Reason, StaffID(c))
	if err != nil {
		return memberErrorResponse(c, err, "Failed to suspend member")
	}

	return c.JSON(http.StatusOK, member)
}

func (s *Server) ReactivateMember(c echo.Context) error {
	id := c.Param("id")

	var req SuspendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.ReactivateMember(ctx, id, req.Reason, StaffID(c))
	if err != nil {
		return memberErrorResponse(c, err, "Failed to reactivate member")
	}

	return c.JSON(http.StatusOK, member)
}

// ChangeCategoryRequest selects the member's new category.
type ChangeCategoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) ChangeMemberCategory(c echo.Context) error {
	id := c.Param("id")

	var req ChangeCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	member, err := s.memberService.ChangeCategory(ctx, id, req.Category)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to change member category")
	}

	return c.JSON(http.StatusOK, member)
}

// PayDuesRequest carries the number of monthly installments paid.
type PayDuesRequest struct {
	Months int `json:"months"`
}

func (s *Server) PayDues(c echo.Context) error {
	id := c.Param("id")

	req := PayDuesRequest{Months: 1}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if req.Months == 0 {
		req.Months = 1
	}

	ctx := c.Request().Context()
	member, err := s.memberService.PayDues(ctx, id, req.Months)
	if err != nil {
		return memberErrorResponse(c, err, "Failed to apply dues payment")
	}

	return c.JSON(http.StatusOK, member)
}
