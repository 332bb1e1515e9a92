package server

import (
	"errors"
	"net/http"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func matchErrorResponse(c echo.Context, err error, context string) error {
	if errors.Is(err, domain.ErrMatchNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "match not found",
		})
	}
	if errors.Is(err, domain.ErrMemberNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "member not found",
		})
	}
	if errors.Is(err, domain.ErrInvalidMatchStatus) || errors.Is(err, domain.ErrInvalidOpponent) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}
	log.WithError(err).Error(context)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func (s *Server) CreateMatch(c echo.Context) error {
	var req domain.CreateMatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	match, err := s.matchService.CreateMatch(ctx, req)
	if err != nil {
		if isRequiredFieldError(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}
		return matchErrorResponse(c, err, "Failed to create match")
	}

	return c.JSON(http.StatusCreated, match)
}

func (s *Server) GetMatch(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	match, err := s.matchService.GetMatch(ctx, id)
	if err != nil {
		return matchErrorResponse(c, err, "Failed to get match")
	}

	return c.JSON(http.StatusOK, match)
}

func (s *Server) ListMatches(c echo.Context) error {
	filter := domain.MatchFilter{
		MemberID: c.QueryParam("memberId"),
		Status:   c.QueryParam("status"),
	}

	ctx := c.Request().Context()
	matches, err := s.matchService.ListMatches(ctx, filter)
	if err != nil {
		return matchErrorResponse(c, err, "Failed to list matches")
	}

	return c.JSON(http.StatusOK, matches)
}

func (s *Server) UpdateMatch(c echo.Context) error {
	id := c.Param("id")

	var req domain.UpdateMatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	match, err := s.matchService.UpdateMatch(ctx, id, req)
	if err != nil {
		return matchErrorResponse(c, err, "Failed to update match")
	}

	return c.JSON(http.StatusOK, match)
}

func (s *Server) DeleteMatch(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if err := s.matchService.DeleteMatch(ctx, id); err != nil {
		return matchErrorResponse(c, err, "Failed to delete match")
	}

	return c.NoContent(http.StatusNoContent)
}
