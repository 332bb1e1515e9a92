package server

import (
	"database/sql"
	"net/http"

	"socio-service/internal/service"
	"socio-service/internal/token"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type Server struct {
	memberService service.MemberServiceInterface
	matchService  service.MatchServiceInterface
	accessService service.AccessServiceInterface
	authService   service.AuthServiceInterface
	tokens        *token.Service
	db            *sql.DB
}

func NewServer(
	memberService service.MemberServiceInterface,
	matchService service.MatchServiceInterface,
	accessService service.AccessServiceInterface,
	authService service.AuthServiceInterface,
	tokens *token.Service,
	db *sql.DB,
) *Server {
	return &Server{
		memberService: memberService,
		matchService:  matchService,
		accessService: accessService,
		authService:   authService,
		tokens:        tokens,
		db:            db,
	}
}

func (s *Server) HealthCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		log.WithField("error", err).Error("Health check failed: database is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection error",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// RegisterRoutes wires all API endpoints onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.HealthCheck)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.Login)
	auth.POST("/register", s.Register)

	requireAuth := RequireAuth(s.tokens)
	requireAdmin := RequireAdmin()

	members := api.Group("/members")
	// Specific routes before parameter routes
	members.GET("/stats", s.MemberStats)
	members.GET("/overdue", s.ListOverdueMembers)
	members.GET("/ranking/seniority", s.SeniorityRanking)
	members.GET("/export", s.ExportMembers, requireAuth, requireAdmin)
	members.GET("", s.ListMembers)
	members.GET("/:id", s.GetMember)
	members.GET("/:id/history", s.GetMemberHistory, requireAuth)
	members.GET("/:id/card", s.GetMemberCard, requireAuth)
	members.POST("", s.CreateMember, requireAuth)
	members.PUT("/:id", s.UpdateMember, requireAuth)
	members.DELETE("/:id", s.DeleteMember, requireAuth, requireAdmin)
	members.PATCH("/:id/suspend", s.SuspendMember, requireAuth)
	members.PATCH("/:id/reactivate", s.ReactivateMember, requireAuth)
	members.PATCH("/:id/category", s.ChangeMemberCategory, requireAuth)
	members.POST("/:id/pay", s.PayDues, requireAuth)

	matches := api.Group("/matches")
	matches.GET("", s.ListMatches)
	matches.GET("/:id", s.GetMatch)
	matches.POST("", s.CreateMatch, requireAuth)
	matches.PUT("/:id", s.UpdateMatch, requireAuth)
	matches.DELETE("/:id", s.DeleteMatch, requireAuth, requireAdmin)

	access := api.Group("/access")
	access.GET("/logs", s.GetAccessLogs, requireAuth, requireAdmin)
	access.GET("/:memberId", s.CheckAccess, requireAuth)
}
