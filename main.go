package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"socio-service/internal/config"
	"socio-service/internal/publisher"
	"socio-service/internal/repository"
	"socio-service/internal/seed"
	"socio-service/internal/server"
	"socio-service/internal/service"
	"socio-service/internal/token"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	log.Info("Starting database migration...")
	m, err := migrate.New("file://db/migrations", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	// Create repositories
	memberRepository := repository.NewPostgresMemberRepository(db)
	accessLogRepository := repository.NewPostgresAccessLogRepository(db)
	matchRepository := repository.NewPostgresMatchRepository(db)
	staffRepository := repository.NewPostgresStaffRepository(db)

	// Gate event publisher is optional; the access path works without it.
	var gateEvents *service.GateEventService
	if cfg.Kafka.BootstrapServers != "" {
		gatePublisher, err := publisher.NewGatePublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.GateEventsTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create gate event publisher")
		}
		defer gatePublisher.Close()
		gateEvents = service.NewGateEventService(gatePublisher)
	}

	// Create services
	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	memberService := service.NewMemberService(memberRepository)
	matchService := service.NewMatchService(matchRepository, memberRepository)
	accessService := service.NewAccessService(memberRepository, accessLogRepository, gateEvents)
	authService := service.NewAuthService(staffRepository, tokens)

	ctx := context.Background()
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.WithField("error", err).Fatal("Could not seed admin user")
	}

	if cfg.SeedData {
		if err := seed.Members(ctx, memberRepository); err != nil {
			log.WithField("error", err).Fatal("Could not seed member data")
		}
	}

	// Create server
	srv := server.NewServer(memberService, matchService, accessService, authService, tokens, db)

	// Setup Echo
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.HTTP.RateLimit))))

	srv.RegisterRoutes(e)

	log.WithField("port", cfg.HTTP.Port).Info("Socio service is starting with Echo")

	if err := e.Start(":" + cfg.HTTP.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
