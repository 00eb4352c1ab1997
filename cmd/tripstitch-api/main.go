package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/robfig/cron/v3"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/handlers"
	authmw "github.com/tripstitch/tripstitch-api/internal/middleware"
	"github.com/tripstitch/tripstitch-api/internal/oauth"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	profileService := services.NewProfileService(db)
	accountService := services.NewAccountService(db)
	tokenService := services.NewTokenService(db)
	calendarService := services.NewCalendarService(db)
	eventService := services.NewEventService(db)
	invitationService := services.NewInvitationService(db, cfg.InviteTTL)
	joinService := services.NewJoinService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	if !emailService.IsConfigured() {
		logger.Warn("SMTP is not configured, invitation emails will not be sent")
	}

	var providers []oauth.Provider
	if cfg.Google.ClientID != "" {
		providers = append(providers, oauth.NewGoogleProvider(cfg.Google))
	}
	providerRegistry := oauth.NewRegistry(providers...)

	hub := sse.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg, providerRegistry, profileService, accountService, tokenService, jwtService)
	profileHandler := handlers.NewProfileHandler(profileService)
	calendarHandler := handlers.NewCalendarHandler(calendarService, eventService, hub)
	eventHandler := handlers.NewEventHandler(eventService, calendarService, hub)
	invitationHandler := handlers.NewInvitationHandler(cfg, invitationService, calendarService, profileService, emailService, hub)
	inviteHandler := handlers.NewInviteHandler(cfg, invitationService)
	joinHandler := handlers.NewJoinHandler(joinService, calendarService, hub)
	sseHandler := handlers.NewSSEHandler(hub, calendarService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger(logger))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.SignUp)
	auth.Post("/signin", authHandler.SignIn)
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	api.Get("/invitations/:token", invitationHandler.Resolve)
	api.Post("/invitations/:token/reject", invitationHandler.Reject)
	api.Get("/join/:calendarId", joinHandler.Summary)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/profile", profileHandler.GetMe)
	protected.Patch("/profile", profileHandler.UpdateMe)

	protected.Get("/colors", calendarHandler.Colors)
	protected.Get("/calendars", calendarHandler.List)
	protected.Post("/calendars", calendarHandler.Create)
	protected.Get("/calendars/:id", calendarHandler.Get)
	protected.Patch("/calendars/:id", calendarHandler.Update)
	protected.Delete("/calendars/:id", calendarHandler.Delete)
	protected.Get("/calendars/:id/month", calendarHandler.Month)
	protected.Get("/calendars/:id/export.ics", calendarHandler.ExportICS)

	protected.Get("/calendars/:id/events", eventHandler.List)
	protected.Post("/calendars/:id/events", eventHandler.Create)
	protected.Get("/calendars/:id/events/:eventId", eventHandler.Get)
	protected.Patch("/calendars/:id/events/:eventId", eventHandler.Update)
	protected.Delete("/calendars/:id/events/:eventId", eventHandler.Delete)

	protected.Get("/calendars/:id/members", calendarHandler.GetMembers)
	protected.Patch("/calendars/:id/members/:memberId", calendarHandler.UpdateMemberRole)
	protected.Delete("/calendars/:id/members/:memberId", calendarHandler.RemoveMember)
	protected.Post("/calendars/:id/leave", calendarHandler.Leave)

	protected.Get("/calendars/:id/invitations", invitationHandler.ListForCalendar)
	protected.Post("/calendars/:id/invitations", invitationHandler.Create)
	protected.Delete("/calendars/:id/invitations/:invitationId", invitationHandler.Cancel)
	protected.Get("/invitations", invitationHandler.Mine)
	protected.Post("/invitations/:token/accept", invitationHandler.Accept)

	protected.Post("/join/:calendarId", joinHandler.Request)
	protected.Get("/calendars/:id/join-requests", joinHandler.ListPending)
	protected.Post("/calendars/:id/join-requests/:requestId/approve", joinHandler.Approve)
	protected.Post("/calendars/:id/join-requests/:requestId/decline", joinHandler.Decline)

	protected.Get("/calendars/:id/changes", sseHandler.Connect)
	protected.Post("/sse/:clientId/subscribe/:id", sseHandler.Subscribe)
	protected.Post("/sse/:clientId/unsubscribe/:id", sseHandler.Unsubscribe)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	// Landing pages behind emailed invitation links
	pages := app.Group("/invite/accept")
	pages.Use(authmw.OptionalAuth(jwtService))
	pages.Get("/:token", inviteHandler.ViewInvite)
	pages.Post("/:token/accept", inviteHandler.AcceptInvite)
	pages.Post("/:token/decline", inviteHandler.DeclineInvite)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CleanupSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if n, err := invitationService.PurgeExpired(jobCtx, cfg.InviteRetention); err != nil {
			logger.Error("failed to purge expired invitations", "error", err)
		} else if n > 0 {
			logger.Info("purged expired invitations", "count", n)
		}
		if n, err := tokenService.CleanupExpired(jobCtx); err != nil {
			logger.Error("failed to clean up refresh tokens", "error", err)
		} else if n > 0 {
			logger.Info("cleaned up refresh tokens", "count", n)
		}
		authHandler.SweepExpired(time.Now())
	})
	if err != nil {
		logger.Error("invalid cleanup schedule", "schedule", cfg.CleanupSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("server starting", "addr", addr, "env", cfg.Env)
		if err := app.Run(addr); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	<-scheduler.Stop().Done()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
