package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/ics"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tripstitch-admin",
		Usage: "Maintenance tasks for shared trip calendars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(setupLogger(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			purgeInvitesCommand(),
			exportICSCommand(),
			promoteOwnerCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func purgeInvitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-invites",
		Usage: "Delete expired pending invitations and refresh tokens",
		Action: func(c *cli.Context) error {
			cfg, db, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := services.NewInvitationService(db, cfg.InviteTTL).PurgeExpired(c.Context, cfg.InviteRetention)
			if err != nil {
				return fmt.Errorf("purge invitations: %w", err)
			}

			slog.Info("Purged expired invitations", "count", n)

			n, err = services.NewTokenService(db).CleanupExpired(c.Context)
			if err != nil {
				return fmt.Errorf("clean up refresh tokens: %w", err)
			}

			slog.Info("Cleaned up refresh tokens", "count", n)
			return nil
		},
	}
}

func exportICSCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-ics",
		Usage: "Write a calendar's events to an iCalendar file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "calendar",
				Usage:    "Calendar ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file (defaults to the calendar name slug)",
			},
		},
		Action: func(c *cli.Context) error {
			calendarID, err := uuid.Parse(c.String("calendar"))
			if err != nil {
				return fmt.Errorf("invalid calendar id: %w", err)
			}

			_, db, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			cal, err := services.NewCalendarService(db).GetByID(c.Context, calendarID)
			if err != nil {
				return fmt.Errorf("load calendar: %w", err)
			}
			events, err := services.NewEventService(db).ListByCalendar(c.Context, calendarID)
			if err != nil {
				return fmt.Errorf("load events: %w", err)
			}

			out := c.String("out")
			if out == "" {
				out = ics.Filename(cal)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := ics.Encode(f, cal, events, time.Now()); err != nil {
				return fmt.Errorf("encode calendar: %w", err)
			}

			slog.Info("Exported calendar", "calendar", cal.Name, "events", len(events), "file", out)
			return nil
		},
	}
}

func promoteOwnerCommand() *cli.Command {
	return &cli.Command{
		Name:  "promote-owner",
		Usage: "Hand calendar ownership to an existing member",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "calendar",
				Usage:    "Calendar ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "email",
				Usage:    "Email of the new owner",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			calendarID, err := uuid.Parse(c.String("calendar"))
			if err != nil {
				return fmt.Errorf("invalid calendar id: %w", err)
			}

			_, db, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()

			profile, err := services.NewProfileService(db).GetByEmail(c.Context, c.String("email"))
			if err != nil {
				return fmt.Errorf("find profile: %w", err)
			}

			calendars := services.NewCalendarService(db)
			if _, err := calendars.RoleOf(c.Context, calendarID, profile.ID); err != nil {
				return fmt.Errorf("%s is not a member of this calendar: %w", profile.Email, err)
			}
			if err := calendars.TransferOwnership(c.Context, calendarID, profile.ID); err != nil {
				return fmt.Errorf("transfer ownership: %w", err)
			}

			slog.Info("Transferred ownership", "calendar", calendarID, "owner", profile.Email)
			return nil
		},
	}
}

func connect(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return cfg, db, nil
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
