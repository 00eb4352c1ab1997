package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/middleware"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

func currentUser(c *drift.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func paramID(c *drift.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + label + " id")
		return uuid.Nil, false
	}
	return id, true
}

// calendarRole answers 404 for non-members so calendar ids cannot be probed.
func calendarRole(c *drift.Context, calendars CalendarServiceInterface, calendarID, userID uuid.UUID) (string, bool) {
	role, err := calendars.RoleOf(context.Background(), calendarID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotMember) {
			c.NotFound("calendar not found")
			return "", false
		}
		respondError(c, err, "failed to load calendar")
		return "", false
	}
	return role, true
}

// respondError maps service errors onto HTTP statuses. Anything unrecognized
// is logged and reported as fallback.
func respondError(c *drift.Context, err error, fallback string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.BadRequest(validation.Error())
	case errors.Is(err, services.ErrInvalidRole):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrCannotRemoveOwner):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrCalendarNotFound),
		errors.Is(err, services.ErrNotMember):
		c.NotFound("calendar not found")
	case errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrJoinRequestNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		_ = c.JSON(409, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAlreadyMember})
	case errors.Is(err, services.ErrInviteAlreadyAccepted):
		_ = c.JSON(409, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAlreadyAccepted})
	case errors.Is(err, services.ErrEmailTaken):
		_ = c.JSON(409, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeEmailTaken})
	case errors.Is(err, services.ErrInviteExpired):
		_ = c.JSON(410, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeExpired})
	case errors.Is(err, services.ErrInviteRejected):
		_ = c.JSON(410, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeRejected})
	default:
		slog.Error(fallback, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.InternalServerError(fallback)
	}
}
