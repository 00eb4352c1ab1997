package handlers

import (
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

func toProfileResponse(p *models.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		AvatarURL:   p.AvatarURL,
		DisplayName: p.DisplayName(),
		Provider:    p.Provider,
	}
}

func toCalendarResponse(cal *models.Calendar, role string) dto.CalendarResponse {
	if role == "" {
		role = cal.UserRole
	}
	return dto.CalendarResponse{
		ID:          cal.ID,
		Name:        cal.Name,
		Description: cal.Description,
		Color:       cal.Color,
		CreatedBy:   cal.CreatedBy,
		Role:        role,
		MemberCount: cal.MemberCount,
		CreatedAt:   cal.CreatedAt,
		UpdatedAt:   cal.UpdatedAt,
	}
}

func toMemberResponse(m *models.CalendarMember) dto.MemberResponse {
	return dto.MemberResponse{
		ID:         m.ID,
		CalendarID: m.CalendarID,
		UserID:     m.UserID,
		Role:       m.Role,
		JoinedAt:   m.JoinedAt,
		Profile:    toProfileResponse(m.Profile),
	}
}

func toEventResponse(e *models.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                e.ID,
		CalendarID:        e.CalendarID,
		Title:             e.Title,
		Description:       e.Description,
		StartDate:         planner.DateOf(e.StartDate).String(),
		EndDate:           planner.DateOf(e.EndDate).String(),
		Time:              e.Time,
		Duration:          e.Duration,
		DurationFormatted: planner.FormatDuration(e.Duration),
		IsMultiDay:        e.IsMultiDay,
		Color:             e.Color,
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	if e.Creator != nil {
		resp.CreatorName = e.Creator.DisplayName()
	}
	return resp
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = toEventResponse(&events[i])
	}
	return resp
}

// toInvitationResponse leaves the token out unless link is set, so
// listings never leak a token the caller was not already shown.
func toInvitationResponse(inv *models.Invitation, link string) *dto.InvitationResponse {
	resp := &dto.InvitationResponse{
		ID:         inv.ID,
		CalendarID: inv.CalendarID,
		Email:      inv.Email,
		Role:       inv.Role,
		ExpiresAt:  inv.ExpiresAt,
		CreatedAt:  inv.CreatedAt,
		Inviter:    toProfileResponse(inv.Inviter),
	}
	if link != "" {
		resp.Token = inv.Token
		resp.Link = link
	}
	if inv.Calendar != nil {
		resp.Calendar = &dto.InvitationCalendar{
			ID:    inv.Calendar.ID,
			Name:  inv.Calendar.Name,
			Color: inv.Calendar.Color,
		}
	}
	return resp
}

func toJoinRequestResponse(r *models.JoinRequest) dto.JoinRequestResponse {
	return dto.JoinRequestResponse{
		ID:         r.ID,
		CalendarID: r.CalendarID,
		UserID:     r.UserID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		Profile:    toProfileResponse(r.Profile),
	}
}

func toMonthResponse(m planner.Month) dto.MonthResponse {
	resp := dto.MonthResponse{
		Year:          m.Year,
		Month:         int(m.Month),
		Title:         planner.MonthName(m.Year, m.Month),
		WeekdayLabels: planner.WeekdayLabels[:],
		Cells:         make([]dto.CellResponse, len(m.Cells)),
	}
	for i, cell := range m.Cells {
		out := dto.CellResponse{Placements: make([]dto.PlacementResponse, len(cell.Placements))}
		if !cell.IsBlank() {
			day := cell.Day
			out.Day = &day
			out.Date = cell.Date.String()
		}
		for j, p := range cell.Placements {
			out.Placements[j] = dto.PlacementResponse{
				Event: toEventResponse(&p.Event),
				Segment: dto.SegmentResponse{
					Kind:     p.Segment.Kind(),
					IsStart:  p.Segment.IsStart,
					IsEnd:    p.Segment.IsEnd,
					IsMiddle: p.Segment.IsMiddle,
					ShowTime: p.Segment.ShowTime,
				},
			}
		}
		resp.Cells[i] = out
	}
	return resp
}
