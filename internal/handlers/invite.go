package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"github.com/tripstitch/tripstitch-api/internal/invite"
	"github.com/tripstitch/tripstitch-api/internal/middleware"
	"github.com/tripstitch/tripstitch-api/internal/services"
)

// InviteHandler serves the server-rendered landing page behind emailed links.
type InviteHandler struct {
	cfg               *config.Config
	invitationService InvitationServiceInterface
}

func NewInviteHandler(cfg *config.Config, invitationService InvitationServiceInterface) *InviteHandler {
	return &InviteHandler{
		cfg:               cfg,
		invitationService: invitationService,
	}
}

type invitePageView struct {
	Title        string
	Message      string
	Color        template.CSS
	CalendarName string
	InviterName  string
	Role         string
	Token        string
	AppLink      string
	ShowActions  bool
}

var invitePage = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 420px; margin: 50px auto; padding: 20px; text-align: center; color: #334155; }
        h1 { color: {{.Color}}; }
        p { color: #64748b; margin: 16px 0; }
        .calendar { font-weight: bold; color: #0f172a; }
        .buttons { display: flex; gap: 10px; justify-content: center; margin-top: 30px; }
        button, .button { padding: 12px 24px; font-size: 16px; border: none; border-radius: 6px; cursor: pointer; text-decoration: none; }
        .accept { background: #3B82F6; color: white; }
        .decline { background: #e5e7eb; color: #334155; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    {{if .Message}}<p>{{.Message}}</p>{{end}}
    {{if .ShowActions}}
    <p><strong>{{.InviterName}}</strong> invited you to plan</p>
    <p class="calendar">{{.CalendarName}}</p>
    <p>You will join as {{.Role}}.</p>
    <div class="buttons">
        <a class="button accept" href="{{.AppLink}}">Accept in Tripstitch</a>
        <form action="/invite/accept/{{.Token}}/decline" method="POST" style="display:inline;">
            <button type="submit" class="decline">Decline</button>
        </form>
    </div>
    {{end}}
</body>
</html>`))

func (h *InviteHandler) render(c *drift.Context, status int, view invitePageView) {
	if view.Color == "" {
		view.Color = "#0f172a"
	}
	var b strings.Builder
	if err := invitePage.Execute(&b, view); err != nil {
		slog.Error("failed to render invite page", "error", err)
		c.InternalServerError("failed to render page")
		return
	}
	_ = c.HTML(status, b.String())
}

func (h *InviteHandler) renderError(c *drift.Context, status int, message string) {
	h.render(c, status, invitePageView{Title: "Invitation unavailable", Message: message, Color: "#ef4444"})
}

func (h *InviteHandler) ViewInvite(c *drift.Context) {
	token := c.Param("token")

	res, err := h.invitationService.ResolveToken(context.Background(), token)
	if err != nil {
		slog.Error("failed to resolve invitation", "error", err)
		h.renderError(c, 500, "Something went wrong. Please try again later.")
		return
	}

	switch res.State {
	case invite.StateInvalid:
		h.renderError(c, 404, "This invitation link is not valid.")
		return
	case invite.StateExpired:
		h.renderError(c, 410, "This invitation has expired. Ask for a new one.")
		return
	case invite.StateRejected:
		h.renderError(c, 410, "This invitation was declined.")
		return
	case invite.StateAlreadyAccepted:
		h.render(c, 200, invitePageView{Title: "Already accepted", Message: "This invitation has already been used."})
		return
	}

	inv := res.Invitation
	view := invitePageView{
		Title:       "Trip invitation",
		Role:        inv.Role,
		Token:       inv.Token,
		AppLink:     h.cfg.InviteLink(inv.Token),
		ShowActions: true,
		InviterName: "Someone",
	}
	if inv.Calendar != nil {
		view.CalendarName = inv.Calendar.Name
		view.Color = template.CSS(inv.Calendar.Color)
	}
	if inv.Inviter != nil {
		view.InviterName = inv.Inviter.DisplayName()
	}
	h.render(c, 200, view)
}

// AcceptInvite accepts on behalf of a caller identified by OptionalAuth.
// Anonymous callers are sent to the app to sign in first.
func (h *InviteHandler) AcceptInvite(c *drift.Context) {
	token := c.Param("token")

	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		h.render(c, 401, invitePageView{
			Title:   "Sign in to accept",
			Message: "Open Tripstitch and sign in to accept this invitation: " + h.cfg.InviteLink(token),
		})
		return
	}

	member, err := h.invitationService.Accept(context.Background(), token, userID)
	if err != nil {
		h.renderInviteError(c, err)
		return
	}

	h.render(c, 200, invitePageView{
		Title:   "You're in!",
		Message: "Your trip is waiting: " + h.cfg.CalendarLink(member.CalendarID.String()),
		Color:   "#10B981",
	})
}

func (h *InviteHandler) DeclineInvite(c *drift.Context) {
	if err := h.invitationService.Reject(context.Background(), c.Param("token")); err != nil {
		h.renderInviteError(c, err)
		return
	}

	h.render(c, 200, invitePageView{Title: "Invitation declined", Message: "You won't be added to this calendar."})
}

func (h *InviteHandler) renderInviteError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		h.renderError(c, 404, "This invitation link is not valid.")
	case errors.Is(err, services.ErrInviteExpired):
		h.renderError(c, 410, "This invitation has expired. Ask for a new one.")
	case errors.Is(err, services.ErrInviteRejected):
		h.renderError(c, 410, "This invitation was declined.")
	case errors.Is(err, services.ErrInviteAlreadyAccepted):
		h.renderError(c, 409, "This invitation has already been used.")
	default:
		slog.Error("invitation action failed", "error", err)
		h.renderError(c, 500, "Something went wrong. Please try again later.")
	}
}
