package handlers

import (
	"context"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

type ProfileHandler struct {
	profileService ProfileServiceInterface
}

func NewProfileHandler(profileService ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) GetMe(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(context.Background(), userID)
	if err != nil {
		respondError(c, err, "failed to load profile")
		return
	}

	_ = c.JSON(200, toProfileResponse(profile))
}

func (h *ProfileHandler) UpdateMe(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.FullName == nil && req.AvatarURL == nil {
		c.BadRequest("nothing to update")
		return
	}

	profile, err := h.profileService.Update(context.Background(), userID, req.FullName, req.AvatarURL)
	if err != nil {
		respondError(c, err, "failed to update profile")
		return
	}

	_ = c.JSON(200, toProfileResponse(profile))
}
