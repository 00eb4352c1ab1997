package dto

import "github.com/google/uuid"

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"provider"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}
