package dto

// ErrorResponse is sent for errors the client is expected to branch on.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const (
	CodeAlreadyMember    = "ALREADY_MEMBER"
	CodeInvitationExists = "INVITATION_EXISTS"
	CodeAlreadyAccepted  = "ALREADY_ACCEPTED"
	CodeExpired          = "EXPIRED"
	CodeRejected         = "REJECTED"
	CodeEmailTaken       = "EMAIL_TAKEN"
)
