package identity

import "time"

// NewPrincipal describes an identity to create.
type NewPrincipal struct {
	Email         string
	EmailVerified bool
	DisplayName   string
	PhoneNumber   string
	Password      string
}

type SignInRequest struct {
	Token string `json:"token" binding:"required"`
}

// Session is a live signed-in session obtained from a bootstrap token.
type Session struct {
	UID          string    `json:"uid"`
	Role         string    `json:"role"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
