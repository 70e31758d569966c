package provisioning

import (
	"roflexi/internal/domain"
	"roflexi/internal/pkg/validator"
)

// Image is an uploaded profile picture held in memory.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission is one parsed registration request.
type Submission struct {
	Role        domain.Role
	Fields      validator.Fields
	Location    *domain.GeoPoint
	ServiceArea []domain.GeoPoint
	Tags        []string
	Image       *Image

	// IdempotencyKey, when set, makes retries of the same attempt converge
	// on one account.
	IdempotencyKey string
}

type Result struct {
	UID          string
	CustomToken  string
	ExchangeCode string
	Replayed     bool
}
