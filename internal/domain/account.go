package domain

import (
	"math"
	"time"
)

type Role string

const (
	RoleProvider  Role = "provider"
	RoleRequester Role = "requester"
)

// Valid reports whether r is one of the known participant roles.
func (r Role) Valid() bool {
	return r == RoleProvider || r == RoleRequester
}

// Collection is the profile collection (table) holding documents of this role.
func (r Role) Collection() string {
	return string(r) + "s"
}

// ImagePrefix is prepended to the principal id when naming the profile image.
func (r Role) ImagePrefix() string {
	return string(r) + "-"
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and inside their ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Account is the profile document persisted once per principal.
type Account struct {
	UID              string     `json:"uid"`
	Role             Role       `json:"type"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	Age              int        `json:"age"`
	Phone            string     `json:"phone"`
	Location         GeoPoint   `json:"location"`
	ServiceArea      []GeoPoint `json:"serviceArea"`
	ProfileImagePath string     `json:"profileImagePath"`
	Tags             []string   `json:"tags,omitempty"`
	Rating           float64    `json:"rating"`
	ReviewsCount     int        `json:"reviewsCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Principal is the identity-provider record backing an account.
type Principal struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	DisplayName   string    `json:"displayName"`
	PhoneNumber   string    `json:"phoneNumber"`
	PasswordHash  string    `json:"-"`
	Disabled      bool      `json:"disabled"`
	CreatedAt     time.Time `json:"createdAt"`
}
