package jwt

import (
	"crypto/rand"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	PurposeBootstrap = "bootstrap"
	PurposeSession   = "session"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongPurpose  = errors.New("token issued for another purpose")
	ErrInvalidClaims = errors.New("invalid claims")
)

type Service struct {
	secret       []byte
	bootstrapTTL time.Duration
	sessionTTL   time.Duration
	now          func() time.Time
}

type Claims struct {
	UID     string `json:"uid"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwtlib.RegisteredClaims
}

func New(secret string, bootstrapTTL, sessionTTL time.Duration) *Service {
	return &Service{
		secret:       []byte(secret),
		bootstrapTTL: bootstrapTTL,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

// GenerateBootstrapToken mints the short-lived token a client exchanges for a session.
func (s *Service) GenerateBootstrapToken(uid, role string) (string, error) {
	token, _, err := s.sign(uid, role, PurposeBootstrap, s.bootstrapTTL)
	return token, err
}

// GenerateSessionToken mints the bearer token of a live session.
func (s *Service) GenerateSessionToken(uid, role string) (string, time.Time, error) {
	return s.sign(uid, role, PurposeSession, s.sessionTTL)
}

func (s *Service) sign(uid, role, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UID:     uid,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0)).String(),
			Subject:   uid,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses tokenStr and checks that it was issued for purpose.
func (s *Service) ValidateToken(tokenStr, purpose string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UID == "" || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}

	return claims, nil
}
