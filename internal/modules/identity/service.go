package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/cache"
	"roflexi/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	usedTokenNS       = "identity:used-bootstrap"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service is the identity provider: it owns principals and the tokens
// bound to them.
type Service struct {
	principals PrincipalRepository
	tokens     TokenIssuer
	ledger     cache.Store
	now        func() time.Time
}

func NewService(principals PrincipalRepository, tokens TokenIssuer, ledger cache.Store) *Service {
	return &Service{
		principals: principals,
		tokens:     tokens,
		ledger:     ledger,
		now:        time.Now,
	}
}

// CreatePrincipal registers a new identity. Email and phone number must be
// unique across principals.
func (s *Service) CreatePrincipal(ctx context.Context, in NewPrincipal) (*domain.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailShape.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	exists, err := s.principals.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}
	if in.PhoneNumber != "" {
		exists, err = s.principals.ExistsByPhone(ctx, in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPhoneAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &domain.Principal{
		UID:           uuid.NewString(),
		Email:         email,
		EmailVerified: in.EmailVerified,
		DisplayName:   in.DisplayName,
		PhoneNumber:   in.PhoneNumber,
		PasswordHash:  string(hash),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.principals.Create(ctx, p); err != nil {
		// a concurrent registration can slip past the existence checks
		if dup := classifyUniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}

	p.PasswordHash = ""
	return p, nil
}

func (s *Service) GetPrincipal(ctx context.Context, uid string) (*domain.Principal, error) {
	p, err := s.principals.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	p.PasswordHash = ""
	return p, nil
}

func (s *Service) DeletePrincipal(ctx context.Context, uid string) error {
	return s.principals.Delete(ctx, uid)
}

// CreateCustomToken mints a bootstrap token for an existing principal.
func (s *Service) CreateCustomToken(ctx context.Context, uid string, role domain.Role) (string, error) {
	p, err := s.GetPrincipal(ctx, uid)
	if err != nil {
		return "", err
	}
	if p.Disabled {
		return "", ErrUserDisabled
	}
	return s.tokens.GenerateBootstrapToken(uid, string(role))
}

// SignInWithCustomToken exchanges a bootstrap token for a session. Each
// bootstrap token can be exchanged once.
func (s *Service) SignInWithCustomToken(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(token, jwt.PurposeBootstrap)
	if err != nil {
		return nil, ErrInvalidToken
	}

	p, err := s.GetPrincipal(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if p.Disabled {
		return nil, ErrUserDisabled
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > ttl {
			ttl = remaining
		}
	}
	fresh, err := s.ledger.SetNX(ctx, usedTokenNS, claims.ID, claims.UID, ttl)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, ErrTokenAlreadyUsed
	}

	sessionToken, expiresAt, err := s.tokens.GenerateSessionToken(claims.UID, claims.Role)
	if err != nil {
		return nil, err
	}

	return &Session{
		UID:          claims.UID,
		Role:         claims.Role,
		SessionToken: sessionToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return ErrPhoneAlreadyExists
		}
		return ErrEmailAlreadyExists
	}

	msg := err.Error()
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "phone") {
			return ErrPhoneAlreadyExists
		}
		return ErrEmailAlreadyExists
	}
	return nil
}
