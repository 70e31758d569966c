package identity

import (
	"context"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/jwt"
)

type PrincipalRepository interface {
	Create(ctx context.Context, p *domain.Principal) error
	GetByUID(ctx context.Context, uid string) (*domain.Principal, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Delete(ctx context.Context, uid string) error
}

type TokenIssuer interface {
	GenerateBootstrapToken(uid, role string) (string, error)
	GenerateSessionToken(uid, role string) (string, time.Time, error)
	ValidateToken(tokenStr, purpose string) (*jwt.Claims, error)
}
