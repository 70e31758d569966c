package provisioning

import (
	"context"

	"roflexi/internal/domain"
	"roflexi/internal/modules/identity"
)

type IdentityProvider interface {
	CreatePrincipal(ctx context.Context, in identity.NewPrincipal) (*domain.Principal, error)
	DeletePrincipal(ctx context.Context, uid string) error
	CreateCustomToken(ctx context.Context, uid string, role domain.Role) (string, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, role domain.Role, uid string) error
}

type CodeIssuer interface {
	IssueCode(ctx context.Context, uid string) (string, error)
}
