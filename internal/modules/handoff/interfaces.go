package handoff

import (
	"context"

	"roflexi/internal/domain"
)

type TokenMinter interface {
	CreateCustomToken(ctx context.Context, uid string, role domain.Role) (string, error)
}

type RoleFinder interface {
	FindRole(ctx context.Context, uid string) (domain.Role, error)
}
