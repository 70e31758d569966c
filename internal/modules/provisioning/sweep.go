package provisioning

import (
	"context"
	"errors"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PrincipalLister interface {
	ListCreatedBefore(ctx context.Context, t time.Time) ([]*domain.Principal, error)
}

type RoleFinder interface {
	FindRole(ctx context.Context, uid string) (domain.Role, error)
}

type PrincipalDeleter interface {
	DeletePrincipal(ctx context.Context, uid string) error
}

// Sweeper removes principals that never got a profile, which is what a
// crash between the identity and profile steps leaves behind.
type Sweeper struct {
	principals PrincipalLister
	roles      RoleFinder
	identity   PrincipalDeleter
	log        *zap.Logger
}

func NewSweeper(principals PrincipalLister, roles RoleFinder, idp PrincipalDeleter, log *zap.Logger) *Sweeper {
	return &Sweeper{principals: principals, roles: roles, identity: idp, log: log}
}

// Sweep deletes orphaned principals created before cutoff and returns their
// uids. With dryRun nothing is deleted.
func (s *Sweeper) Sweep(ctx context.Context, cutoff time.Time, dryRun bool) ([]string, error) {
	candidates, err := s.principals.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var orphans []string
	for _, p := range candidates {
		if _, err := s.roles.FindRole(ctx, p.UID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return orphans, err
		}

		if dryRun {
			s.log.Info("orphan found", zap.String("uid", p.UID), zap.Time("created_at", p.CreatedAt))
			orphans = append(orphans, p.UID)
			continue
		}
		if err := s.identity.DeletePrincipal(ctx, p.UID); err != nil {
			metrics.Compensations.WithLabelValues("orphan_sweep", "error").Inc()
			s.log.Error("orphan delete failed", zap.String("uid", p.UID), zap.Error(err))
			continue
		}
		metrics.Compensations.WithLabelValues("orphan_sweep", "ok").Inc()
		s.log.Info("orphan deleted", zap.String("uid", p.UID))
		orphans = append(orphans, p.UID)
	}
	return orphans, nil
}
