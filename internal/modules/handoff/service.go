package handoff

import (
	"context"
	"errors"
	"strings"

	"roflexi/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service re-mints bootstrap tokens for clients that lost the one returned
// at provisioning.
type Service struct {
	codes       *Codes
	tokens      TokenMinter
	roles       RoleFinder
	requireCode bool
	log         *zap.Logger
}

func NewService(codes *Codes, tokens TokenMinter, roles RoleFinder, requireCode bool, log *zap.Logger) *Service {
	return &Service{
		codes:       codes,
		tokens:      tokens,
		roles:       roles,
		requireCode: requireCode,
		log:         log,
	}
}

// IssueCode hands out the exchange code returned with a provisioning result.
func (s *Service) IssueCode(ctx context.Context, uid string) (string, error) {
	code, err := s.codes.Issue(ctx, uid)
	if err != nil {
		metrics.HandoffTotal.WithLabelValues("issue", "error").Inc()
		return "", err
	}
	metrics.HandoffTotal.WithLabelValues("issue", "ok").Inc()
	return code, nil
}

// MintForUID returns a fresh bootstrap token for uid. When codes are
// required, exchangeCode must be the unused code issued for that uid.
func (s *Service) MintForUID(ctx context.Context, uid, exchangeCode string) (string, error) {
	uid = strings.TrimSpace(uid)
	if _, err := uuid.Parse(uid); err != nil {
		metrics.HandoffTotal.WithLabelValues("mint", "invalid_uid").Inc()
		return "", ErrInvalidUID
	}

	if s.requireCode || exchangeCode != "" {
		if err := s.codes.Redeem(ctx, uid, exchangeCode); err != nil {
			metrics.HandoffTotal.WithLabelValues("mint", "rejected").Inc()
			return "", err
		}
	}

	role, err := s.roles.FindRole(ctx, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.HandoffTotal.WithLabelValues("mint", "error").Inc()
		return "", err
	}

	token, err := s.tokens.CreateCustomToken(ctx, uid, role)
	if err != nil {
		metrics.HandoffTotal.WithLabelValues("mint", "error").Inc()
		return "", err
	}

	s.log.Info("created custom token", zap.String("uid", uid), zap.String("role", string(role)))
	metrics.HandoffTotal.WithLabelValues("mint", "ok").Inc()
	return token, nil
}
