package provisioning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"roflexi/internal/domain"
	"roflexi/internal/modules/identity"
	"roflexi/internal/pkg/cache"
	"roflexi/internal/pkg/metrics"
	"roflexi/internal/pkg/validator"
	"roflexi/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	idempotencyNS      = "provisioning:idempotency"
	idempotencyPending = "pending"
)

var tracer = otel.Tracer("roflexi/provisioning")

type Options struct {
	PhoneCountryCode string
	IdempotencyTTL   time.Duration
}

// Service turns a validated submission into a principal, a profile record,
// a stored image and a bootstrap token. The steps span several systems, so
// each committed step registers an undo action.
type Service struct {
	identity IdentityProvider
	profiles ProfileRepository
	images   storage.Store
	codes    CodeIssuer
	keys     cache.Store
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	idp IdentityProvider,
	profiles ProfileRepository,
	images storage.Store,
	issuer CodeIssuer,
	keys cache.Store,
	opts Options,
	log *zap.Logger,
) *Service {
	return &Service{
		identity: idp,
		profiles: profiles,
		images:   images,
		codes:    issuer,
		keys:     keys,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Validate runs the authoritative field checks, including the image.
func Validate(sub *Submission) validator.Errors {
	errs := validator.ValidateSubmission(sub.Fields, sub.Location, sub.ServiceArea)
	if msg := validateImage(sub.Image); msg != "" {
		errs[validator.FieldProfileImage] = msg
	}
	return errs
}

// NormalizePhone prefixes the country code to the national digits.
func NormalizePhone(countryCode, phone string) string {
	digits := validator.DigitsOnly(phone)
	if len(digits) > validator.PhoneDigits {
		digits = digits[:validator.PhoneDigits]
	}
	return countryCode + digits
}

func (s *Service) Provision(ctx context.Context, sub *Submission) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "provisioning.Provision")
	span.SetAttributes(attribute.String("roflexi.role", string(sub.Role)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !sub.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", sub.Role)
	}

	if errs := Validate(sub); len(errs) > 0 {
		metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "invalid").Inc()
		return nil, &ValidationError{Errors: errs}
	}

	var tags []string
	if sub.Role == domain.RoleProvider {
		tags = normalizeTags(sub.Tags)
		if len(tags) == 0 {
			metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "invalid").Inc()
			return nil, ErrMissingTags
		}
	}

	if sub.IdempotencyKey != "" {
		replay, err := s.claimKey(ctx, sub)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	res, err = s.provision(ctx, sub, tags)
	if sub.IdempotencyKey != "" {
		s.settleKey(ctx, sub, res, err)
	}
	if err != nil {
		metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "failed").Inc()
		return nil, err
	}

	metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "created").Inc()
	return res, nil
}

func (s *Service) provision(ctx context.Context, sub *Submission, tags []string) (*Result, error) {
	role := sub.Role
	phone := NormalizePhone(s.opts.PhoneCountryCode, sub.Fields.Phone)
	tx := newSaga(s.log)

	var principal *domain.Principal
	err := s.step(ctx, "identity", func(ctx context.Context) error {
		var err error
		principal, err = s.identity.CreatePrincipal(ctx, identity.NewPrincipal{
			Email:         strings.TrimSpace(sub.Fields.Email),
			EmailVerified: false,
			DisplayName:   sub.Fields.FullName,
			PhoneNumber:   phone,
			Password:      sub.Fields.Password,
		})
		return err
	})
	if err != nil {
		s.log.Warn("identity creation failed", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	uid := principal.UID
	tx.uid = uid
	tx.push("identity", func(ctx context.Context) error {
		return s.identity.DeletePrincipal(ctx, uid)
	})

	age, _ := validator.ParseAge(sub.Fields.Age)
	imageKey := role.ImagePrefix() + uid + imageExt(sub.Image.Filename, sub.Image.ContentType)
	account := &domain.Account{
		UID:              uid,
		Role:             role,
		FullName:         sub.Fields.FullName,
		Email:            sub.Fields.Email,
		Age:              int(age),
		Phone:            phone,
		Location:         *sub.Location,
		ServiceArea:      sub.ServiceArea,
		ProfileImagePath: s.images.Path(imageKey),
		Tags:             tags,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.step(ctx, "profile", func(ctx context.Context) error {
		return s.profiles.Create(ctx, account)
	}); err != nil {
		s.log.Error("profile write failed", zap.String("uid", uid), zap.Error(err))
		tx.unwind(ctx)
		return nil, err
	}
	tx.push("profile", func(ctx context.Context) error {
		return s.profiles.Delete(ctx, role, uid)
	})

	// a lost image does not block the account
	if err := s.step(ctx, "image", func(ctx context.Context) error {
		_, err := s.images.Put(ctx, imageKey, sub.Image.ContentType, sub.Image.Data)
		return err
	}); err != nil {
		metrics.ImageStoreFailures.WithLabelValues(string(role)).Inc()
		s.log.Warn("failed to store profile image",
			zap.String("uid", uid),
			zap.String("key", imageKey),
			zap.Error(err),
		)
	} else {
		tx.push("image", func(ctx context.Context) error {
			return s.images.Delete(ctx, imageKey)
		})
	}

	res := &Result{UID: uid}
	if err := s.step(ctx, "token", func(ctx context.Context) error {
		var err error
		res.CustomToken, err = s.identity.CreateCustomToken(ctx, uid, role)
		if err != nil {
			return err
		}
		res.ExchangeCode, err = s.codes.IssueCode(ctx, uid)
		return err
	}); err != nil {
		s.log.Error("token mint failed", zap.String("uid", uid), zap.Error(err))
		tx.unwind(ctx)
		return nil, err
	}

	s.log.Info("account provisioned", zap.String("uid", uid), zap.String("role", string(role)))
	return res, nil
}

// step runs fn inside a child span and records its duration.
func (s *Service) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "provisioning."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.ProvisioningStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func idempotencyKey(sub *Submission) string {
	return string(sub.Role) + ":" + sub.IdempotencyKey
}

// submissionFingerprint identifies who a completed key belongs to. A replay
// is only served to a request carrying the same credentials.
func (s *Service) submissionFingerprint(sub *Submission) string {
	h := sha256.New()
	for _, part := range []string{
		string(sub.Role),
		strings.ToLower(strings.TrimSpace(sub.Fields.Email)),
		NormalizePhone(s.opts.PhoneCountryCode, sub.Fields.Phone),
		sub.Fields.Password,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// claimKey reserves the idempotency key. A key that already completed
// returns a replayed result with fresh credentials for the same account,
// provided the request matches the one that completed it.
func (s *Service) claimKey(ctx context.Context, sub *Submission) (*Result, error) {
	key := idempotencyKey(sub)
	claimed, err := s.keys.SetNX(ctx, idempotencyNS, key, idempotencyPending, s.opts.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	stored, err := s.keys.Get(ctx, idempotencyNS, key)
	switch {
	case errors.Is(err, cache.ErrMiss), err == nil && stored == idempotencyPending:
		return nil, ErrSubmissionInFlight
	case err != nil:
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}

	uid, fingerprint, _ := strings.Cut(stored, "|")
	if uid == "" || fingerprint != s.submissionFingerprint(sub) {
		s.log.Warn("idempotency key reused with different submission", zap.String("role", string(sub.Role)))
		metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "key_mismatch").Inc()
		return nil, ErrIdempotencyKeyUsed
	}

	res := &Result{UID: uid, Replayed: true}
	res.CustomToken, err = s.identity.CreateCustomToken(ctx, uid, sub.Role)
	if err != nil {
		return nil, err
	}
	res.ExchangeCode, err = s.codes.IssueCode(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.log.Info("replayed provisioning", zap.String("uid", uid), zap.String("role", string(sub.Role)))
	metrics.ProvisioningTotal.WithLabelValues(string(sub.Role), "replayed").Inc()
	return res, nil
}

// settleKey records the outcome. A failed attempt releases the key so the
// client can retry.
func (s *Service) settleKey(ctx context.Context, sub *Submission, res *Result, provErr error) {
	ctx = context.WithoutCancel(ctx)
	key := idempotencyKey(sub)

	var err error
	if provErr != nil {
		err = s.keys.Delete(ctx, idempotencyNS, key)
	} else {
		err = s.keys.Set(ctx, idempotencyNS, key, res.UID+"|"+s.submissionFingerprint(sub), s.opts.IdempotencyTTL)
	}
	if err != nil {
		s.log.Warn("failed to settle idempotency key", zap.String("key", key), zap.Error(err))
	}
}
