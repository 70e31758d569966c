package repository

import (
	"context"
	"strings"
	"time"

	"roflexi/internal/domain"

	"gorm.io/gorm"
)

type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

type principalModel struct {
	UID           string    `gorm:"column:uid;primaryKey;size:64"`
	Email         string    `gorm:"column:email;size:320;uniqueIndex:idx_principals_email"`
	EmailVerified bool      `gorm:"column:email_verified"`
	DisplayName   string    `gorm:"column:display_name"`
	PhoneNumber   *string   `gorm:"column:phone_number;size:32;uniqueIndex:idx_principals_phone"`
	PasswordHash  string    `gorm:"column:password_hash"`
	Disabled      bool      `gorm:"column:disabled"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (principalModel) TableName() string { return "principals" }

func toDomainPrincipal(m principalModel) *domain.Principal {
	var phone string
	if m.PhoneNumber != nil {
		phone = *m.PhoneNumber
	}

	return &domain.Principal{
		UID:           m.UID,
		Email:         m.Email,
		EmailVerified: m.EmailVerified,
		DisplayName:   m.DisplayName,
		PhoneNumber:   phone,
		PasswordHash:  m.PasswordHash,
		Disabled:      m.Disabled,
		CreatedAt:     m.CreatedAt,
	}
}

func toPrincipalModel(p *domain.Principal) principalModel {
	var phone *string
	if p.PhoneNumber != "" {
		v := p.PhoneNumber
		phone = &v
	}

	return principalModel{
		UID:           p.UID,
		Email:         strings.TrimSpace(strings.ToLower(p.Email)),
		EmailVerified: p.EmailVerified,
		DisplayName:   p.DisplayName,
		PhoneNumber:   phone,
		PasswordHash:  p.PasswordHash,
		Disabled:      p.Disabled,
		CreatedAt:     p.CreatedAt,
	}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) error {
	m := toPrincipalModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPrincipal(m)
	return nil
}

func (r *PrincipalRepository) GetByUID(ctx context.Context, uid string) (*domain.Principal, error) {
	var m principalModel
	tx := r.db.WithContext(ctx).Where("uid = ?", uid).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPrincipal(m), nil
}

func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	var m principalModel
	tx := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPrincipal(m), nil
}

func (r *PrincipalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&principalModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *PrincipalRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&principalModel{}).
		Where("phone_number = ?", phone).
		Count(&count).Error
	return count > 0, err
}

func (r *PrincipalRepository) Delete(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&principalModel{}).Error
}

// ListCreatedBefore returns principals older than t, oldest first.
func (r *PrincipalRepository) ListCreatedBefore(ctx context.Context, t time.Time) ([]*domain.Principal, error) {
	var rows []principalModel
	err := r.db.WithContext(ctx).
		Where("created_at < ?", t).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Principal, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPrincipal(m))
	}
	return out, nil
}
