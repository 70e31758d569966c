package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roflexi/internal/domain"

	"gorm.io/gorm"
)

// ProfileRepository stores one profile document per principal in the
// collection of its role.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// geoPoint is the stored form of a coordinate inside a document.
type geoPoint struct {
	Latitude  float64 `json:"_latitude"`
	Longitude float64 `json:"_longitude"`
}

type ProfileColumns struct {
	UID              string     `gorm:"column:uid;primaryKey;size:64"`
	Type             string     `gorm:"column:type;size:16"`
	FullName         string     `gorm:"column:full_name"`
	Email            string     `gorm:"column:email;size:320"`
	Age              int        `gorm:"column:age"`
	Phone            string     `gorm:"column:phone;size:32"`
	ProfileImagePath *string    `gorm:"column:profile_image_path"`
	Location         geoPoint   `gorm:"embedded;embeddedPrefix:location_"`
	ServiceArea      []geoPoint `gorm:"column:service_area;serializer:json"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

type providerModel struct {
	ProfileColumns
	Tags         []string `gorm:"column:tags;serializer:json"`
	Rating       float64  `gorm:"column:rating"`
	ReviewsCount int      `gorm:"column:reviews_count"`
}

func (providerModel) TableName() string { return domain.RoleProvider.Collection() }

type requesterModel struct {
	ProfileColumns
}

func (requesterModel) TableName() string { return domain.RoleRequester.Collection() }

// ErrUnknownRole is returned for accounts whose role has no collection.
var ErrUnknownRole = errors.New("unknown account role")

func toGeoPoint(p domain.GeoPoint) geoPoint {
	return geoPoint{Latitude: p.Lat, Longitude: p.Lng}
}

func fromGeoPoint(p geoPoint) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Latitude, Lng: p.Longitude}
}

func toProfileColumns(a *domain.Account) ProfileColumns {
	var image *string
	if a.ProfileImagePath != "" {
		v := a.ProfileImagePath
		image = &v
	}

	area := make([]geoPoint, 0, len(a.ServiceArea))
	for _, p := range a.ServiceArea {
		area = append(area, toGeoPoint(p))
	}

	return ProfileColumns{
		UID:              a.UID,
		Type:             string(a.Role),
		FullName:         a.FullName,
		Email:            a.Email,
		Age:              a.Age,
		Phone:            a.Phone,
		ProfileImagePath: image,
		Location:         toGeoPoint(a.Location),
		ServiceArea:      area,
		CreatedAt:        a.CreatedAt,
	}
}

func toDomainAccount(c ProfileColumns) *domain.Account {
	var image string
	if c.ProfileImagePath != nil {
		image = *c.ProfileImagePath
	}

	area := make([]domain.GeoPoint, 0, len(c.ServiceArea))
	for _, p := range c.ServiceArea {
		area = append(area, fromGeoPoint(p))
	}

	return &domain.Account{
		UID:              c.UID,
		Role:             domain.Role(c.Type),
		FullName:         c.FullName,
		Email:            c.Email,
		Age:              c.Age,
		Phone:            c.Phone,
		Location:         fromGeoPoint(c.Location),
		ServiceArea:      area,
		ProfileImagePath: image,
		CreatedAt:        c.CreatedAt,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, a *domain.Account) error {
	cols := toProfileColumns(a)
	switch a.Role {
	case domain.RoleProvider:
		tags := a.Tags
		if tags == nil {
			tags = []string{}
		}
		m := providerModel{ProfileColumns: cols, Tags: tags, Rating: a.Rating, ReviewsCount: a.ReviewsCount}
		return r.db.WithContext(ctx).Create(&m).Error
	case domain.RoleRequester:
		m := requesterModel{ProfileColumns: cols}
		return r.db.WithContext(ctx).Create(&m).Error
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, a.Role)
	}
}

func (r *ProfileRepository) GetByUID(ctx context.Context, role domain.Role, uid string) (*domain.Account, error) {
	switch role {
	case domain.RoleProvider:
		var m providerModel
		if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&m).Error; err != nil {
			return nil, err
		}
		a := toDomainAccount(m.ProfileColumns)
		a.Tags = m.Tags
		a.Rating = m.Rating
		a.ReviewsCount = m.ReviewsCount
		return a, nil
	case domain.RoleRequester:
		var m requesterModel
		if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&m).Error; err != nil {
			return nil, err
		}
		return toDomainAccount(m.ProfileColumns), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

func (r *ProfileRepository) Delete(ctx context.Context, role domain.Role, uid string) error {
	switch role {
	case domain.RoleProvider:
		return r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&providerModel{}).Error
	case domain.RoleRequester:
		return r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&requesterModel{}).Error
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// FindRole reports which collection holds uid. It returns
// gorm.ErrRecordNotFound when no profile exists.
func (r *ProfileRepository) FindRole(ctx context.Context, uid string) (domain.Role, error) {
	for _, probe := range []struct {
		role  domain.Role
		model any
	}{
		{domain.RoleProvider, &providerModel{}},
		{domain.RoleRequester, &requesterModel{}},
	} {
		var count int64
		if err := r.db.WithContext(ctx).Model(probe.model).Where("uid = ?", uid).Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			return probe.role, nil
		}
	}
	return "", gorm.ErrRecordNotFound
}
