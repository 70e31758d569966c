package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"roflexi/internal/domain"
	"roflexi/internal/pkg/geofence"
)

func validFields() Fields {
	return Fields{
		FullName: "Ana Pop",
		Email:    "ana@example.com",
		Age:      "25",
		Phone:    "712345678",
		Password: "secret1",
	}
}

func TestValidatePersonal_Valid(t *testing.T) {
	assert.Empty(t, ValidatePersonal(validFields()))
}

func TestValidatePersonal_PerField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fields)
		field  Field
	}{
		{"blank name", func(f *Fields) { f.FullName = "   " }, FieldFullName},
		{"empty email", func(f *Fields) { f.Email = "" }, FieldEmail},
		{"email without tld", func(f *Fields) { f.Email = "ana@example" }, FieldEmail},
		{"email with space", func(f *Fields) { f.Email = "ana pop@example.com" }, FieldEmail},
		{"age 17", func(f *Fields) { f.Age = "17" }, FieldAge},
		{"age missing", func(f *Fields) { f.Age = "" }, FieldAge},
		{"age not numeric", func(f *Fields) { f.Age = "abc" }, FieldAge},
		{"phone 8 digits", func(f *Fields) { f.Phone = "71234567" }, FieldPhone},
		{"phone 10 digits", func(f *Fields) { f.Phone = "0712345678" }, FieldPhone},
		{"phone letters only", func(f *Fields) { f.Phone = "abcdefghi" }, FieldPhone},
		{"short password", func(f *Fields) { f.Password = "ab" }, FieldPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			errs := ValidatePersonal(f)
			assert.Len(t, errs, 1)
			assert.True(t, errs.Has(tt.field), "expected error on %s, got %v", tt.field, errs)
		})
	}
}

func TestValidatePersonal_AgeBoundary(t *testing.T) {
	f := validFields()
	f.Age = "17"
	assert.True(t, ValidatePersonal(f).Has(FieldAge))

	f.Age = "18"
	assert.False(t, ValidatePersonal(f).Has(FieldAge))

	f.Age = " 18 "
	assert.False(t, ValidatePersonal(f).Has(FieldAge))
}

func TestValidatePersonal_PhoneFormatting(t *testing.T) {
	f := validFields()
	f.Phone = "712 345-678"
	assert.Empty(t, ValidatePersonal(f))
}

func TestValidatePersonal_Pure(t *testing.T) {
	f := validFields()
	f.Email = "nope"
	f.Age = "3"

	first := ValidatePersonal(f)
	second := ValidatePersonal(f)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestDigitsOnly_Idempotent(t *testing.T) {
	for _, in := range []string{"712345678", "+40 712 345 678", "(07)12-34", "", "abc", "١٢٣"} {
		once := DigitsOnly(in)
		assert.Equal(t, once, DigitsOnly(once))

		f := validFields()
		f.Phone = in
		g := validFields()
		g.Phone = once
		assert.Equal(t, ValidatePersonal(f).Has(FieldPhone), ValidatePersonal(g).Has(FieldPhone))
	}
}

func TestErrors_First(t *testing.T) {
	errs := Errors{FieldPhone: "p", FieldEmail: "e", FieldLocation: "l"}
	f, msg, ok := errs.First()
	assert.True(t, ok)
	assert.Equal(t, FieldEmail, f)
	assert.Equal(t, "e", msg)

	_, _, ok = Errors{}.First()
	assert.False(t, ok)
}

func TestValidateLocation(t *testing.T) {
	assert.Equal(t, "Missing location", ValidateLocation(nil))
	assert.Empty(t, ValidateLocation(&domain.GeoPoint{Lat: 45.75, Lng: 21.23}))
	assert.NotEmpty(t, ValidateLocation(&domain.GeoPoint{Lat: 91, Lng: 0}))
	assert.NotEmpty(t, ValidateLocation(&domain.GeoPoint{Lat: 0, Lng: -180.5}))
	assert.NotEmpty(t, ValidateLocation(&domain.GeoPoint{Lat: math.NaN(), Lng: 0}))
	assert.NotEmpty(t, ValidateLocation(&domain.GeoPoint{Lat: 0, Lng: math.Inf(1)}))
}

func TestValidateServiceArea(t *testing.T) {
	corners := geofence.DefaultSquare(domain.GeoPoint{Lat: 45.75, Lng: 21.23})

	assert.Equal(t, "Missing serviceArea", ValidateServiceArea(nil))
	assert.NotEmpty(t, ValidateServiceArea([]domain.GeoPoint{}))
	assert.NotEmpty(t, ValidateServiceArea(corners[:2]))
	assert.Empty(t, ValidateServiceArea(corners[:3]))
	assert.Empty(t, ValidateServiceArea(corners))

	bad := append([]domain.GeoPoint{}, corners...)
	bad[2].Lat = math.NaN()
	assert.NotEmpty(t, ValidateServiceArea(bad))
}

func TestValidateSubmission(t *testing.T) {
	center := domain.GeoPoint{Lat: 45.75, Lng: 21.23}
	errs := ValidateSubmission(validFields(), &center, geofence.DefaultSquare(center))
	assert.Empty(t, errs)

	f := validFields()
	f.Password = "ab"
	errs = ValidateSubmission(f, nil, nil)
	assert.True(t, errs.Has(FieldPassword))
	assert.True(t, errs.Has(FieldLocation))
	assert.True(t, errs.Has(FieldServiceArea))
}

func TestPersonalRules_IsCopy(t *testing.T) {
	rules := PersonalRules()
	rules[0].Message = "changed"
	assert.NotEqual(t, "changed", PersonalRules()[0].Message)
}
