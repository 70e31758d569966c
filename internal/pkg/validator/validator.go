// Package validator holds the registration field rules. The same table gates
// wizard steps on the client and is the authoritative check on the server.
package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"roflexi/internal/domain"
)

type Field string

const (
	FieldFullName     Field = "fullName"
	FieldEmail        Field = "email"
	FieldAge          Field = "age"
	FieldPhone        Field = "phone"
	FieldPassword     Field = "password"
	FieldTags         Field = "tags"
	FieldLocation     Field = "location"
	FieldServiceArea  Field = "serviceArea"
	FieldProfileImage Field = "profileImage"
)

const (
	MinAge            = 18
	MinPasswordLength = 6
	PhoneDigits       = 9
	MinServiceArea    = 3
)

// fieldOrder is the order in which errors are reported to the user.
var fieldOrder = []Field{
	FieldFullName, FieldEmail, FieldAge, FieldPassword, FieldPhone,
	FieldTags, FieldLocation, FieldServiceArea, FieldProfileImage,
}

// Errors maps a field to a human-readable message. Empty means valid.
type Errors map[Field]string

// First returns the first error in display order.
func (e Errors) First() (Field, string, bool) {
	for _, f := range fieldOrder {
		if msg, ok := e[f]; ok {
			return f, msg, true
		}
	}
	return "", "", false
}

func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Fields are the raw personal-info values as typed by the user.
type Fields struct {
	FullName string
	Email    string
	Age      string
	Phone    string
	Password string
}

func (f Fields) value(field Field) string {
	switch field {
	case FieldFullName:
		return f.FullName
	case FieldEmail:
		return f.Email
	case FieldAge:
		return f.Age
	case FieldPhone:
		return f.Phone
	case FieldPassword:
		return f.Password
	}
	return ""
}

// Rule binds a field to a validator tag and the message reported on failure.
type Rule struct {
	Field   Field
	Tag     string
	Message string
	Prepare func(string) string
}

var personalRules = []Rule{
	{Field: FieldFullName, Tag: "required", Message: "Missing fullName", Prepare: strings.TrimSpace},
	{Field: FieldEmail, Tag: "required,emailshape", Message: "Invalid email"},
	{Field: FieldAge, Tag: "required,adult", Message: "Must be 18+", Prepare: strings.TrimSpace},
	{Field: FieldPhone, Tag: "len=9", Message: "Phone must be 9 digits without +40", Prepare: DigitsOnly},
	{Field: FieldPassword, Tag: "required,min=6", Message: "Password must be at least 6 characters"},
}

// PersonalRules returns a copy of the personal-info rule table.
func PersonalRules() []Rule {
	out := make([]Rule, len(personalRules))
	copy(out, personalRules)
	return out
}

var (
	validate       *validator.Validate
	emailShape     = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	nonDigits      = regexp.MustCompile(`\D`)
	locationFormat = "Invalid location (expected { lat:number, lng:number })"
	areaFormat     = "Invalid serviceArea (expected array of { lat:number, lng:number }, min 3 points)"
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		age, ok := ParseAge(fl.Field().String())
		return ok && age >= MinAge
	})
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ParseAge reads a numeric age the way a form number input would.
func ParseAge(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Apply runs the given rules against f.
func Apply(f Fields, rules []Rule) Errors {
	errs := Errors{}
	for _, r := range rules {
		v := f.value(r.Field)
		if r.Prepare != nil {
			v = r.Prepare(v)
		}
		if err := validate.Var(v, r.Tag); err != nil {
			errs[r.Field] = r.Message
		}
	}
	return errs
}

// ValidatePersonal checks the personal-info step.
func ValidatePersonal(f Fields) Errors {
	return Apply(f, personalRules)
}

// ValidateLocation returns an empty message for a usable center point.
// A nil point means the field was absent or could not be decoded.
func ValidateLocation(p *domain.GeoPoint) string {
	if p == nil {
		return "Missing location"
	}
	if !p.Valid() {
		return locationFormat
	}
	return ""
}

// ValidateServiceArea returns an empty message for a usable polygon.
// A nil slice means the field was absent; an empty one means it was malformed.
func ValidateServiceArea(points []domain.GeoPoint) string {
	if points == nil {
		return "Missing serviceArea"
	}
	if len(points) < MinServiceArea {
		return areaFormat
	}
	for _, p := range points {
		if !p.Valid() {
			return areaFormat
		}
	}
	return ""
}

// ValidateSubmission is the server-side gate: personal info plus geography.
func ValidateSubmission(f Fields, location *domain.GeoPoint, area []domain.GeoPoint) Errors {
	errs := ValidatePersonal(f)
	if msg := ValidateLocation(location); msg != "" {
		errs[FieldLocation] = msg
	}
	if msg := ValidateServiceArea(area); msg != "" {
		errs[FieldServiceArea] = msg
	}
	return errs
}
