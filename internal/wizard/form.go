package wizard

import "roflexi/internal/pkg/validator"

// Form is the personal-info step as typed by the user. The password lives
// only here and in the outgoing request.
type Form struct {
	FullName string
	Email    string
	Age      string
	Password string
	Phone    string
}

// SampleForm is the placeholder content shown when the wizard opens.
func SampleForm() Form {
	return Form{
		FullName: "Andrei Frintu",
		Email:    "example@gmail.com",
		Age:      "18",
		Password: "andrei07",
		Phone:    "123456789",
	}
}

func (f Form) Fields() validator.Fields {
	return validator.Fields{
		FullName: f.FullName,
		Email:    f.Email,
		Age:      f.Age,
		Phone:    f.Phone,
		Password: f.Password,
	}
}

// SetPhone stores the sanitized phone input.
func (f *Form) SetPhone(raw string) {
	f.Phone = SanitizePhone(raw)
}

// SanitizePhone keeps digits only, at most nine of them.
func SanitizePhone(raw string) string {
	digits := validator.DigitsOnly(raw)
	if len(digits) > validator.PhoneDigits {
		digits = digits[:validator.PhoneDigits]
	}
	return digits
}

// Validate checks the personal-info rules and returns localized messages.
func (f Form) Validate(l *Localizer) map[validator.Field]string {
	errs := validator.ValidatePersonal(f.Fields())
	out := make(map[validator.Field]string, len(errs))
	for field := range errs {
		out[field] = l.Text(f.messageFor(field))
	}
	return out
}

// FirstError returns the first failing personal-info rule in display order.
func (f Form) FirstError(l *Localizer) (validator.Field, string, bool) {
	field, _, ok := validator.ValidatePersonal(f.Fields()).First()
	if !ok {
		return "", "", false
	}
	return field, l.Text(f.messageFor(field)), true
}

func (f Form) messageFor(field validator.Field) Key {
	switch field {
	case validator.FieldFullName:
		return MsgMissingName
	case validator.FieldEmail:
		return MsgInvalidEmail
	case validator.FieldAge:
		return MsgUnderage
	case validator.FieldPassword:
		return MsgWeakPassword
	case validator.FieldPhone:
		if validator.DigitsOnly(f.Phone) == "" {
			return MsgMissingPhone
		}
		return MsgPhoneDigits
	}
	return MsgUnknown
}
