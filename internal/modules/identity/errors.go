package identity

import "errors"

var (
	ErrEmailAlreadyExists = errors.New("The email address is already in use by another account.")
	ErrPhoneAlreadyExists = errors.New("The user with the provided phone number already exists.")
	ErrInvalidPassword    = errors.New("The password must be a string with at least 6 characters.")
	ErrInvalidEmail       = errors.New("The email address is improperly formatted.")
	ErrUserNotFound       = errors.New("There is no user record corresponding to the provided identifier.")
	ErrUserDisabled       = errors.New("The user account has been disabled.")
	ErrInvalidToken       = errors.New("The custom token format is incorrect or the token has expired.")
	ErrTokenAlreadyUsed   = errors.New("The custom token has already been exchanged for a session.")
)

var errorCodes = map[error]string{
	ErrEmailAlreadyExists: "auth/email-already-exists",
	ErrPhoneAlreadyExists: "auth/phone-number-already-exists",
	ErrInvalidPassword:    "auth/invalid-password",
	ErrInvalidEmail:       "auth/invalid-email",
	ErrUserNotFound:       "auth/user-not-found",
	ErrUserDisabled:       "auth/user-disabled",
	ErrInvalidToken:       "auth/invalid-custom-token",
	ErrTokenAlreadyUsed:   "auth/custom-token-already-used",
}

// Code returns the stable error code for identity errors, or "" for
// anything else.
func Code(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}
