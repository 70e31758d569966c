package handoff

import "errors"

var (
	ErrInvalidUID          = errors.New("Missing or invalid UID")
	ErrExchangeCodeInvalid = errors.New("exchange code is missing, expired or already used")
)
