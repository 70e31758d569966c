package provisioning

import (
	"errors"

	"roflexi/internal/pkg/validator"
)

var (
	ErrMissingTags        = errors.New("Select at least one tag")
	ErrImageTooLarge      = errors.New("profileImage exceeds the maximum allowed size")
	ErrSubmissionInFlight = errors.New("a submission with this idempotency key is still in progress")
	ErrIdempotencyKeyUsed = errors.New("this idempotency key was used for a different submission")
)

const (
	msgMissingImage = "Missing profileImage"
	msgInvalidImage = "Invalid profileImage (expected jpg, jpeg, png, gif, heic or heif)"
)

// ValidationError carries field-attributable rejections.
type ValidationError struct {
	Errors validator.Errors
}

func (e *ValidationError) Error() string {
	if _, msg, ok := e.Errors.First(); ok {
		return msg
	}
	return "validation failed"
}
