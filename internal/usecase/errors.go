package usecase

import "errors"

var (
	// ErrEmailAlreadyExists indicates another account already owns the email.
	ErrEmailAlreadyExists = errors.New("email already in use")
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates the authenticated subject has no user row.
	ErrUserNotFound = errors.New("user not found")
	// ErrAttractionNotFound indicates the referenced attraction does not exist.
	ErrAttractionNotFound = errors.New("attraction not found")
	// ErrTripNotFound indicates the referenced trip does not exist.
	ErrTripNotFound = errors.New("trip not found")
)

// ValidationError carries a user-facing message describing rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// AsValidationError unwraps err into a ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
