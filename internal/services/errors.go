package services

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a claim's current status does
// not permit the requested action.
var ErrInvalidTransition = errors.New("invalid claim transition")

// ErrRoleNotAllowed is returned when the acting user's role does not
// permit the requested operation.
var ErrRoleNotAllowed = errors.New("role not allowed")

// ErrInvalidCredentials is returned on any authentication failure.
// Unknown email and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports a field value outside its permitted range or
// format. Nothing is written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
