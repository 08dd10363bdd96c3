package library

import "errors"

// ErrUnknownKeyword is returned when no keyword matches the requested name.
var ErrUnknownKeyword = errors.New("no keyword with name")

// AssertionError is the failure of a "should" keyword.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// assertionf returns an AssertionError carrying message when it is given,
// or the default text otherwise.
func assertionf(message, defaultText string) error {
	if message != "" {
		return &AssertionError{Message: message}
	}
	return &AssertionError{Message: defaultText}
}
