package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCurrentSession is returned by callers that need a current session
// when none is open.
var ErrNoCurrentSession = errors.New("no browser is open")

// DuplicateAliasError is returned by Register when the alias belongs to an
// open session.
type DuplicateAliasError struct {
	Alias string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("browser alias '%s' is already in use", e.Alias)
}

// UnknownSessionError is returned when a key has no open session.
type UnknownSessionError struct {
	Key Key
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("no browser with index or alias '%s' found", e.Key)
}

// KeyError pairs a session key with the error its teardown returned.
type KeyError struct {
	Key Key
	Err error
}

func (e KeyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e KeyError) Unwrap() error {
	return e.Err
}

// TeardownError collects the failures of CloseAll.
type TeardownError struct {
	Failures []KeyError
}

func (e *TeardownError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("closing %d browser(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *TeardownError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
