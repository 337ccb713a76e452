package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrProfileRequired     = errors.New("onboarding required")
	ErrAlreadyOnboarded    = errors.New("onboarding already completed")
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidScreen       = errors.New("invalid screen")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrInvalidMeasurement  = errors.New("weight and height must be greater than 0")
	ErrSessionClosed       = errors.New("session signed out")

	ErrFetch = errors.New("snapshot fetch failed")
	ErrSave  = errors.New("snapshot save failed")
)

// FetchError is a store read failure other than "no snapshot yet".
type FetchError struct {
	UserID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch snapshot for %s: %v", e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// SaveError is a store write failure. The controller has already rolled its
// state back to the last committed snapshot when it is returned.
type SaveError struct {
	UserID string
	Err    error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save snapshot for %s: %v", e.UserID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSave }
