package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("remote call timed out")
	ErrRemoteSync     = errors.New("remote sync failed")
	ErrDuplicateID    = errors.New("duplicate listing id")
	ErrInvalidListing = errors.New("invalid listing")
)

// StatusError is a remote exchange that completed with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}
