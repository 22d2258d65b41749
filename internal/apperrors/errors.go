package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Auth failures are intentionally indistinguishable: a missing token,
	// a bad signature, an expired token and a deactivated subject all map here
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not allowed for this role")

	ErrBoxNotFound = errors.New("box not found")

	ErrItemNotFound    = errors.New("item not found")
	ErrRequestNotFound = errors.New("request not found")
	ErrRequestResolved = errors.New("request already resolved")
)
