package service

import "errors"

// Error kinds every backend translates its failures into.
// Anything else is an unclassified backend error.
var (
	// ErrUnauthorized means the credentials were rejected or could not be refreshed.
	ErrUnauthorized = errors.New("token expired or revoked")

	// ErrForbidden means the credentials are valid but lack permission.
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound means the list or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTimeout means the backend did not answer in time.
	ErrTimeout = errors.New("request timed out")
)

// IsAuthFailure reports whether err should end the user's session.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
