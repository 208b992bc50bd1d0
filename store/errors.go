package store

import "errors"

// The four ways a post operation can fail. Handlers translate these to
// HTTP statuses; nothing here is retried.
var (
	// ErrNotFound means the referenced post (or account) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the requester is authenticated but is not the
	// post's author. Only update and delete are ownership-gated.
	ErrForbidden = errors.New("not the author")

	// ErrInvalid means a required field is missing or empty.
	ErrInvalid = errors.New("invalid input")

	// ErrUnavailable means the backing store could not be reached or
	// timed out. The operation had no partial effect.
	ErrUnavailable = errors.New("store unavailable")
)
