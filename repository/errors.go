package repository

import "github.com/pkg/errors"

var (
	// ErrNotFound reports that no row matched the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail reports that the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrPostTooLarge reports post text longer than models.MaxPostBytes.
	ErrPostTooLarge = errors.New("post text exceeds size limit")
)
