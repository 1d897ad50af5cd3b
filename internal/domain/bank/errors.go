package bank

import "errors"

var (
	// ErrNotFound signals a linked account id with no row behind it.
	ErrNotFound = errors.New("linked account not found")

	// ErrForbidden signals a linked account owned by a different user.
	ErrForbidden = errors.New("linked account belongs to another user")
)
