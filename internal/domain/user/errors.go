package user

import "errors"

var (
	// ErrMissingFields signals a sign-up request without every required field.
	ErrMissingFields = errors.New("all fields are required")

	// ErrEmailExists signals a sign-up with an email already on file.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so a
	// caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
