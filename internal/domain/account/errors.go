package account

import "errors"

var (
	// ErrMissingFields indicates email or password was not provided.
	ErrMissingFields = errors.New("email and password are required")
	// ErrAccountExists indicates signup was attempted with an account present.
	ErrAccountExists = errors.New("an account already exists")
	// ErrNoAccount indicates login was attempted before any signup.
	ErrNoAccount = errors.New("no account exists yet")
	// ErrInvalidCredentials indicates the email/password pair didn't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
