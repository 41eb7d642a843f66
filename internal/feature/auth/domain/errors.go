// Package domain defines domain-level errors for the auth feature.
package domain

import "places_backend/internal/platform/apperr"

// Domain errors for authentication operations.
// These errors represent business logic failures and are rendered by the HTTP error boundary.
var (
	// ErrUserAlreadyExists indicates that a user with the given email already exists.
	// This is returned during signup when attempting to create a duplicate user.
	ErrUserAlreadyExists = apperr.New(apperr.KindConflict, "User exists already, please login instead.")

	// ErrInvalidCredentials indicates that the provided credentials are incorrect.
	// Unknown email and wrong password share this error to avoid user enumeration.
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "Invalid credentials, could not log you in.")

	// ErrSignupFailed indicates an infrastructure failure during signup.
	ErrSignupFailed = apperr.New(apperr.KindInternal, "Signing up failed, please try again later.")

	// ErrLoginFailed indicates an infrastructure failure during login.
	ErrLoginFailed = apperr.New(apperr.KindInternal, "Logging in failed, please try again later.")

	// ErrFetchUsersFailed indicates an infrastructure failure while listing users.
	ErrFetchUsersFailed = apperr.New(apperr.KindInternal, "Fetching users failed, please try again later.")
)
