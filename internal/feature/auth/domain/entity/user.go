// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address used for authentication.
	// It is stored normalized (trimmed, lower case) and is unique across all users.
	Email string

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords and is never returned to callers.
	Password string

	// Image is the blob storage key of the profile image.
	Image string

	// Places holds the ids of the places created by this user.
	Places []string

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
