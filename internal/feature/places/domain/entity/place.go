// Package entity defines the domain entities for the places feature.
package entity

import "time"

// Location is a resolved geographic coordinate.
type Location struct {
	Lat float64
	Lng float64
}

// Place is a shared place owned by exactly one user.
// CreatorID is immutable after creation; Title and Description may be edited by the creator.
type Place struct {
	ID          string
	Title       string
	Description string
	Address     string
	Location    Location
	// Image is the opaque blob storage key of the place image.
	Image     string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
