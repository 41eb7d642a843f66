// Package domain defines domain-level errors for the places feature.
package domain

import "places_backend/internal/platform/apperr"

// Domain errors for place operations.
// Each error carries its classification so the HTTP boundary can map it without inspecting messages.
var (
	// ErrPlaceNotFound indicates that no place exists for the given id.
	ErrPlaceNotFound = apperr.New(apperr.KindNotFound, "Could not find place for the provided id.")

	// ErrPlacesNotFound indicates that the user is unknown or owns no places.
	ErrPlacesNotFound = apperr.New(apperr.KindNotFound, "Could not find places for the provided user id.")

	// ErrOwnerNotFound indicates that the creating user does not exist.
	ErrOwnerNotFound = apperr.New(apperr.KindNotFound, "Could not find user for provided id.")

	// ErrEditForbidden indicates that the caller is not the creator of the place being updated.
	ErrEditForbidden = apperr.New(apperr.KindForbidden, "You are not allowed to edit this place.")

	// ErrDeleteForbidden indicates that the caller is not the creator of the place being deleted.
	ErrDeleteForbidden = apperr.New(apperr.KindForbidden, "You are not allowed to delete this place.")

	// ErrCreateFailed indicates that the atomic create did not commit.
	ErrCreateFailed = apperr.New(apperr.KindInternal, "Creating place failed, please try again.")

	// ErrUpdateFailed indicates that persisting an edit failed.
	ErrUpdateFailed = apperr.New(apperr.KindInternal, "Something went wrong, could not update place.")

	// ErrDeleteFailed indicates that the atomic delete did not commit.
	ErrDeleteFailed = apperr.New(apperr.KindInternal, "Something went wrong, could not delete place.")

	// ErrConsistencyViolation indicates that Place.creator and User.places disagree.
	// It is never expected in a healthy store and must be logged loudly.
	ErrConsistencyViolation = apperr.New(apperr.KindConsistencyViolation, "Something went wrong, could not delete place.")

	// ErrAddressNotFound indicates that the geocoding provider could not resolve the address.
	ErrAddressNotFound = apperr.New(apperr.KindGeocodeInput, "Could not find location for the specified address.")

	// ErrGeocodingUnavailable indicates a failure of the geocoding provider itself.
	ErrGeocodingUnavailable = apperr.New(apperr.KindGeocodeUpstream, "Could not resolve the address right now, please try again later.")

	// ErrImageRejected indicates that image screening flagged the upload.
	ErrImageRejected = apperr.Validation("Invalid inputs passed, please check your data.", apperr.FieldViolation{Field: "image", Rule: "safe_search"})
)
