// Package dto contains the wire types of the Geocoding API.
package dto

// GeocodeResponse is the body of GET /maps/api/geocode/json.
type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

// GeocodeResult is one candidate match for the queried address.
type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
}

// Geometry holds the resolved coordinate of a result.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a latitude/longitude pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
