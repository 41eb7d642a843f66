// Package googlemaps provides a client for the Google Maps Geocoding API.
package googlemaps

import (
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Google Maps API host.
const DefaultBaseURL = "https://maps.googleapis.com"

// Config holds configuration for the Geocoding API client.
type Config struct {
	APIKey    string        // API key for authentication
	BaseURL   string        // Base URL for the API (e.g., "https://maps.googleapis.com")
	Timeout   time.Duration // HTTP request timeout
	RateLimit int           // Maximum requests per second sent to the provider (0 = unlimited)
}

// LoadConfig loads Geocoding API configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("GOOGLE_MAPS_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rateLimit := 50
	if v, err := strconv.Atoi(os.Getenv("GEOCODE_RATE_LIMIT")); err == nil {
		rateLimit = v
	}
	return Config{
		APIKey:    os.Getenv("GOOGLE_MAPS_API_KEY"),
		BaseURL:   baseURL,
		Timeout:   10 * time.Second,
		RateLimit: rateLimit,
	}
}
