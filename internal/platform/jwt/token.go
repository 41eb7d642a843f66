package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"places_backend/internal/platform/apperr"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = time.Hour

var (
	// ErrMissingCredential is returned when the request carries no Authorization header.
	ErrMissingCredential = apperr.New(apperr.KindAuth, "Authentication failed!")

	// ErrMalformedCredential is returned when the Authorization header is not "Bearer <token>".
	ErrMalformedCredential = apperr.New(apperr.KindAuth, "Authentication failed!")

	// ErrInvalidOrExpired is returned when a token fails signature, shape, or expiry checks.
	ErrInvalidOrExpired = apperr.New(apperr.KindAuth, "Authentication failed!")

	// ErrSigningKeyMissing is returned by Issue when no signing key is configured.
	ErrSigningKeyMissing = apperr.New(apperr.KindInternal, "Could not issue an authentication token, please try again later.")
)

// Claims is the signed payload of a token. Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the verified caller resolved from a token.
type Identity struct {
	UserID string
	Email  string
}

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewService creates a token service with the provided signing key and token lifetime.
// A non-positive ttl falls back to DefaultTTL.
func NewService(key string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

// Issue creates a signed token for the given user, valid for the configured ttl.
func (s *Service) Issue(userID, email string) (string, error) {
	if len(s.key) == 0 {
		return "", ErrSigningKeyMissing
	}

	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, ErrSigningKeyMissing.Message, fmt.Errorf("failed to sign token: %w", err))
	}

	return signed, nil
}

// Verify parses and validates a token. Any failure is reported as ErrInvalidOrExpired.
func (s *Service) Verify(tokenStr string) (Identity, error) {
	if len(s.key) == 0 {
		return Identity{}, fmt.Errorf("%w: signing key is not configured", ErrInvalidOrExpired)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// HMAC 以外のアルゴリズムは拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidOrExpired, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidOrExpired)
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
