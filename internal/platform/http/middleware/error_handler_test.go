package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places_backend/internal/platform/apperr"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", handler)
	r.NoRoute(NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

// TestErrorHandler は分類ごとのステータスと応答本文を検証します。
func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   ErrorResponse
	}{
		{
			name:           "not found",
			err:            apperr.New(apperr.KindNotFound, "Could not find place for the provided id."),
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrorResponse{Message: "Could not find place for the provided id."},
		},
		{
			name:           "wrapped auth error",
			err:            fmt.Errorf("verify: %w", apperr.New(apperr.KindAuth, "Authentication failed!")),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   ErrorResponse{Message: "Authentication failed!"},
		},
		{
			name:           "validation with fields",
			err:            apperr.Validation("Invalid inputs passed, please check your data.", apperr.FieldViolation{Field: "title", Rule: "required"}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody: ErrorResponse{
				Message: "Invalid inputs passed, please check your data.",
				Errors:  []apperr.FieldViolation{{Field: "title", Rule: "required"}},
			},
		},
		{
			name:           "geocode upstream",
			err:            apperr.New(apperr.KindGeocodeUpstream, "down"),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   ErrorResponse{Message: "down"},
		},
		{
			name:           "raw error is hidden",
			err:            errors.New("pq: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrorResponse{Message: UnknownErrorMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}

// TestErrorHandler_AlreadyWritten は応答済みの場合に上書きしないことを検証します。
func TestErrorHandler_AlreadyWritten(t *testing.T) {
	t.Parallel()

	w := serve(func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		_ = c.Error(errors.New("stream broke"))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

// TestErrorHandler_NoError はエラーがなければ何もしないことを検証します。
func TestErrorHandler_NoError(t *testing.T) {
	t.Parallel()

	w := serve(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

// TestNotFound は未定義ルートの応答を検証します。
func TestNotFound(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.NoRoute(NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Could not find this route."}`, w.Body.String())
}
