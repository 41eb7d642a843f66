package validation

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
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

type patchReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

type signupForm struct {
	Name  string                `form:"name" binding:"required,notemail"`
	Email string                `form:"email" binding:"required,email"`
	Image *multipart.FileHeader `form:"image" binding:"required"`
}

func jsonContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

// TestBindJSON は各フィールドの違反がタグ名とルール名で報告されることを検証します。
func TestBindJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantErr        bool
		expectedFields []apperr.FieldViolation
	}{
		{
			name: "valid body",
			body: `{"title":"Cafe","description":"Nice place"}`,
		},
		{
			name:           "missing title",
			body:           `{"description":"Nice place"}`,
			wantErr:        true,
			expectedFields: []apperr.FieldViolation{{Field: "title", Rule: "required"}},
		},
		{
			name:    "short description and empty title",
			body:    `{"title":"","description":"abc"}`,
			wantErr: true,
			expectedFields: []apperr.FieldViolation{
				{Field: "title", Rule: "required"},
				{Field: "description", Rule: "min"},
			},
		},
		{
			name:           "malformed json",
			body:           `{"title":`,
			wantErr:        true,
			expectedFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req patchReq
			err := BindJSON(jsonContext(tt.body), &req)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, InvalidInputsMessage, ae.Message)
			assert.Equal(t, tt.expectedFields, ae.Fields)
		})
	}
}

// TestBindMultipart はmultipartフォームのファイル必須・notemailルールが機能することを検証します。
func TestBindMultipart(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		withImage      bool
		expectedFields []apperr.FieldViolation
	}{
		{
			name:      "valid form",
			fields:    map[string]string{"name": "Ann", "email": "ann@x.com"},
			withImage: true,
		},
		{
			name:           "missing image",
			fields:         map[string]string{"name": "Ann", "email": "ann@x.com"},
			expectedFields: []apperr.FieldViolation{{Field: "image", Rule: "required"}},
		},
		{
			name:           "name is an email address",
			fields:         map[string]string{"name": "ann@x.com", "email": "ann@x.com"},
			withImage:      true,
			expectedFields: []apperr.FieldViolation{{Field: "name", Rule: "notemail"}},
		},
		{
			name:           "invalid email",
			fields:         map[string]string{"name": "Ann", "email": "not-an-email"},
			withImage:      true,
			expectedFields: []apperr.FieldViolation{{Field: "email", Rule: "email"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			for k, v := range tt.fields {
				require.NoError(t, mw.WriteField(k, v))
			}
			if tt.withImage {
				fw, err := mw.CreateFormFile("image", "a.png")
				require.NoError(t, err)
				_, _ = fw.Write([]byte("data"))
			}
			require.NoError(t, mw.Close())

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
			c.Request.Header.Set("Content-Type", mw.FormDataContentType())

			var req signupForm
			err := BindMultipart(c, &req)

			if tt.expectedFields == nil {
				require.NoError(t, err)
				assert.NotNil(t, req.Image)
				return
			}
			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.expectedFields, ae.Fields)
		})
	}
}
