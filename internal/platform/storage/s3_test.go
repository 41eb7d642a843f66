package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// newFakeS3 はPUT/DELETEを記録するS3互換のテストサーバーを起動します。
func newFakeS3(t *testing.T, status int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func newTestS3Store(t *testing.T, endpoint string) *S3Store {
	t.Helper()

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:    "places",
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test-secret",
	})
	require.NoError(t, err)
	return store
}

// TestNewS3Store_RequiresBucket はバケット未設定時にエラーとなることを検証します。
func TestNewS3Store_RequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})

	assert.Error(t, err)
}

// TestS3Store_SaveAndDelete はパススタイルでPUT/DELETEが送信されることを検証します。
func TestS3Store_SaveAndDelete(t *testing.T) {
	t.Parallel()

	server, requests := newFakeS3(t, http.StatusOK)
	store := newTestS3Store(t, server.URL)

	key, err := store.Save(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, DefaultPrefix+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	require.NoError(t, store.Delete(context.Background(), key))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/places/"+key, reqs[0].path)
	assert.Equal(t, "image/jpeg", reqs[0].contentType)
	assert.Contains(t, reqs[0].body, "jpeg-bytes")
	assert.Equal(t, http.MethodDelete, reqs[1].method)
	assert.Equal(t, "/places/"+key, reqs[1].path)
}

// TestS3Store_SaveError はサーバーエラーがエラーとして返されることを検証します。
func TestS3Store_SaveError(t *testing.T) {
	t.Parallel()

	server, _ := newFakeS3(t, http.StatusForbidden)
	store := newTestS3Store(t, server.URL)

	_, err := store.Save(context.Background(), []byte("x"), "image/png", "png")

	assert.Error(t, err)
}
