package media_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/media"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := media.NewUploader(srv.URL, "service-key", "images")
	publicURL, err := u.Upload(context.Background(), "photo.JPG", "image/jpeg", []byte("fake-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	// Object name keeps the lowercased extension under a unique prefix.
	assert.Regexp(t, regexp.MustCompile(`^/storage/v1/object/images/\d+-\d+\.jpg$`), gotPath)
	assert.Regexp(t, regexp.MustCompile(`/storage/v1/object/public/images/\d+-\d+\.jpg$`), publicURL)
}

func TestUpload_EmptyFile(t *testing.T) {
	u := media.NewUploader("http://storage.local", "key", "images")
	_, err := u.Upload(context.Background(), "x.png", "image/png", nil)
	assert.ErrorIs(t, err, media.ErrNoFile)
}

func TestUpload_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	u := media.NewUploader(srv.URL, "key", "missing")
	_, err := u.Upload(context.Background(), "x.png", "image/png", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestUpload_Unconfigured(t *testing.T) {
	u := media.NewUploader("", "", "images")
	_, err := u.Upload(context.Background(), "x.png", "image/png", []byte("data"))
	assert.Error(t, err)
}
