// Package media uploads raw file bytes to the object storage service and
// returns the resulting public URL. Storage internals (buckets, CDN,
// transformation) are the storage provider's concern, not this layer's.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"strings"
	"time"
)

var ErrNoFile = errors.New("no file provided")

type Uploader struct {
	BaseURL string
	Key     string
	Bucket  string

	http *http.Client
}

func NewUploader(baseURL, key, bucket string) *Uploader {
	return &Uploader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Bucket:  bucket,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// objectName fabricates a unique object name, keeping the original
// extension: <unix-ms>-<rand>.<ext>.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1000), ext)
}

// Upload stores the bytes and returns the public URL.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if u.BaseURL == "" || u.Key == "" {
		return "", errors.New("storage is not configured")
	}
	name := objectName(filename)

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.BaseURL, u.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+u.Key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")

	resp, err := u.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", fmt.Errorf("storage upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.BaseURL, u.Bucket, name), nil
}
