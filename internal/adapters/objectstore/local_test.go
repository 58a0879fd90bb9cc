package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	err = store.Put(context.Background(), "1700000000000-brake.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000-brake.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, "http://localhost:8080/uploads/1700000000000-brake.jpg", store.PublicURL("1700000000000-brake.jpg"))
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../etc/passwd", "a/b.jpg", `a\b.jpg`} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestS3PublicBase(t *testing.T) {
	assert.Equal(t, "https://s3.example.com/parts", publicBase(S3Config{Endpoint: "s3.example.com", Bucket: "parts", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com/img", publicBase(S3Config{PublicBaseURL: "https://cdn.example.com/img/"}))
}
