package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/api/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	path, size, err := s.Upload(ctx, "Front Bumper.JPG", "image/jpeg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.True(t, strings.HasPrefix(path, "quotes/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"), "extension is kept and lowercased")
	assert.Equal(t, "http://localhost:8080/api/uploads/"+path, s.URL(path))

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path), "deleting twice is fine")

	_, err = s.Download(ctx, path)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_UniqueNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost/api/uploads")
	require.NoError(t, err)

	a, _, err := s.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	b, _, err := s.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost/api/uploads")
	require.NoError(t, err)

	for _, p := range []string{"../secret.txt", "quotes/../../etc/passwd", "", "."} {
		_, err := s.Download(context.Background(), p)
		assert.ErrorIs(t, err, ErrObjectNotFound, p)
	}
}

func TestNewStorage(t *testing.T) {
	logger := zap.NewNop()

	s, err := NewStorage(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir(), PublicBaseURL: "http://x"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = NewStorage(&config.StorageConfig{Mode: "azure"}, logger)
	assert.ErrorContains(t, err, "connection string")

	_, err = NewStorage(&config.StorageConfig{Mode: "ftp"}, logger)
	assert.ErrorContains(t, err, "unsupported storage mode")
}
