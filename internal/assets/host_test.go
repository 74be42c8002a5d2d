package assets

import (
	"context"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"threads/internal/models"
	"threads/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHost_UploadAndDestroy(t *testing.T) {
	dir := t.TempDir()
	host := NewLocalHost(dir, "/media/", 1, 64)
	ctx := context.Background()

	url, err := host.Upload(ctx, testutil.PNGDataURL(200, 100))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/"))
	assert.True(t, strings.HasSuffix(url, "/master.jpg"))
	assert.True(t, host.Owns(url))

	key := strings.Split(strings.TrimPrefix(url, "/media/"), "/")[0]
	jpegPath := filepath.Join(dir, key, "master.jpg")
	require.FileExists(t, jpegPath)
	require.FileExists(t, filepath.Join(dir, key, "master.webp"))

	f, err := os.Open(jpegPath)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(f)
	_ = f.Close()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)

	require.NoError(t, host.Destroy(ctx, url))
	assert.NoDirExists(t, filepath.Join(dir, key))

	// Destroying twice is fine.
	assert.NoError(t, host.Destroy(ctx, url))
}

func TestLocalHost_IdenticalUploadsAreIndependent(t *testing.T) {
	host := NewLocalHost(t.TempDir(), "/media", 1, 64)
	ctx := context.Background()
	payload := testutil.PNGDataURL(10, 10)

	first, err := host.Upload(ctx, payload)
	require.NoError(t, err)
	second, err := host.Upload(ctx, payload)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalHost_RejectsBadPayloads(t *testing.T) {
	host := NewLocalHost(t.TempDir(), "/media", 1, 64)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"not base64", "data:image/png;base64,@@@"},
		{"not a data url", "data:image/png,rawbytes"},
		{"text file", "data:text/plain;base64,aGVsbG8gd29ybGQ="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := host.Upload(ctx, tt.payload)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestLocalHost_RejectsOversizedUploads(t *testing.T) {
	host := NewLocalHost(t.TempDir(), "/media", 1, 4096)
	host.maxBytes = 64

	_, err := host.Upload(context.Background(), testutil.PNGDataURL(50, 50))
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestLocalHost_DestroyIgnoresForeignURLs(t *testing.T) {
	dir := t.TempDir()
	host := NewLocalHost(dir, "/media", 1, 64)

	for _, url := range []string{
		"https://res.cloudinary.com/demo/image/upload/sample.jpg",
		"/media/../../etc/master.jpg",
		"/media/not-hex/master.jpg",
		"",
	} {
		assert.NoError(t, host.Destroy(context.Background(), url), url)
		assert.False(t, host.Owns(url), url)
	}
	assert.DirExists(t, dir)
}
