package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/pkg/storage"
)

func TestLocalRoundTrip(t *testing.T) {
	d, err := storage.NewLocal(t.TempDir(), "http://localhost:3000/storage/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "restaurants/r1/logo.png", strings.NewReader("png"), "image/png"))
	assert.True(t, d.Exists(ctx, "restaurants/r1/logo.png"))

	rc, err := d.Get(ctx, "restaurants/r1/logo.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png", string(body))

	assert.Equal(t, "http://localhost:3000/storage/restaurants/r1/logo.png", d.URL("restaurants/r1/logo.png"))

	require.NoError(t, d.Delete(ctx, "restaurants/r1/logo.png"))
	assert.False(t, d.Exists(ctx, "restaurants/r1/logo.png"))
	_, err = d.Get(ctx, "restaurants/r1/logo.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCleanKeyStaysInsideRoot(t *testing.T) {
	k, err := storage.CleanKey("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", k)

	_, err = storage.CleanKey("/")
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	d, err := storage.NewLocal(t.TempDir(), "http://localhost:3000/storage")
	require.NoError(t, err)

	k, ok := d.KeyFromURL("http://localhost:3000/storage/restaurants/r1/items/i1-ab12cd34.png")
	assert.True(t, ok)
	assert.Equal(t, "restaurants/r1/items/i1-ab12cd34.png", k)

	for _, url := range []string{
		"https://picsum.photos/seed/food/400/400",
		"http://localhost:3000/storage/../secrets.env",
		"http://localhost:3000/storage/",
		"http://localhost:3000/storagex/a.png",
	} {
		_, ok := d.KeyFromURL(url)
		assert.False(t, ok, url)
	}
}

func TestLocalPutLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	d, err := storage.NewLocal(root, "/storage")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "a/logo.png", strings.NewReader("v1"), "image/png"))
	require.NoError(t, d.Put(ctx, "a/logo.png", strings.NewReader("v2"), "image/png"))

	entries, err := os.ReadDir(filepath.Join(root, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "logo.png", entries[0].Name())

	body, err := os.ReadFile(filepath.Join(root, "a", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalPutFailureKeepsPrevious(t *testing.T) {
	root := t.TempDir()
	d, err := storage.NewLocal(root, "/storage")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "logo.png", strings.NewReader("good"), "image/png"))
	require.Error(t, d.Put(ctx, "logo.png", failingReader{}, "image/png"))

	body, err := os.ReadFile(filepath.Join(root, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "good", string(body))
	entries, _ := os.ReadDir(root)
	assert.Len(t, entries, 1)
}
