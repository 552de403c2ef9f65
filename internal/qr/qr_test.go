package qr

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := Encode("https://example.org/e/001.html", DefaultOptions())
	require.NoError(t, err)
	b, err := Encode("https://example.org/e/001.html", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Encode("https://example.org/e/002.html", DefaultOptions())
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestEncodeModuleSize(t *testing.T) {
	data, err := Encode("https://example.org/e/001.html", DefaultOptions())
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	w := img.Bounds().Dx()
	assert.Equal(t, w, img.Bounds().Dy(), "QR images are square")
	assert.Zero(t, w%DefaultModuleSize, "size %d is a whole number of modules", w)
	// version 1 is 21 modules plus 8 of quiet zone
	assert.GreaterOrEqual(t, w, 29*DefaultModuleSize)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrcodes", "001.png")
	require.NoError(t, WriteFile(path, "https://example.org/e/001.html", Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}
