package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestSaveProductImage_ResizesLargeImages(t *testing.T) {
	s := NewImageStore(t.TempDir())

	rel, err := s.SaveProductImage("p-1", pngOf(t, 1600, 400))
	require.NoError(t, err)
	assert.Regexp(t, `^product_images/p-1-[0-9a-f]{8}\.jpg$`, rel)

	img, err := imaging.Open(filepath.Join(s.Root, rel))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestSaveProductImage_KeepsPreviousFile(t *testing.T) {
	s := NewImageStore(t.TempDir())
	first, err := s.SaveProductImage("p-1", pngOf(t, 10, 10))
	require.NoError(t, err)
	second, err := s.SaveProductImage("p-1", pngOf(t, 20, 20))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	_, err = os.Stat(filepath.Join(s.Root, first))
	assert.NoError(t, err, "replacing an image must not overwrite the stored one")
}

func TestSaveProductImage_RejectsGarbage(t *testing.T) {
	s := NewImageStore(t.TempDir())
	_, err := s.SaveProductImage("p-2", strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRemove(t *testing.T) {
	s := NewImageStore(t.TempDir())
	rel, err := s.SaveProductImage("p-3", pngOf(t, 10, 10))
	require.NoError(t, err)

	require.NoError(t, s.Remove(rel))
	_, err = os.Stat(filepath.Join(s.Root, rel))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(rel))
}
