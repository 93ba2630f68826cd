// Package media stores product images under the media directory.
package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	maxWidth  = 800
	maxHeight = 800
	subdir    = "product_images"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type ImageStore struct {
	Root string
}

func NewImageStore(root string) *ImageStore { return &ImageStore{Root: root} }

// SaveProductImage decodes r, fits it into 800x800 and writes a JPEG. Every
// call writes a new file, so the previous image stays intact until the caller
// removes it. The returned path is relative to Root and is what /media/*
// serves.
func (s *ImageStore) SaveProductImage(productID string, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	dir := filepath.Join(s.Root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	rel := filepath.ToSlash(filepath.Join(subdir, productID+"-"+uuid.NewString()[:8]+".jpg"))
	if err := imaging.Save(img, filepath.Join(s.Root, rel), imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove deletes a stored image; a missing file is not an error.
func (s *ImageStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
