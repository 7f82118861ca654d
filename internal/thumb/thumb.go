// Package thumb writes downscaled thumbnails for activity events
package thumb

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/frame"
)

// JPEG quality for thumbnails; they are previews, not archives.
const jpegQuality = 80

// Writer persists frame thumbnails as JPEG files under a single directory.
type Writer struct {
	dir string
}

// NewWriter creates the thumbnail directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "create thumbnail dir")
	}
	return &Writer{dir: dir}, nil
}

// Write downscales the frame to at most maxWidth (preserving aspect ratio)
// and writes <id>.jpg, returning the file path.
func (w *Writer) Write(id string, f *frame.Buffer, maxWidth int) (string, error) {
	if f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Pix) < f.Width*f.Height*4 {
		return "", apperrors.New(apperrors.InvalidArgument, "frame has no readable pixels")
	}

	img := &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}

	var out image.Image = img
	if maxWidth > 0 && f.Width > maxWidth {
		out = resize.Resize(uint(maxWidth), 0, img, resize.Bilinear)
	}

	path := filepath.Join(w.dir, id+".jpg")
	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "create thumbnail file")
	}
	defer file.Close()

	if err := jpeg.Encode(file, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = os.Remove(path)
		return "", apperrors.Wrap(err, apperrors.Internal, "encode thumbnail")
	}
	return path, nil
}
