// Package imaging decodes, scales, and re-encodes photos.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is an output encoding.
type Format int

const (
	JPEG Format = iota
	PNG
)

// DecodeConfig reads only the header of the image at path, enough to know
// that a decoder for it is registered.
func DecodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return cfg, format, nil
}

// Decode opens and decodes the image at path.
// Returns the image and the registered format name.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// Flatten composites img onto an opaque white background.
// JPEG has no alpha channel; transparent areas become white.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// ScaleToWidth resizes img to exactly width pixels wide, keeping the
// aspect ratio. The height is truncated and never less than 1.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == width || w == 0 {
		return img
	}
	newH := max(1, h*width/w)
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// FitWidth scales img down to maxWidth when it is wider; otherwise img is
// returned unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	if img.Bounds().Dx() <= maxWidth {
		return img
	}
	return ScaleToWidth(img, maxWidth)
}

// Encode writes img in the given format. quality applies to JPEG only.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}
}

// OutputName returns the file name and format an image is published under.
// JPEG and PNG keep their name; everything else is re-encoded as JPEG with
// a .jpg extension.
func OutputName(name string) (string, Format) {
	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return name, JPEG
	case ".png":
		return name, PNG
	default:
		return strings.TrimSuffix(name, ext) + ".jpg", JPEG
	}
}

// WriteFile encodes img to path through a temporary file in the same
// directory, so a failed encode never leaves a partial file behind.
func WriteFile(path string, img image.Image, format Format, quality int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".photosite-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Encode(tmp, img, format, quality); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
